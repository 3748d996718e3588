package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

const sampleColumns = `id, taken_at, delta_ns, raw, full_scale, normalized, level, screen_max, rate, dropped, flags`

// SampleRepository implements domain.SampleRepository with SQLite.
// Timestamps are stored as unix nanoseconds so range queries compare integers.
type SampleRepository struct {
	db *sql.DB
}

// NewSampleRepository opens (or creates) the journal database at dbPath
func NewSampleRepository(dbPath string) (*SampleRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at INTEGER NOT NULL,
		delta_ns INTEGER NOT NULL,
		raw INTEGER NOT NULL,
		full_scale INTEGER NOT NULL,
		normalized REAL NOT NULL,
		level INTEGER NOT NULL,
		screen_max INTEGER NOT NULL,
		rate INTEGER NOT NULL,
		dropped INTEGER NOT NULL,
		flags INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_samples_taken_at ON samples(taken_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SampleRepository{db: db}, nil
}

// SaveSample stores a sample and assigns its ID
func (r *SampleRepository) SaveSample(ctx context.Context, sample *domain.Sample) error {
	query := `INSERT INTO samples (taken_at, delta_ns, raw, full_scale, normalized, level, screen_max, rate, dropped, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		sample.Timestamp.UnixNano(),
		int64(sample.Delta),
		int64(sample.Raw),
		int64(sample.FullScale),
		sample.Normalized,
		sample.Level,
		sample.ScreenMax,
		sample.Rate,
		sample.Dropped,
		packFlags(sample.Flags),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	sample.ID = id
	return nil
}

// GetSample retrieves a sample by ID
func (r *SampleRepository) GetSample(ctx context.Context, id int64) (*domain.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples WHERE id = ?`

	sample, err := scanSample(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSampleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sample: %w", err)
	}
	return sample, nil
}

// GetSamplesInRange returns all samples within [start, end), oldest first
func (r *SampleRepository) GetSamplesInRange(ctx context.Context, start, end time.Time) ([]*domain.Sample, error) {
	query := `SELECT ` + sampleColumns + `
		FROM samples
		WHERE taken_at >= ? AND taken_at < ?
		ORDER BY taken_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []*domain.Sample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}

	return samples, nil
}

// GetLatestSample returns the most recent sample
func (r *SampleRepository) GetLatestSample(ctx context.Context) (*domain.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples ORDER BY taken_at DESC, id DESC LIMIT 1`

	sample, err := scanSample(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSampleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest sample: %w", err)
	}
	return sample, nil
}

// DeleteOldSamples removes samples older than the given age
func (r *SampleRepository) DeleteOldSamples(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	if _, err := r.db.ExecContext(ctx, `DELETE FROM samples WHERE taken_at < ?`, cutoff.UnixNano()); err != nil {
		return fmt.Errorf("failed to delete old samples: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *SampleRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (*domain.Sample, error) {
	var (
		s                    domain.Sample
		takenAt, delta       int64
		raw, fullScale       int64
		rate, dropped, flags int64
	)
	err := row.Scan(&s.ID, &takenAt, &delta, &raw, &fullScale, &s.Normalized, &s.Level, &s.ScreenMax, &rate, &dropped, &flags)
	if err != nil {
		return nil, err
	}

	s.Timestamp = time.Unix(0, takenAt)
	s.Delta = time.Duration(delta)
	s.Raw = uint64(raw)
	s.FullScale = uint64(fullScale)
	s.Rate = uint16(rate)
	s.Dropped = uint16(dropped)
	s.Flags = unpackFlags(flags)
	return &s, nil
}

func packFlags(f domain.Flags) int64 {
	var bits int64
	for i, on := range f {
		if on {
			bits |= 1 << i
		}
	}
	return bits
}

func unpackFlags(bits int64) domain.Flags {
	var f domain.Flags
	for i := range f {
		f[i] = bits&(1<<i) != 0
	}
	return f
}
