package ports

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// DefaultRetention is how long journaled samples are kept
const DefaultRetention = time.Hour

// Journal stores status samples in the background so that repository
// latency never reaches the control loop.
type Journal struct {
	repo      domain.SampleRepository
	retention time.Duration
	samples   chan *domain.Sample
	dropped   atomic.Uint64
}

// NewJournal creates a journal buffering up to buffer pending samples
func NewJournal(repo domain.SampleRepository, retention time.Duration, buffer int) *Journal {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Journal{
		repo:      repo,
		retention: retention,
		samples:   make(chan *domain.Sample, buffer),
	}
}

// Offer queues a sample, dropping it when the buffer is full
func (j *Journal) Offer(sample *domain.Sample) bool {
	select {
	case j.samples <- sample:
		return true
	default:
		j.dropped.Add(1)
		return false
	}
}

// Dropped returns how many samples were discarded because the buffer was full
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Start drains queued samples into the repository.
// This runs in a goroutine until context is cancelled
func (j *Journal) Start(ctx context.Context) {
	log.Info().
		Dur("retention", j.retention).
		Msg("starting sample journal")

	cleanupTicker := time.NewTicker(max(j.retention/4, time.Minute))
	defer cleanupTicker.Stop()

	var reportedDrops uint64
	for {
		select {
		case sample := <-j.samples:
			j.record(ctx, sample)

		case <-cleanupTicker.C:
			if err := j.repo.DeleteOldSamples(ctx, j.retention); err != nil {
				log.Error().Err(err).Msg("failed to delete old samples")
			}
			if d := j.Dropped(); d != reportedDrops {
				log.Warn().Uint64("dropped", d-reportedDrops).Msg("journal buffer overflowed")
				reportedDrops = d
			}

		case <-ctx.Done():
			log.Info().Msg("stopping sample journal")
			return
		}
	}
}

func (j *Journal) record(ctx context.Context, sample *domain.Sample) {
	if err := j.repo.SaveSample(ctx, sample); err != nil {
		log.Error().Err(err).Msg("failed to save sample")
		return
	}

	log.Debug().
		Int64("id", sample.ID).
		Int("level", sample.Level).
		Msg("journaled sample")
}
