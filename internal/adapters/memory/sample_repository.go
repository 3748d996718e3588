package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// SampleRepository implements domain.SampleRepository with in-memory storage
// Samples vanish on restart, which is all the status surfaces need.
type SampleRepository struct {
	mu      sync.RWMutex
	samples map[int64]*domain.Sample
	latest  *domain.Sample
	nextID  int64
}

// NewSampleRepository creates an empty in-memory repository
func NewSampleRepository() *SampleRepository {
	return &SampleRepository{
		samples: make(map[int64]*domain.Sample),
		nextID:  1,
	}
}

// SaveSample stores a sample in memory
func (r *SampleRepository) SaveSample(ctx context.Context, sample *domain.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sample.ID == 0 {
		sample.ID = r.nextID
		r.nextID++
	}

	r.samples[sample.ID] = sample
	if r.latest == nil || !sample.Timestamp.Before(r.latest.Timestamp) {
		r.latest = sample
	}
	return nil
}

// GetSample retrieves a sample by ID
func (r *SampleRepository) GetSample(ctx context.Context, id int64) (*domain.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sample, exists := r.samples[id]
	if !exists {
		return nil, domain.ErrSampleNotFound
	}

	return sample, nil
}

// GetSamplesInRange returns all samples within [start, end)
func (r *SampleRepository) GetSamplesInRange(ctx context.Context, start, end time.Time) ([]*domain.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.Sample
	for _, sample := range r.samples {
		if !sample.Timestamp.Before(start) && sample.Timestamp.Before(end) {
			results = append(results, sample)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})

	return results, nil
}

// GetLatestSample returns the most recent sample
func (r *SampleRepository) GetLatestSample(ctx context.Context) (*domain.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == nil {
		return nil, domain.ErrSampleNotFound
	}
	return r.latest, nil
}

// DeleteOldSamples removes samples older than specified duration
func (r *SampleRepository) DeleteOldSamples(ctx context.Context, olderThan time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	for id, sample := range r.samples {
		if sample.Timestamp.Before(cutoff) {
			delete(r.samples, id)
		}
	}
	if r.latest != nil && r.latest.Timestamp.Before(cutoff) {
		r.latest = nil
	}

	return nil
}
