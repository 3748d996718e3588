package domain

import (
	"context"
	"time"
)

// SampleRepository stores status samples for the diagnostics surfaces.
// The control loop never reads from it.
type SampleRepository interface {
	// SaveSample persists a sample and assigns its ID
	SaveSample(ctx context.Context, sample *Sample) error

	// GetSample retrieves a specific sample by ID
	GetSample(ctx context.Context, id int64) (*Sample, error)

	// GetSamplesInRange retrieves samples within [start, end), oldest first.
	GetSamplesInRange(ctx context.Context, start, end time.Time) ([]*Sample, error)

	// GetLatestSample retrieves the most recent sample
	GetLatestSample(ctx context.Context) (*Sample, error)

	// DeleteOldSamples removes samples older than the given age
	DeleteOldSamples(ctx context.Context, olderThan time.Duration) error
}
