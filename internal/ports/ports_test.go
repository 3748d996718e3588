package ports

import (
	"testing"
	"time"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// fakeClock only moves when a cool-down is awaited or a test advances it.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type rendered struct {
	sample    *domain.Sample
	overwrite bool
}

type recordingRenderer struct {
	calls []rendered
}

func (r *recordingRenderer) Render(sample *domain.Sample, overwrite bool) {
	r.calls = append(r.calls, rendered{sample: sample, overwrite: overwrite})
}

type recordingSink struct {
	samples []*domain.Sample
}

func (s *recordingSink) Offer(sample *domain.Sample) bool {
	s.samples = append(s.samples, sample)
	return true
}

func testMapping(t *testing.T) domain.MappingConfig {
	t.Helper()
	m, err := domain.NewMappingConfig(100, 900, 0.1, 2, 1000)
	if err != nil {
		t.Fatalf("NewMappingConfig: %v", err)
	}
	return m
}
