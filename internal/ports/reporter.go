package ports

import (
	"time"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// DefaultReportInterval is the minimum spacing between two status samples
const DefaultReportInterval = 200 * time.Millisecond

// Reporter turns completed control cycles into rate-limited status samples.
// It only compares clock readings; it never sleeps or waits on output.
type Reporter struct {
	clock    Clock
	interval time.Duration
	mapping  domain.MappingConfig
	renderer Renderer
	sink     SampleSink

	start    time.Time
	prevSlot int64
	prevSec  int64
	rate     uint16
	dropped  uint16
}

// NewReporter creates a reporter whose intervals are counted from now.
// sink may be nil.
func NewReporter(clock Clock, mapping domain.MappingConfig, renderer Renderer, sink SampleSink) *Reporter {
	return &Reporter{
		clock:    clock,
		interval: DefaultReportInterval,
		mapping:  mapping,
		renderer: renderer,
		sink:     sink,
		start:    clock.Now(),
		prevSlot: -1,
	}
}

// Observe records one completed cycle. On a whole-second boundary it takes the
// loop's counters as the new throughput figures and resets them. On an interval
// boundary it emits a sample and returns it; otherwise it returns nil.
func (r *Reporter) Observe(state *LoopState, reading domain.SensorReading, level int) *domain.Sample {
	now := r.clock.Now()
	elapsed := now.Sub(r.start)

	delta := time.Duration(0)
	if !state.LastSeen.IsZero() {
		delta = now.Sub(state.LastSeen)
	}
	state.LastSeen = now

	if sec := int64(elapsed / time.Second); sec != r.prevSec {
		r.prevSec = sec
		r.rate, state.Reports = state.Reports, 0
		r.dropped, state.Dropped = state.Dropped, 0
	}

	slot := int64(elapsed / r.interval)
	if slot == r.prevSlot {
		return nil
	}
	r.prevSlot = slot

	sample := &domain.Sample{
		Timestamp:  now,
		Delta:      delta,
		Raw:        reading.Raw,
		FullScale:  reading.FullScale,
		Normalized: r.mapping.Normalize(reading.Light),
		Level:      level,
		ScreenMax:  r.mapping.ScreenMax,
		Rate:       r.rate,
		Dropped:    r.dropped,
		Flags:      reading.Flags,
	}

	if r.renderer != nil {
		r.renderer.Render(sample, state.PrevPrinted)
		state.PrevPrinted = true
	}
	if r.sink != nil {
		r.sink.Offer(sample)
	}
	return sample
}
