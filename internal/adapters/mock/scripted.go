package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// Outcome is one scripted result of ReadRaw
type Outcome struct {
	Reading domain.SensorReading
	Err     error
}

// Light is shorthand for a successful outcome with Raw == Light
func Light(v uint64) Outcome {
	return Outcome{Reading: domain.SensorReading{Raw: v, FullScale: 4095, Light: float64(v)}}
}

// Fail is shorthand for a failed outcome
func Fail(err error) Outcome {
	return Outcome{Err: err}
}

// ScriptedSensor replays a fixed sequence of outcomes. Once the script is
// exhausted every read reports a timeout.
type ScriptedSensor struct {
	mu       sync.Mutex
	outcomes []Outcome
	reads    int
	closed   bool
}

// NewScriptedSensor creates a sensor that replays outcomes in order
func NewScriptedSensor(outcomes ...Outcome) *ScriptedSensor {
	return &ScriptedSensor{outcomes: outcomes}
}

// ReadRaw returns the next scripted outcome
func (s *ScriptedSensor) ReadRaw(ctx context.Context) (domain.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.SensorReading{}, fmt.Errorf("read after close: %w", domain.ErrDeviceLost)
	}
	if s.reads >= len(s.outcomes) {
		s.reads++
		return domain.SensorReading{}, fmt.Errorf("script exhausted: %w", domain.ErrReadTimeout)
	}
	o := s.outcomes[s.reads]
	s.reads++
	return o.Reading, o.Err
}

// Reads returns how many times ReadRaw was called
func (s *ScriptedSensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Closed reports whether Close was called
func (s *ScriptedSensor) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close marks the sensor closed
func (s *ScriptedSensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Writer records written levels. Queued errors are returned, one per call,
// before any level is recorded.
type Writer struct {
	mu     sync.Mutex
	levels []int
	errs   []error
}

// FailNext makes the next WriteLevel calls return errs in order
func (w *Writer) FailNext(errs ...error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errs = append(w.errs, errs...)
}

// WriteLevel records level or returns the next queued error
func (w *Writer) WriteLevel(level int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.errs) > 0 {
		err := w.errs[0]
		w.errs = w.errs[1:]
		return err
	}
	w.levels = append(w.levels, level)
	return nil
}

// Levels returns a copy of every level written so far
func (w *Writer) Levels() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]int(nil), w.levels...)
}
