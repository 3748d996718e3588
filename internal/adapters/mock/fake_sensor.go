package mock

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// FakeSensor simulates a 12-bit light sensor for bench runs without hardware
// This implements the ports.LightSensor interface
type FakeSensor struct {
	baseValue float64
	variation float64
	fullScale uint64
	interval  time.Duration
}

// NewFakeSensor creates a sensor that returns realistic values
// baseValue: average count (e.g., 2000 for an office)
// variation: +/- range (e.g., 300 means 1700-2300)
func NewFakeSensor(baseValue, variation float64, fullScale uint64) *FakeSensor {
	return &FakeSensor{
		baseValue: baseValue,
		variation: variation,
		fullScale: fullScale,
	}
}

// WithInterval makes every read block for d, like a device reporting at 1/d Hz
func (s *FakeSensor) WithInterval(d time.Duration) *FakeSensor {
	s.interval = d
	return s
}

// ReadRaw returns a simulated reading clamped to [0, fullScale]
func (s *FakeSensor) ReadRaw(ctx context.Context) (domain.SensorReading, error) {
	if s.interval > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(s.interval):
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.SensorReading{}, err
	}

	variance := (rand.Float64() - 0.5) * 2 * s.variation
	light := math.Round(s.baseValue + variance)
	light = min(max(light, 0), float64(s.fullScale))

	return domain.SensorReading{
		Raw:       uint64(light),
		FullScale: s.fullScale,
		Light:     light,
	}, nil
}

// Close is a no-op for fake sensor
func (s *FakeSensor) Close() error {
	return nil
}
