package ports

import (
	"context"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// LightSensor defines how to pull one raw light reading.
// This is a PORT - adapters (serial, camera, mock) implement it.
type LightSensor interface {
	// ReadRaw blocks until a reading is available or the device times out.
	// Errors wrapping domain.ErrDeviceLost ask the loop to replace the sensor.
	ReadRaw(ctx context.Context) (domain.SensorReading, error)

	// Close releases the device handle
	Close() error
}

// BrightnessWriter applies a level to the backlight control surface
type BrightnessWriter interface {
	WriteLevel(level int) error
}

// Reconnector produces a fresh sensor after the previous one was lost
type Reconnector func(ctx context.Context) (LightSensor, error)

// Renderer draws a status sample. overwrite is true when the previous
// output line was a sample that may be replaced in place.
type Renderer interface {
	Render(sample *domain.Sample, overwrite bool)
}

// SampleSink accepts samples without blocking the caller
type SampleSink interface {
	Offer(sample *domain.Sample) bool
}
