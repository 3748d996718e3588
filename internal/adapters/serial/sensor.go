package serial

import (
	"context"
	"errors"
	"fmt"
	"io"

	gserial "github.com/goburrow/serial"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

const readBufferSize = 1024

// Sensor reads light reports from a microcontroller on a serial port.
// This implements the ports.LightSensor interface
type Sensor struct {
	path string
	port io.ReadWriteCloser
	buf  [readBufferSize]byte
}

// NewSensor wraps an already configured port
func NewSensor(path string, port io.ReadWriteCloser) *Sensor {
	return &Sensor{path: path, port: port}
}

// Path returns the device path the sensor was opened on
func (s *Sensor) Path() string {
	return s.path
}

// ReadRaw performs one port read and decodes the newest report in it.
// A timeout is transient; a short read or any other I/O error means the
// port is gone and is reported as domain.ErrDeviceLost.
func (s *Sensor) ReadRaw(ctx context.Context) (domain.SensorReading, error) {
	n, err := s.port.Read(s.buf[:])
	switch {
	case errors.Is(err, gserial.ErrTimeout):
		return domain.SensorReading{}, fmt.Errorf("%s: %w", s.path, domain.ErrReadTimeout)
	case err != nil && !errors.Is(err, io.EOF):
		return domain.SensorReading{}, fmt.Errorf("read %s: %w: %w", s.path, err, domain.ErrDeviceLost)
	}

	reading, err := Decode(s.buf[:n])
	if err != nil {
		return domain.SensorReading{}, fmt.Errorf("%s: %w: %w", s.path, err, domain.ErrDeviceLost)
	}
	return reading, nil
}

// Close closes the port
func (s *Sensor) Close() error {
	return s.port.Close()
}
