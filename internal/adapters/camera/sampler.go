package camera

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackjack/webcam"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

var errEmptyFrame = errors.New("empty frame")

// Stream is a capture stream that is already streaming frames.
// *webcam.Webcam implements it.
type Stream interface {
	WaitForFrame(timeout uint32) error
	ReadFrame() ([]byte, error)
	Close() error
}

// FrameSum adds up the luma byte of every YUYV pair. A uint64 accumulator
// cannot overflow for any frame size a V4L2 device can report.
func FrameSum(frame []byte) uint64 {
	var sum uint64
	for i := 0; i+1 < len(frame); i += 2 {
		sum += uint64(frame[i])
	}
	return sum
}

// Sampler reduces each captured frame to its mean luminance.
// This implements the ports.LightSensor interface
type Sampler struct {
	stream    Stream
	fullScale uint64
	timeout   uint32
}

// NewSampler samples stream, normalising against the negotiated format
func NewSampler(stream Stream, format Format, timeout time.Duration) *Sampler {
	secs := uint32(timeout / time.Second)
	if secs == 0 {
		secs = 1
	}
	return &Sampler{
		stream:    stream,
		fullScale: format.FullScale(),
		timeout:   secs,
	}
}

// FullScale returns the luma sum of an all-white frame
func (s *Sampler) FullScale() uint64 {
	return s.fullScale
}

// ReadRaw pulls the next frame. Every failure is transient: the stream is
// kept and the caller retries after its cool-down.
func (s *Sampler) ReadRaw(ctx context.Context) (domain.SensorReading, error) {
	if err := s.stream.WaitForFrame(s.timeout); err != nil {
		var timeout *webcam.Timeout
		if errors.As(err, &timeout) {
			return domain.SensorReading{}, fmt.Errorf("no frame within %ds: %w", s.timeout, domain.ErrReadTimeout)
		}
		return domain.SensorReading{}, fmt.Errorf("wait for frame: %w", err)
	}

	frame, err := s.stream.ReadFrame()
	if err != nil {
		return domain.SensorReading{}, fmt.Errorf("read frame: %w", err)
	}
	if len(frame) == 0 {
		return domain.SensorReading{}, errEmptyFrame
	}

	sum := FrameSum(frame)
	return domain.SensorReading{
		Raw:       sum,
		FullScale: s.fullScale,
		Light:     float64(sum) / float64(s.fullScale),
	}, nil
}

// Close stops streaming and releases the device
func (s *Sampler) Close() error {
	return s.stream.Close()
}
