package camera

import (
	"fmt"

	"github.com/blackjack/webcam"
	"github.com/rs/zerolog/log"
)

const (
	pixelFormatYUYV = webcam.PixelFormat('Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24)
	bufferCount     = 4
)

// Format is a capture resolution and frame interval (seconds per frame as N/D)
type Format struct {
	Width       uint32
	Height      uint32
	IntervalNum uint32
	IntervalDen uint32
}

// FPS converts the frame interval to frames per second
func (f Format) FPS() float32 {
	if f.IntervalNum == 0 {
		return 0
	}
	return float32(f.IntervalDen) / float32(f.IntervalNum)
}

// FullScale is the luma sum of a frame where every pixel is white
func (f Format) FullScale() uint64 {
	return uint64(f.Width) * uint64(f.Height) * 255
}

func (f Format) String() string {
	return fmt.Sprintf("%dx%d@%d/%d", f.Width, f.Height, f.IntervalNum, f.IntervalDen)
}

// Open negotiates YUYV at the requested size and rate and starts streaming.
// The returned format carries the size the driver actually chose.
func Open(path string, want Format) (*webcam.Webcam, Format, error) {
	cam, err := webcam.Open(path)
	if err != nil {
		return nil, Format{}, fmt.Errorf("open %s: %w", path, err)
	}

	pf, w, h, err := cam.SetImageFormat(pixelFormatYUYV, want.Width, want.Height)
	if err != nil {
		cam.Close()
		return nil, Format{}, fmt.Errorf("set format %s: %w", want, err)
	}
	if pf != pixelFormatYUYV {
		cam.Close()
		return nil, Format{}, fmt.Errorf("%s does not deliver YUYV", path)
	}

	got := want
	got.Width, got.Height = w, h
	if err := cam.SetFramerate(want.FPS()); err != nil {
		log.Warn().Err(err).Float32("fps", want.FPS()).Msg("camera rejected frame interval")
	}
	if err := cam.SetBufferCount(bufferCount); err != nil {
		cam.Close()
		return nil, Format{}, fmt.Errorf("set buffer count: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, Format{}, fmt.Errorf("start streaming: %w", err)
	}

	log.Info().
		Str("path", path).
		Stringer("format", got).
		Uint64("max_sum", got.FullScale()).
		Msg("camera streaming")
	return cam, got, nil
}
