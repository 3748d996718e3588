package serial

import (
	"fmt"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

const (
	// ReportSize is the length of one sensor report on the wire
	ReportSize = 2

	// FullScale is the largest 12-bit light value
	FullScale = 0x0FFF

	lightHighMask = 0x0F
)

var flagMasks = [4]byte{0x10, 0x20, 0x40, 0x80}

// Decode extracts the most recent report from one read.
//
// Only the last two bytes are used: low byte, then the high nibble of the
// light value with four switch bits above it. Earlier complete reports in the
// same read are counted in Dropped.
func Decode(buf []byte) (domain.SensorReading, error) {
	n := len(buf)
	if n < ReportSize {
		return domain.SensorReading{}, fmt.Errorf("only got %d bytes: %w", n, domain.ErrShortRead)
	}

	low, high := buf[n-2], buf[n-1]
	light := uint16(low) | uint16(high&lightHighMask)<<8

	var flags domain.Flags
	for i, mask := range flagMasks {
		flags[i] = high&mask != 0
	}

	return domain.SensorReading{
		Raw:       uint64(light),
		FullScale: FullScale,
		Light:     float64(light),
		Flags:     flags,
		Dropped:   uint16(n/ReportSize - 1),
	}, nil
}
