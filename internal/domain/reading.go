package domain

import (
	"time"
)

// Flags are the four auxiliary switch bits carried by a serial report.
// They are decoded for diagnostics only; brightness never depends on them.
type Flags [4]bool

// Any reports whether at least one flag is set
func (f Flags) Any() bool {
	return f[0] || f[1] || f[2] || f[3]
}

// String renders the flags as a 4-character mask such as "x..x"
func (f Flags) String() string {
	b := []byte("....")
	for i, on := range f {
		if on {
			b[i] = 'x'
		}
	}
	return string(b)
}

// SensorReading is one raw light measurement together with its provenance range.
// Light is the value fed to the mapping: the luma fraction for a camera,
// the 12-bit count for the serial sensor.
type SensorReading struct {
	Raw       uint64
	FullScale uint64
	Light     float64
	Flags     Flags
	Dropped   uint16
}

// Fraction returns Raw relative to its full-scale value
func (r SensorReading) Fraction() float64 {
	if r.FullScale == 0 {
		return 0
	}
	return float64(r.Raw) / float64(r.FullScale)
}

// Sample is one rate-limited status snapshot of the control loop
type Sample struct {
	ID         int64
	Timestamp  time.Time
	Delta      time.Duration // since the previous sample
	Raw        uint64
	FullScale  uint64
	Normalized float64 // light rescaled against LightMin/LightMax
	Level      int
	ScreenMax  int
	Rate       uint16 // reports in the last whole second
	Dropped    uint16 // coalesced reports in the last whole second
	Flags      Flags
}

// LevelFraction returns the written level relative to the device maximum
func (s *Sample) LevelFraction() float64 {
	if s.ScreenMax <= 0 {
		return 0
	}
	return float64(s.Level) / float64(s.ScreenMax)
}
