package domain

import (
	"fmt"
	"math"
)

// MappingConfig shapes a light value into a backlight level with a power-law curve.
// It is validated once by NewMappingConfig and never mutated afterwards.
type MappingConfig struct {
	LightMin          float64
	LightMax          float64
	ScreenMinFraction float64
	ScreenPower       float64
	ScreenMax         int
}

// NewMappingConfig validates the curve parameters
func NewMappingConfig(lightMin, lightMax, screenMinFraction, screenPower float64, screenMax int) (MappingConfig, error) {
	c := MappingConfig{
		LightMin:          lightMin,
		LightMax:          lightMax,
		ScreenMinFraction: screenMinFraction,
		ScreenPower:       screenPower,
		ScreenMax:         screenMax,
	}
	if err := c.Validate(); err != nil {
		return MappingConfig{}, err
	}
	return c, nil
}

// Validate checks the invariants the mapping relies on to stay monotonic
func (c MappingConfig) Validate() error {
	switch {
	case !finite(c.LightMin) || !finite(c.LightMax):
		return fmt.Errorf("%w: light bounds must be finite", ErrInvalidConfig)
	case c.LightMin >= c.LightMax:
		return fmt.Errorf("%w: light_min %v must be below light_max %v", ErrInvalidConfig, c.LightMin, c.LightMax)
	case !(c.ScreenMinFraction >= 0 && c.ScreenMinFraction < 1):
		return fmt.Errorf("%w: screen_min %v not in [0,1)", ErrInvalidConfig, c.ScreenMinFraction)
	case !finite(c.ScreenPower) || c.ScreenPower <= 0:
		return fmt.Errorf("%w: screen_power %v must be positive", ErrInvalidConfig, c.ScreenPower)
	case c.ScreenMax <= 0:
		return fmt.Errorf("%w: max brightness %d must be positive", ErrInvalidConfig, c.ScreenMax)
	}
	return nil
}

// ScreenMin is the level written for light at or below LightMin
func (c MappingConfig) ScreenMin() float64 {
	return c.ScreenMinFraction * float64(c.ScreenMax)
}

// Normalize clamps light into [LightMin, LightMax] and rescales it to [0,1]
func (c MappingConfig) Normalize(light float64) float64 {
	if math.IsNaN(light) || light <= c.LightMin {
		return 0
	}
	if light >= c.LightMax {
		return 1
	}
	return (light - c.LightMin) / (c.LightMax - c.LightMin)
}

// Level maps a light value to a backlight level in [round(ScreenMin), ScreenMax]
func (c MappingConfig) Level(light float64) int {
	curved := math.Pow(c.Normalize(light), c.ScreenPower)
	screenMin := c.ScreenMin()
	level := int(math.Round(curved*(float64(c.ScreenMax)-screenMin) + screenMin))
	return min(max(level, 0), c.ScreenMax)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
