package domain

import (
	"errors"
	"math"
	"testing"
)

func mustConfig(t *testing.T, lightMin, lightMax, screenMin, power float64, screenMax int) MappingConfig {
	t.Helper()
	c, err := NewMappingConfig(lightMin, lightMax, screenMin, power, screenMax)
	if err != nil {
		t.Fatalf("NewMappingConfig: %v", err)
	}
	return c
}

func TestNewMappingConfig(t *testing.T) {
	tests := []struct {
		name      string
		lightMin  float64
		lightMax  float64
		screenMin float64
		power     float64
		screenMax int
		wantErr   bool
	}{
		{name: "valid", lightMin: 100, lightMax: 900, screenMin: 0.1, power: 2, screenMax: 1000},
		{name: "zero screen min is valid", lightMin: 0, lightMax: 1, screenMin: 0, power: 0.5, screenMax: 255},
		{name: "equal light bounds", lightMin: 5, lightMax: 5, screenMin: 0, power: 1, screenMax: 10, wantErr: true},
		{name: "inverted light bounds", lightMin: 10, lightMax: 5, screenMin: 0, power: 1, screenMax: 10, wantErr: true},
		{name: "screen min of one", lightMin: 0, lightMax: 1, screenMin: 1, power: 1, screenMax: 10, wantErr: true},
		{name: "negative screen min", lightMin: 0, lightMax: 1, screenMin: -0.1, power: 1, screenMax: 10, wantErr: true},
		{name: "zero power", lightMin: 0, lightMax: 1, screenMin: 0, power: 0, screenMax: 10, wantErr: true},
		{name: "negative power", lightMin: 0, lightMax: 1, screenMin: 0, power: -2, screenMax: 10, wantErr: true},
		{name: "infinite power", lightMin: 0, lightMax: 1, screenMin: 0, power: math.Inf(1), screenMax: 10, wantErr: true},
		{name: "NaN light", lightMin: math.NaN(), lightMax: 1, screenMin: 0, power: 1, screenMax: 10, wantErr: true},
		{name: "zero max brightness", lightMin: 0, lightMax: 1, screenMin: 0, power: 1, screenMax: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMappingConfig(tt.lightMin, tt.lightMax, tt.screenMin, tt.power, tt.screenMax)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLevel_EndToEnd(t *testing.T) {
	c := mustConfig(t, 100, 900, 0.1, 2, 1000)

	if got := c.Normalize(500); got != 0.5 {
		t.Errorf("Normalize(500) = %v, want 0.5", got)
	}
	if got := c.Level(500); got != 325 {
		t.Errorf("Level(500) = %d, want 325", got)
	}
}

func TestLevel_Clamping(t *testing.T) {
	c := mustConfig(t, 100, 900, 0.1, 2, 1000)
	low := int(math.Round(c.ScreenMin()))

	for _, light := range []float64{-1e9, 0, 99, 100} {
		if got := c.Level(light); got != low {
			t.Errorf("Level(%v) = %d, want %d", light, got, low)
		}
	}
	for _, light := range []float64{900, 901, 4095, 1e12} {
		if got := c.Level(light); got != c.ScreenMax {
			t.Errorf("Level(%v) = %d, want %d", light, got, c.ScreenMax)
		}
	}
}

func TestLevel_MonotonicAndInRange(t *testing.T) {
	configs := []MappingConfig{
		mustConfig(t, 100, 900, 0.1, 2, 1000),
		mustConfig(t, 0, 4095, 0, 0.3, 255),
		mustConfig(t, 0.05, 0.6, 0.25, 1, 19393),
		mustConfig(t, 10, 11, 0.99, 7.5, 7),
	}

	for _, c := range configs {
		lo := c.LightMin - (c.LightMax - c.LightMin)
		hi := c.LightMax + (c.LightMax - c.LightMin)
		step := (hi - lo) / 2000

		prev := math.MinInt
		for light := lo; light <= hi; light += step {
			got := c.Level(light)
			if got < prev {
				t.Fatalf("%+v: Level(%v) = %d dropped below %d", c, light, got, prev)
			}
			if float64(got) < math.Round(c.ScreenMin()) || got > c.ScreenMax {
				t.Fatalf("%+v: Level(%v) = %d outside [%v, %d]", c, light, got, c.ScreenMin(), c.ScreenMax)
			}
			prev = got
		}
	}
}

func TestLevel_LinearCurve(t *testing.T) {
	c := mustConfig(t, 100, 900, 0.1, 1, 1000)

	tests := []struct {
		light float64
		want  int
	}{
		{light: 100, want: 100},
		{light: 300, want: 325},
		{light: 500, want: 550},
		{light: 700, want: 775},
		{light: 900, want: 1000},
	}

	for _, tt := range tests {
		if got := c.Level(tt.light); got != tt.want {
			t.Errorf("Level(%v) = %d, want %d", tt.light, got, tt.want)
		}
	}
}

func TestNormalize_NaN(t *testing.T) {
	c := mustConfig(t, 0, 1, 0, 1, 100)
	if got := c.Normalize(math.NaN()); got != 0 {
		t.Errorf("Normalize(NaN) = %v, want 0", got)
	}
}
