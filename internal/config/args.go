package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// SerialFullScale bounds the host light arguments to the 12-bit report range
const SerialFullScale = 0x0FFF

// ErrHelp is returned when -h or -help was requested
var ErrHelp = flag.ErrHelp

// Curve holds the mapping arguments common to both daemons
type Curve struct {
	LightMin    float64 `yaml:"light_min"`
	LightMax    float64 `yaml:"light_max"`
	ScreenMin   float64 `yaml:"screen_min"`
	ScreenPower float64 `yaml:"screen_power"`
}

// Mapping validates the curve against the backlight maximum
func (c Curve) Mapping(screenMax int) (domain.MappingConfig, error) {
	return domain.NewMappingConfig(c.LightMin, c.LightMax, c.ScreenMin, c.ScreenPower, screenMax)
}

func (c Curve) validate(lo, hi float64) error {
	switch {
	case !inRange(c.LightMin, lo, hi):
		return fmt.Errorf("%w: light_min %v not in [%v,%v]", domain.ErrInvalidConfig, c.LightMin, lo, hi)
	case !inRange(c.LightMax, lo, hi):
		return fmt.Errorf("%w: light_max %v not in [%v,%v]", domain.ErrInvalidConfig, c.LightMax, lo, hi)
	case c.LightMin >= c.LightMax:
		return fmt.Errorf("%w: light_min %v must be below light_max %v", domain.ErrInvalidConfig, c.LightMin, c.LightMax)
	case !(c.ScreenMin >= 0 && c.ScreenMin < 1):
		return fmt.Errorf("%w: screen_min %v not in [0,1)", domain.ErrInvalidConfig, c.ScreenMin)
	case math.IsInf(c.ScreenPower, 0) || !(c.ScreenPower > 0):
		return fmt.Errorf("%w: screen_power %v must be positive", domain.ErrInvalidConfig, c.ScreenPower)
	}
	return nil
}

func (c *Curve) parse(args []string) error {
	targets := []*float64{&c.LightMin, &c.LightMax, &c.ScreenMin, &c.ScreenPower}
	names := []string{"LIGHT_MIN", "LIGHT_MAX", "SCREEN_MIN", "SCREEN_POWER"}
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidConfig, names[i], arg)
		}
		*targets[i] = v
	}
	return nil
}

// Host configures the serial sensor daemon
type Host struct {
	SerialPrefix  string `yaml:"serial_prefix"`
	BacklightPath string `yaml:"backlight_path"`
	Curve         `yaml:",inline"`
}

// Validate checks arguments before any device is touched
func (h Host) Validate() error {
	if h.SerialPrefix == "" {
		return fmt.Errorf("%w: serial prefix is empty", domain.ErrInvalidConfig)
	}
	if h.BacklightPath == "" {
		return fmt.Errorf("%w: backlight path is empty", domain.ErrInvalidConfig)
	}
	return h.Curve.validate(0, SerialFullScale)
}

// Camera configures the webcam daemon
type Camera struct {
	VideoPath     string      `yaml:"video_path"`
	BacklightPath string      `yaml:"backlight_path"`
	Format        string      `yaml:"video_format"`
	Video         VideoFormat `yaml:"-"`
	Curve         `yaml:",inline"`
}

// Validate checks arguments and resolves the video format
func (c *Camera) Validate() error {
	if c.VideoPath == "" {
		return fmt.Errorf("%w: video path is empty", domain.ErrInvalidConfig)
	}
	if c.BacklightPath == "" {
		return fmt.Errorf("%w: backlight path is empty", domain.ErrInvalidConfig)
	}
	vf, err := ParseVideoFormat(c.Format)
	if err != nil {
		return err
	}
	c.Video = vf
	return c.Curve.validate(0, 1)
}

// ParseHost parses als-host arguments (without the program name)
func ParseHost(args []string, output io.Writer) (Host, error) {
	var cfg Host
	fs := newFlagSet("als-host", "SERIAL_PREFIX BACKLIGHT_PATH LIGHT_MIN LIGHT_MAX SCREEN_MIN SCREEN_POWER", output)
	configPath := fs.String("config", "", "YAML file replacing the positional arguments")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if fs.NArg() != 0 {
			return cfg, fmt.Errorf("%w: -config and positional arguments are exclusive", domain.ErrInvalidConfig)
		}
		if err := loadYAML(*configPath, &cfg); err != nil {
			return cfg, err
		}
	} else {
		if fs.NArg() != 6 {
			fs.Usage()
			return cfg, fmt.Errorf("%w: expected 6 arguments, got %d", domain.ErrInvalidConfig, fs.NArg())
		}
		cfg.SerialPrefix = fs.Arg(0)
		cfg.BacklightPath = fs.Arg(1)
		if err := cfg.Curve.parse(fs.Args()[2:]); err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

// ParseCamera parses als-camera arguments (without the program name)
func ParseCamera(args []string, output io.Writer) (Camera, error) {
	var cfg Camera
	fs := newFlagSet("als-camera", "VIDEO_PATH BACKLIGHT_PATH WxH@N/D LIGHT_MIN LIGHT_MAX SCREEN_MIN SCREEN_POWER", output)
	configPath := fs.String("config", "", "YAML file replacing the positional arguments")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if fs.NArg() != 0 {
			return cfg, fmt.Errorf("%w: -config and positional arguments are exclusive", domain.ErrInvalidConfig)
		}
		if err := loadYAML(*configPath, &cfg); err != nil {
			return cfg, err
		}
	} else {
		if fs.NArg() != 7 {
			fs.Usage()
			return cfg, fmt.Errorf("%w: expected 7 arguments, got %d", domain.ErrInvalidConfig, fs.NArg())
		}
		cfg.VideoPath = fs.Arg(0)
		cfg.BacklightPath = fs.Arg(1)
		cfg.Format = fs.Arg(2)
		if err := cfg.Curve.parse(fs.Args()[3:]); err != nil {
			return cfg, err
		}
	}

	err := cfg.Validate()
	return cfg, err
}

// VideoFormat is a requested resolution and frame interval
type VideoFormat struct {
	Width       uint32
	Height      uint32
	IntervalNum uint32
	IntervalDen uint32
}

// ParseVideoFormat parses "WxH@N/D", e.g. "640x480@1/30"
func ParseVideoFormat(s string) (VideoFormat, error) {
	var vf VideoFormat
	resolution, interval, ok := strings.Cut(s, "@")
	if !ok {
		return vf, fmt.Errorf("%w: video format %q lacks @interval", domain.ErrInvalidConfig, s)
	}
	w, h, ok := strings.Cut(resolution, "x")
	if !ok {
		return vf, fmt.Errorf("%w: video resolution %q is not WxH", domain.ErrInvalidConfig, resolution)
	}
	n, d, ok := strings.Cut(interval, "/")
	if !ok {
		return vf, fmt.Errorf("%w: frame interval %q is not N/D", domain.ErrInvalidConfig, interval)
	}

	fields := []struct {
		name string
		text string
		dst  *uint32
	}{
		{"width", w, &vf.Width},
		{"height", h, &vf.Height},
		{"interval numerator", n, &vf.IntervalNum},
		{"interval denominator", d, &vf.IntervalDen},
	}
	for _, f := range fields {
		v, err := strconv.ParseUint(f.text, 10, 32)
		if err != nil || v == 0 {
			return VideoFormat{}, fmt.Errorf("%w: video %s %q must be a positive integer", domain.ErrInvalidConfig, f.name, f.text)
		}
		*f.dst = uint32(v)
	}
	return vf, nil
}

func newFlagSet(name, positional string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] %s\n", name, positional)
		fs.PrintDefaults()
	}
	return fs
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidConfig, path, err)
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
