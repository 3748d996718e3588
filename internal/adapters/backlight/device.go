package backlight

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	brightnessFile    = "brightness"
	maxBrightnessFile = "max_brightness"
)

// ReadMaxBrightness reads the device maximum from dir/max_brightness
func ReadMaxBrightness(dir string) (int, error) {
	path := filepath.Join(dir, maxBrightnessFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read max brightness: %w", err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("bad max brightness in %s: %w", path, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("bad max brightness in %s: %d", path, value)
	}
	return value, nil
}

// Device writes levels to a sysfs backlight.
// This implements the ports.BrightnessWriter interface
type Device struct {
	path string
	f    *os.File
}

// Open opens dir/brightness for appending
func Open(dir string) (*Device, error) {
	path := filepath.Join(dir, brightnessFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return nil, fmt.Errorf("open brightness: %w", err)
	}
	return &Device{path: path, f: f}, nil
}

// WriteLevel writes level as one ASCII decimal string
func (d *Device) WriteLevel(level int) error {
	if _, err := d.f.WriteString(strconv.Itoa(level)); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// Close closes the control file
func (d *Device) Close() error {
	return d.f.Close()
}
