package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
	"time"

	gserial "github.com/goburrow/serial"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-backlight/internal/domain"
	"github.com/quentinrf/ambient-backlight/internal/ports"
)

// DefaultCandidates is how many numbered device paths are probed
const DefaultCandidates = 16

// PortConfig is the line setup applied to every probed port
type PortConfig struct {
	BaudRate     int
	DataBits     int
	StopBits     int
	Parity       string
	Timeout      time.Duration
	HardwareFlow bool
}

// DefaultPortConfig is 9600 baud 8N1 with RTS/CTS
func DefaultPortConfig() PortConfig {
	return PortConfig{
		BaudRate:     9600,
		DataBits:     8,
		StopBits:     1,
		Parity:       "N",
		Timeout:      time.Second,
		HardwareFlow: true,
	}
}

func ensureDefaults(pc *PortConfig) {
	if pc.BaudRate == 0 {
		pc.BaudRate = 9600
	}
	if pc.DataBits == 0 {
		pc.DataBits = 8
	}
	if pc.StopBits == 0 {
		pc.StopBits = 1
	}
	if pc.Parity == "" {
		pc.Parity = "N"
	}
	if pc.Timeout <= 0 {
		pc.Timeout = time.Second
	}
}

// OpenFunc opens and configures one candidate path
type OpenFunc func(path string) (io.ReadWriteCloser, error)

// Opener returns an OpenFunc that opens real serial ports with this config
func (pc PortConfig) Opener() OpenFunc {
	ensureDefaults(&pc)
	return func(path string) (io.ReadWriteCloser, error) {
		port, err := gserial.Open(&gserial.Config{
			Address:  path,
			BaudRate: pc.BaudRate,
			DataBits: pc.DataBits,
			StopBits: pc.StopBits,
			Parity:   pc.Parity,
			Timeout:  pc.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if pc.HardwareFlow {
			if err := enableHardwareFlow(path); err != nil {
				port.Close()
				return nil, fmt.Errorf("enable RTS/CTS on %s: %w", path, err)
			}
		}
		return port, nil
	}
}

// Prober finds the sensor among prefix0 .. prefix{candidates-1}
type Prober struct {
	prefix     string
	candidates int
	open       OpenFunc
}

// NewProber creates a prober. candidates <= 0 selects DefaultCandidates.
func NewProber(prefix string, candidates int, open OpenFunc) *Prober {
	if candidates <= 0 {
		candidates = DefaultCandidates
	}
	return &Prober{prefix: prefix, candidates: candidates, open: open}
}

// Probe tries every candidate once, in order, and returns the first that opens.
// When none does, the error wraps domain.ErrProbeExhausted.
func (p *Prober) Probe(ctx context.Context) (*Sensor, error) {
	var lastErr error
	for i := 0; i < p.candidates; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := fmt.Sprintf("%s%d", p.prefix, i)
		port, err := p.open(path)
		if err != nil {
			if !isMissing(err) {
				log.Warn().Err(err).Str("path", path).Msg("serial candidate failed")
				lastErr = err
			}
			continue
		}

		log.Info().Str("path", path).Msg("connected to light sensor")
		return NewSensor(path, port), nil
	}

	tried := fmt.Sprintf("%s0..%s%d", p.prefix, p.prefix, p.candidates-1)
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrProbeExhausted, tried, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProbeExhausted, tried)
}

// Reconnect adapts Probe to ports.Reconnector
func (p *Prober) Reconnect(ctx context.Context) (ports.LightSensor, error) {
	s, err := p.Probe(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, syscall.ENXIO)
}
