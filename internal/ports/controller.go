package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// ErrorCooldown is the pause after any recoverable read or write failure
const ErrorCooldown = time.Second

// Phase is the position of the control loop in its state machine
type Phase int

const (
	PhaseReading Phase = iota
	PhaseError
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseReading:
		return "reading"
	case PhaseError:
		return "error"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// LoopState is the mutable state owned by the control loop
type LoopState struct {
	Sensor      LightSensor
	LastSeen    time.Time
	Reports     uint16 // completed cycles, wraps
	Dropped     uint16 // coalesced reports, wraps
	PrevPrinted bool   // last output line was a status sample
}

type failure struct {
	stage string // "read" | "write"
	err   error
}

// Controller drives read -> map -> write -> report cycles and recovers from
// read and write failures. It is not safe for concurrent use.
type Controller struct {
	mapping   domain.MappingConfig
	writer    BrightnessWriter
	reporter  *Reporter
	clock     Clock
	reconnect Reconnector
	cooldown  time.Duration

	state   LoopState
	phase   Phase
	pending failure
	fatal   error
}

// Option customises a Controller
type Option func(*Controller)

// WithReconnect enables device replacement after domain.ErrDeviceLost
func WithReconnect(r Reconnector) Option {
	return func(c *Controller) { c.reconnect = r }
}

// WithClock replaces the wall clock used for cool-downs
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithCooldown overrides ErrorCooldown
func WithCooldown(d time.Duration) Option {
	return func(c *Controller) { c.cooldown = d }
}

// NewController creates a loop in PhaseReading that owns sensor
func NewController(sensor LightSensor, writer BrightnessWriter, mapping domain.MappingConfig, reporter *Reporter, opts ...Option) *Controller {
	c := &Controller{
		mapping:  mapping,
		writer:   writer,
		reporter: reporter,
		clock:    SystemClock{},
		cooldown: ErrorCooldown,
		state:    LoopState{Sensor: sensor},
		phase:    PhaseReading,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current state machine position
func (c *Controller) Phase() Phase { return c.phase }

// State returns a copy of the loop state
func (c *Controller) State() LoopState { return c.state }

// Err returns the fatal error that ended the loop, if any
func (c *Controller) Err() error { return c.fatal }

// Run steps the loop until it is done. It returns nil when ctx is cancelled
// and the fatal error otherwise.
func (c *Controller) Run(ctx context.Context) error {
	for c.Step(ctx) != PhaseDone {
	}
	return c.fatal
}

// Step performs one transition and returns the new phase
func (c *Controller) Step(ctx context.Context) Phase {
	if c.phase != PhaseDone && ctx.Err() != nil {
		c.phase = PhaseDone
	}
	switch c.phase {
	case PhaseReading:
		c.cycle(ctx)
	case PhaseError:
		c.recover(ctx)
	}
	return c.phase
}

// Close releases the current sensor
func (c *Controller) Close() error {
	if c.state.Sensor == nil {
		return nil
	}
	err := c.state.Sensor.Close()
	c.state.Sensor = nil
	return err
}

func (c *Controller) cycle(ctx context.Context) {
	reading, err := c.state.Sensor.ReadRaw(ctx)
	if err != nil {
		c.fail("read", err)
		return
	}

	level := c.mapping.Level(reading.Light)
	if err := c.writer.WriteLevel(level); err != nil {
		c.fail("write", err)
		return
	}

	c.state.Reports++
	c.state.Dropped += reading.Dropped
	c.reporter.Observe(&c.state, reading, level)
}

func (c *Controller) fail(stage string, err error) {
	c.pending = failure{stage: stage, err: err}
	c.phase = PhaseError
}

func (c *Controller) recover(ctx context.Context) {
	f := c.pending
	c.pending = failure{}
	c.state.PrevPrinted = false

	if f.stage == "read" && c.reconnect != nil && errors.Is(f.err, domain.ErrDeviceLost) {
		log.Warn().Err(f.err).Msg("sensor lost, reconnecting")
		if err := c.Close(); err != nil {
			log.Debug().Err(err).Msg("closing lost sensor")
		}
		sensor, err := c.reconnect(ctx)
		if err != nil {
			c.fatal = fmt.Errorf("reconnect: %w", err)
			c.phase = PhaseDone
			return
		}
		c.state.Sensor = sensor
		c.phase = PhaseReading
		return
	}

	log.Warn().Err(f.err).Str("stage", f.stage).Dur("cooldown", c.cooldown).Msg("cycle failed")
	select {
	case <-ctx.Done():
		c.phase = PhaseDone
	case <-c.clock.After(c.cooldown):
		c.phase = PhaseReading
	}
}
