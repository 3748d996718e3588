package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/quentinrf/ambient-backlight/internal/adapters/mock"
	"github.com/quentinrf/ambient-backlight/internal/domain"
)

func newTestController(t *testing.T, sensor LightSensor, writer *mock.Writer, opts ...Option) (*Controller, *fakeClock, *recordingRenderer) {
	t.Helper()
	clock := newFakeClock()
	renderer := &recordingRenderer{}
	mapping := testMapping(t)
	reporter := NewReporter(clock, mapping, renderer, nil)
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewController(sensor, writer, mapping, reporter, opts...), clock, renderer
}

func TestController_ReadMapWrite(t *testing.T) {
	sensor := mock.NewScriptedSensor(mock.Light(500), mock.Light(900), mock.Light(0))
	writer := &mock.Writer{}
	c, _, renderer := newTestController(t, sensor, writer)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if got := c.Step(ctx); got != PhaseReading {
			t.Fatalf("step %d: expected reading phase, got %v", i, got)
		}
	}

	if got, want := writer.Levels(), []int{325, 1000, 100}; !slices.Equal(got, want) {
		t.Errorf("expected levels %v, got %v", want, got)
	}
	if got := c.State().Reports; got != 3 {
		t.Errorf("expected 3 reports, got %d", got)
	}
	// all three cycles fall into the same reporting slot
	if len(renderer.calls) != 1 {
		t.Errorf("expected 1 rendered sample, got %d", len(renderer.calls))
	}
}

func TestController_TransientReadError(t *testing.T) {
	sensor := mock.NewScriptedSensor(
		mock.Fail(fmt.Errorf("select: %w", domain.ErrReadTimeout)),
		mock.Light(100),
	)
	writer := &mock.Writer{}
	c, clock, _ := newTestController(t, sensor, writer)
	ctx := context.Background()

	if got := c.Step(ctx); got != PhaseError {
		t.Fatalf("expected error phase, got %v", got)
	}
	if got := c.Step(ctx); got != PhaseReading {
		t.Fatalf("expected reading phase after cool-down, got %v", got)
	}
	if !slices.Equal(clock.slept, []time.Duration{ErrorCooldown}) {
		t.Errorf("expected a single %v cool-down, got %v", ErrorCooldown, clock.slept)
	}
	if c.State().PrevPrinted {
		t.Error("expected status to be marked degraded")
	}

	c.Step(ctx)
	if got := writer.Levels(); !slices.Equal(got, []int{100}) {
		t.Errorf("expected levels [100], got %v", got)
	}
	if sensor.Closed() {
		t.Error("transient error must not close the sensor")
	}
}

func TestController_WriteErrorKeepsSensor(t *testing.T) {
	sensor := mock.NewScriptedSensor(mock.Light(500), mock.Light(500))
	writer := &mock.Writer{}
	writer.FailNext(errors.New("write brightness: input/output error"))

	reconnects := 0
	reconnect := func(ctx context.Context) (LightSensor, error) {
		reconnects++
		return nil, errors.New("unexpected")
	}
	c, clock, _ := newTestController(t, sensor, writer, WithReconnect(reconnect))
	ctx := context.Background()

	if got := c.Step(ctx); got != PhaseError {
		t.Fatalf("expected error phase, got %v", got)
	}
	if got := c.Step(ctx); got != PhaseReading {
		t.Fatalf("expected reading phase, got %v", got)
	}
	c.Step(ctx)

	if reconnects != 0 {
		t.Errorf("write error must not reconnect, got %d reconnects", reconnects)
	}
	if len(clock.slept) != 1 {
		t.Errorf("expected one cool-down, got %v", clock.slept)
	}
	if got := writer.Levels(); !slices.Equal(got, []int{325}) {
		t.Errorf("expected levels [325], got %v", got)
	}
	if sensor.Reads() != 2 {
		t.Errorf("expected 2 reads on the same sensor, got %d", sensor.Reads())
	}
}

func TestController_DeviceLostReconnects(t *testing.T) {
	lost := mock.NewScriptedSensor(mock.Fail(fmt.Errorf("only got 1 bytes: %w", domain.ErrDeviceLost)))
	replacement := mock.NewScriptedSensor(mock.Light(500))

	reconnects := 0
	reconnect := func(ctx context.Context) (LightSensor, error) {
		reconnects++
		return replacement, nil
	}
	writer := &mock.Writer{}
	c, clock, _ := newTestController(t, lost, writer, WithReconnect(reconnect))
	ctx := context.Background()

	c.Step(ctx)
	if got := c.Step(ctx); got != PhaseReading {
		t.Fatalf("expected reading phase after reconnect, got %v", got)
	}
	if !lost.Closed() {
		t.Error("expected the lost sensor to be closed")
	}
	if reconnects != 1 {
		t.Errorf("expected 1 reconnect, got %d", reconnects)
	}
	if len(clock.slept) != 0 {
		t.Errorf("reconnect should not cool down, slept %v", clock.slept)
	}

	c.Step(ctx)
	if replacement.Reads() != 1 {
		t.Errorf("expected the replacement sensor to be read, got %d reads", replacement.Reads())
	}
	if got := writer.Levels(); !slices.Equal(got, []int{325}) {
		t.Errorf("expected levels [325], got %v", got)
	}
}

func TestController_ReconnectExhaustedIsFatal(t *testing.T) {
	sensor := mock.NewScriptedSensor(mock.Fail(domain.ErrDeviceLost))
	reconnect := func(ctx context.Context) (LightSensor, error) {
		return nil, fmt.Errorf("%w: /dev/ttyACM0../dev/ttyACM15", domain.ErrProbeExhausted)
	}
	c, _, _ := newTestController(t, sensor, &mock.Writer{}, WithReconnect(reconnect))

	err := c.Run(context.Background())
	if !errors.Is(err, domain.ErrProbeExhausted) {
		t.Fatalf("expected ErrProbeExhausted, got %v", err)
	}
	if c.Phase() != PhaseDone {
		t.Errorf("expected done phase, got %v", c.Phase())
	}
	if c.Err() != err {
		t.Errorf("Err() = %v, want %v", c.Err(), err)
	}
}

func TestController_DeviceLostWithoutReconnectCoolsDown(t *testing.T) {
	sensor := mock.NewScriptedSensor(mock.Fail(domain.ErrDeviceLost), mock.Light(900))
	writer := &mock.Writer{}
	c, clock, _ := newTestController(t, sensor, writer)
	ctx := context.Background()

	c.Step(ctx)
	c.Step(ctx)
	c.Step(ctx)

	if sensor.Closed() {
		t.Error("sensor must be kept when no reconnector is configured")
	}
	if len(clock.slept) != 1 {
		t.Errorf("expected one cool-down, got %v", clock.slept)
	}
	if got := writer.Levels(); !slices.Equal(got, []int{1000}) {
		t.Errorf("expected levels [1000], got %v", got)
	}
}

func TestController_CountersWrap(t *testing.T) {
	sensor := mock.NewScriptedSensor(
		mock.Outcome{Reading: domain.SensorReading{Light: 500, Dropped: 65535}},
		mock.Outcome{Reading: domain.SensorReading{Light: 500, Dropped: 2}},
	)
	c, _, _ := newTestController(t, sensor, &mock.Writer{})
	ctx := context.Background()

	c.Step(ctx)
	c.Step(ctx)

	if got := c.State().Dropped; got != 1 {
		t.Errorf("expected dropped to wrap to 1, got %d", got)
	}

	fake := mock.NewFakeSensor(500, 0, 4095)
	c2, _, _ := newTestController(t, fake, &mock.Writer{})
	for i := 0; i < 65537; i++ {
		c2.Step(ctx)
	}
	if got := c2.State().Reports; got != 1 {
		t.Errorf("expected reports to wrap to 1, got %d", got)
	}
}

func TestController_CancelledContext(t *testing.T) {
	sensor := mock.NewScriptedSensor(mock.Light(500))
	writer := &mock.Writer{}
	c, _, _ := newTestController(t, sensor, writer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Run(ctx); err != nil {
		t.Fatalf("expected nil error on cancellation, got %v", err)
	}
	if sensor.Reads() != 0 {
		t.Errorf("expected no reads after cancellation, got %d", sensor.Reads())
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !sensor.Closed() {
		t.Error("expected Close to release the sensor")
	}
}

func TestPhase_String(t *testing.T) {
	tests := map[Phase]string{
		PhaseReading: "reading",
		PhaseError:   "error",
		PhaseDone:    "done",
		Phase(9):     "phase(9)",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}
