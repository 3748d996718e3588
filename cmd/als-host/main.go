package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-backlight/internal/adapters/backlight"
	"github.com/quentinrf/ambient-backlight/internal/adapters/mock"
	"github.com/quentinrf/ambient-backlight/internal/adapters/serial"
	"github.com/quentinrf/ambient-backlight/internal/adapters/terminal"
	"github.com/quentinrf/ambient-backlight/internal/config"
	"github.com/quentinrf/ambient-backlight/internal/ports"
	"github.com/quentinrf/ambient-backlight/internal/service"
)

func main() {
	ambient, err := config.LoadAmbient()
	service.InitLogger(ambient.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad environment")
	}

	cfg, err := config.ParseHost(os.Args[1:], os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("bad arguments")
	}

	screenMax, err := backlight.ReadMaxBrightness(cfg.BacklightPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.BacklightPath).Msg("failed to read max brightness")
	}
	mapping, err := cfg.Mapping(screenMax)
	if err != nil {
		log.Fatal().Err(err).Msg("bad mapping")
	}

	log.Info().
		Str("serial_prefix", cfg.SerialPrefix).
		Str("backlight", cfg.BacklightPath).
		Float64("light_min", cfg.LightMin).
		Float64("light_max", cfg.LightMax).
		Float64("screen_min", cfg.ScreenMin).
		Float64("screen_power", cfg.ScreenPower).
		Int("max_backlight", screenMax).
		Uint64("max_sum", serial.FullScale).
		Msg("starting ambient light host")

	writer, err := backlight.Open(cfg.BacklightPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open backlight")
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		sensor ports.LightSensor
		opts   []ports.Option
	)
	switch ambient.SensorType {
	case "mock":
		sensor = mock.NewFakeSensor((cfg.LightMin+cfg.LightMax)/2, (cfg.LightMax-cfg.LightMin)/4, serial.FullScale).
			WithInterval(10 * time.Millisecond)
		log.Info().Msg("initialized mock sensor")
	default:
		prober := serial.NewProber(cfg.SerialPrefix, serial.DefaultCandidates, serial.DefaultPortConfig().Opener())
		s, err := prober.Probe(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("no light sensor")
		}
		sensor = s
		opts = append(opts, ports.WithReconnect(prober.Reconnect))
	}

	status, err := service.StartStatus(ctx, ambient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start status surfaces")
	}

	reporter := ports.NewReporter(ports.SystemClock{}, mapping, terminal.New(os.Stdout), status.Journal)
	controller := ports.NewController(sensor, writer, mapping, reporter, opts...)

	err = controller.Run(ctx)
	controller.Close()
	status.Stop()
	if err != nil {
		log.Fatal().Err(err).Msg("control loop failed")
	}

	log.Info().Msg("stopped")
}
