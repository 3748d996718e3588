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
	"github.com/quentinrf/ambient-backlight/internal/adapters/camera"
	"github.com/quentinrf/ambient-backlight/internal/adapters/terminal"
	"github.com/quentinrf/ambient-backlight/internal/config"
	"github.com/quentinrf/ambient-backlight/internal/ports"
	"github.com/quentinrf/ambient-backlight/internal/service"
)

// frameTimeout bounds one wait for a frame; a stalled camera becomes a transient error
const frameTimeout = 5 * time.Second

func main() {
	ambient, err := config.LoadAmbient()
	service.InitLogger(ambient.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad environment")
	}

	cfg, err := config.ParseCamera(os.Args[1:], os.Stderr)
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

	writer, err := backlight.Open(cfg.BacklightPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open backlight")
	}
	defer writer.Close()

	want := camera.Format{
		Width:       cfg.Video.Width,
		Height:      cfg.Video.Height,
		IntervalNum: cfg.Video.IntervalNum,
		IntervalDen: cfg.Video.IntervalDen,
	}
	cam, format, err := camera.Open(cfg.VideoPath, want)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.VideoPath).Msg("failed to open camera")
	}
	sampler := camera.NewSampler(cam, format, frameTimeout)

	log.Info().
		Str("video", cfg.VideoPath).
		Stringer("format", format).
		Str("backlight", cfg.BacklightPath).
		Float64("light_min", cfg.LightMin).
		Float64("light_max", cfg.LightMax).
		Float64("screen_min", cfg.ScreenMin).
		Float64("screen_power", cfg.ScreenPower).
		Int("max_backlight", screenMax).
		Uint64("max_sum", sampler.FullScale()).
		Msg("starting ambient light camera")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status, err := service.StartStatus(ctx, ambient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start status surfaces")
	}

	reporter := ports.NewReporter(ports.SystemClock{}, mapping, terminal.New(os.Stdout), status.Journal)
	controller := ports.NewController(sampler, writer, mapping, reporter)

	err = controller.Run(ctx)
	controller.Close()
	status.Stop()
	if err != nil {
		log.Fatal().Err(err).Msg("control loop failed")
	}

	log.Info().Msg("stopped")
}
