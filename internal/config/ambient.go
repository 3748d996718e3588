package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/quentinrf/ambient-backlight/internal/domain"
	"github.com/quentinrf/ambient-backlight/pkg/tlsconfig"
)

// Ambient holds the environment-driven knobs shared by both daemons
type Ambient struct {
	LogLevel   zerolog.Level
	SensorType string // "serial" | "mock", host only
	GRPCAddr   string // status gRPC listen address, empty disables
	HTTPAddr   string // status HTTP listen address, empty disables
	HistoryDB  string // SQLite journal path, empty keeps history in memory
	Retention  time.Duration
	TLS        tlsconfig.Files
}

// LoadAmbient reads configuration from environment variables
func LoadAmbient() (Ambient, error) {
	return loadAmbient(os.Getenv)
}

func loadAmbient(getenv func(string) string) (Ambient, error) {
	level := zerolog.InfoLevel
	if s := getenv("LOG_LEVEL"); s != "" {
		l, err := zerolog.ParseLevel(s)
		if err != nil {
			return Ambient{}, fmt.Errorf("%w: LOG_LEVEL: %w", domain.ErrInvalidConfig, err)
		}
		level = l
	}

	sensorType := getenv("SENSOR_TYPE")
	switch sensorType {
	case "":
		sensorType = "serial"
	case "serial", "mock":
	default:
		return Ambient{}, fmt.Errorf("%w: SENSOR_TYPE %q is not serial or mock", domain.ErrInvalidConfig, sensorType)
	}

	retention := time.Hour
	if s := getenv("HISTORY_RETENTION"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return Ambient{}, fmt.Errorf("%w: HISTORY_RETENTION %q must be a positive duration", domain.ErrInvalidConfig, s)
		}
		retention = d
	}

	tls := tlsconfig.Files{
		Cert: getenv("TLS_CERT"),
		Key:  getenv("TLS_KEY"),
		CA:   getenv("TLS_CA"),
	}
	if tls.Enabled() && (tls.Cert == "" || tls.Key == "" || tls.CA == "") {
		return Ambient{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, tlsconfig.ErrIncomplete)
	}

	return Ambient{
		LogLevel:   level,
		SensorType: sensorType,
		GRPCAddr:   getenv("STATUS_GRPC_ADDR"),
		HTTPAddr:   getenv("STATUS_HTTP_ADDR"),
		HistoryDB:  getenv("HISTORY_DB"),
		Retention:  retention,
		TLS:        tls,
	}, nil
}
