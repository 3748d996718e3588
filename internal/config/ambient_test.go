package config

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoadAmbient_Defaults(t *testing.T) {
	a, err := loadAmbient(env(nil))
	if err != nil {
		t.Fatalf("loadAmbient failed: %v", err)
	}
	if a.LogLevel != zerolog.InfoLevel {
		t.Errorf("expected info level, got %v", a.LogLevel)
	}
	if a.SensorType != "serial" {
		t.Errorf("expected serial sensor, got %q", a.SensorType)
	}
	if a.Retention != time.Hour {
		t.Errorf("expected 1h retention, got %v", a.Retention)
	}
	if a.GRPCAddr != "" || a.HTTPAddr != "" || a.HistoryDB != "" || a.TLS.Enabled() {
		t.Errorf("expected optional surfaces disabled, got %+v", a)
	}
}

func TestLoadAmbient_Set(t *testing.T) {
	a, err := loadAmbient(env(map[string]string{
		"LOG_LEVEL":         "debug",
		"SENSOR_TYPE":       "mock",
		"STATUS_GRPC_ADDR":  ":50051",
		"STATUS_HTTP_ADDR":  "127.0.0.1:8080",
		"HISTORY_DB":        "/var/lib/als/history.db",
		"HISTORY_RETENTION": "15m",
		"TLS_CERT":          "cert.pem",
		"TLS_KEY":           "key.pem",
		"TLS_CA":            "ca.pem",
	}))
	if err != nil {
		t.Fatalf("loadAmbient failed: %v", err)
	}
	if a.LogLevel != zerolog.DebugLevel || a.SensorType != "mock" || a.Retention != 15*time.Minute {
		t.Errorf("unexpected ambient config: %+v", a)
	}
	if a.GRPCAddr != ":50051" || a.HTTPAddr != "127.0.0.1:8080" || a.HistoryDB != "/var/lib/als/history.db" {
		t.Errorf("unexpected addresses: %+v", a)
	}
	if !a.TLS.Enabled() || a.TLS.CA != "ca.pem" {
		t.Errorf("unexpected TLS files: %+v", a.TLS)
	}
}

func TestLoadAmbient_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "log level", vars: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "sensor type", vars: map[string]string{"SENSOR_TYPE": "gpio"}},
		{name: "retention", vars: map[string]string{"HISTORY_RETENTION": "forever"}},
		{name: "negative retention", vars: map[string]string{"HISTORY_RETENTION": "-1h"}},
		{name: "partial tls", vars: map[string]string{"TLS_CERT": "cert.pem"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadAmbient(env(tt.vars)); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
