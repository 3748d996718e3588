package httpapi

import (
	"time"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// ApiResponse is the envelope for every endpoint
type ApiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// SampleResponse is the JSON form of a status sample
type SampleResponse struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	DeltaMicros int64     `json:"delta_us"`
	Raw         uint64    `json:"raw"`
	FullScale   uint64    `json:"full_scale"`
	Normalized  float64   `json:"normalized"`
	Level       int       `json:"level"`
	ScreenMax   int       `json:"screen_max"`
	Mapped      float64   `json:"mapped"`
	Rate        uint16    `json:"rate"`
	Dropped     uint16    `json:"dropped"`
	Flags       string    `json:"flags"`
}

// HistoryResponse lists samples in a window
type HistoryResponse struct {
	Since   time.Time        `json:"since"`
	Samples []SampleResponse `json:"samples"`
	Total   int              `json:"total"`
}

// HealthResponse reports liveness of the status surface
type HealthResponse struct {
	Uptime     string `json:"uptime"`
	LastSample string `json:"last_sample,omitempty"`
}

func toSampleResponse(s *domain.Sample) SampleResponse {
	return SampleResponse{
		ID:          s.ID,
		Timestamp:   s.Timestamp,
		DeltaMicros: s.Delta.Microseconds(),
		Raw:         s.Raw,
		FullScale:   s.FullScale,
		Normalized:  s.Normalized,
		Level:       s.Level,
		ScreenMax:   s.ScreenMax,
		Mapped:      s.LevelFraction(),
		Rate:        s.Rate,
		Dropped:     s.Dropped,
		Flags:       s.Flags.String(),
	}
}
