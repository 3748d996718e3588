package grpc

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// History is a decoded GetHistory reply
type History struct {
	Samples      []*domain.Sample
	AverageLevel float64
	MinLevel     int
	MaxLevel     int
}

// sampleFields converts domain model to a struct-compatible map.
// The timestamp travels as RFC 3339 text since a float64 cannot hold unix nanoseconds.
func sampleFields(s *domain.Sample) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"timestamp":  s.Timestamp.UTC().Format(time.RFC3339Nano),
		"delta_us":   s.Delta.Microseconds(),
		"raw":        s.Raw,
		"full_scale": s.FullScale,
		"normalized": s.Normalized,
		"level":      s.Level,
		"screen_max": s.ScreenMax,
		"rate":       uint32(s.Rate),
		"dropped":    uint32(s.Dropped),
		"flags":      s.Flags.String(),
	}
}

func sampleToStruct(s *domain.Sample) (*structpb.Struct, error) {
	return structpb.NewStruct(sampleFields(s))
}

// SampleFromStruct decodes a sample produced by the status service
func SampleFromStruct(st *structpb.Struct) (*domain.Sample, error) {
	f := st.GetFields()

	ts, err := time.Parse(time.RFC3339Nano, f["timestamp"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("bad sample timestamp: %w", err)
	}
	flags, err := parseFlags(f["flags"].GetStringValue())
	if err != nil {
		return nil, err
	}

	return &domain.Sample{
		ID:         int64(f["id"].GetNumberValue()),
		Timestamp:  ts,
		Delta:      time.Duration(f["delta_us"].GetNumberValue()) * time.Microsecond,
		Raw:        uint64(f["raw"].GetNumberValue()),
		FullScale:  uint64(f["full_scale"].GetNumberValue()),
		Normalized: f["normalized"].GetNumberValue(),
		Level:      int(f["level"].GetNumberValue()),
		ScreenMax:  int(f["screen_max"].GetNumberValue()),
		Rate:       uint16(f["rate"].GetNumberValue()),
		Dropped:    uint16(f["dropped"].GetNumberValue()),
		Flags:      flags,
	}, nil
}

// HistoryFromStruct decodes a GetHistory reply
func HistoryFromStruct(st *structpb.Struct) (*History, error) {
	f := st.GetFields()

	h := &History{
		AverageLevel: f["average_level"].GetNumberValue(),
		MinLevel:     int(f["min_level"].GetNumberValue()),
		MaxLevel:     int(f["max_level"].GetNumberValue()),
	}
	for _, v := range f["samples"].GetListValue().GetValues() {
		s, err := SampleFromStruct(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		h.Samples = append(h.Samples, s)
	}
	return h, nil
}

func parseFlags(mask string) (domain.Flags, error) {
	var flags domain.Flags
	if len(mask) != len(flags) {
		return flags, fmt.Errorf("bad flags mask %q", mask)
	}
	for i := range flags {
		flags[i] = mask[i] == 'x'
	}
	return flags, nil
}

// statistics holds level statistics for a window
type statistics struct {
	average float64
	min     int
	max     int
}

// calculateStatistics computes stats for a set of samples
func calculateStatistics(samples []*domain.Sample) statistics {
	if len(samples) == 0 {
		return statistics{}
	}

	var sum int
	lo := samples[0].Level
	hi := samples[0].Level

	for _, s := range samples {
		sum += s.Level
		if s.Level < lo {
			lo = s.Level
		}
		if s.Level > hi {
			hi = s.Level
		}
	}

	return statistics{
		average: float64(sum) / float64(len(samples)),
		min:     lo,
		max:     hi,
	}
}
