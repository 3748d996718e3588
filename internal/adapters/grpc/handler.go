package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// StatusHandler implements StatusServer over the sample journal
type StatusHandler struct {
	repo domain.SampleRepository
}

// NewStatusHandler creates a new gRPC handler
func NewStatusHandler(repo domain.SampleRepository) *StatusHandler {
	return &StatusHandler{repo: repo}
}

// GetCurrentSample returns the most recent sample
func (h *StatusHandler) GetCurrentSample(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	log.Debug().Msg("GetCurrentSample called")

	sample, err := h.repo.GetLatestSample(ctx)
	if errors.Is(err, domain.ErrSampleNotFound) {
		return nil, status.Error(codes.NotFound, "no samples recorded yet")
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest sample")
		return nil, status.Error(codes.Internal, "failed to get sample")
	}

	out, err := sampleToStruct(sample)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode sample")
		return nil, status.Error(codes.Internal, "failed to encode sample")
	}
	return out, nil
}

// GetHistory returns samples within a time range with level statistics
func (h *StatusHandler) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	startV, okStart := fields["start_time"]
	endV, okEnd := fields["end_time"]
	if !okStart || !okEnd {
		return nil, status.Error(codes.InvalidArgument, "start_time and end_time are required")
	}

	start := time.Unix(int64(startV.GetNumberValue()), 0)
	end := time.Unix(int64(endV.GetNumberValue()), 0)
	if !end.After(start) {
		return nil, status.Error(codes.InvalidArgument, "end_time must be after start_time")
	}

	log.Debug().
		Time("start", start).
		Time("end", end).
		Msg("GetHistory called")

	samples, err := h.repo.GetSamplesInRange(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get samples")
		return nil, status.Error(codes.Internal, "failed to get samples")
	}

	list := make([]any, len(samples))
	for i, s := range samples {
		list[i] = sampleFields(s)
	}

	stats := calculateStatistics(samples)

	out, err := structpb.NewStruct(map[string]any{
		"samples":       list,
		"average_level": stats.average,
		"min_level":     stats.min,
		"max_level":     stats.max,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode history")
		return nil, status.Error(codes.Internal, "failed to encode history")
	}
	return out, nil
}
