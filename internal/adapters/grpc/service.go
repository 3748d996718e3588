package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

const (
	serviceName = "ambient.v1.StatusService"

	getCurrentSampleMethod = "/" + serviceName + "/GetCurrentSample"
	getHistoryMethod       = "/" + serviceName + "/GetHistory"
)

// StatusServer is the server API for the status service.
// Messages are well-known protobuf types so no generated code is needed.
type StatusServer interface {
	// GetCurrentSample returns the most recent status sample
	GetCurrentSample(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)

	// GetHistory takes {start_time, end_time} in unix seconds and returns the
	// samples in that window with level statistics
	GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterStatusServer registers srv on s
func RegisterStatusServer(s grpc.ServiceRegistrar, srv StatusServer) {
	s.RegisterService(&statusServiceDesc, srv)
}

var statusServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCurrentSample", Handler: getCurrentSampleHandler},
		{MethodName: "GetHistory", Handler: getHistoryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ambient/v1/status.proto",
}

func getCurrentSampleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).GetCurrentSample(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCurrentSampleMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServer).GetCurrentSample(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getHistoryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServer).GetHistory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// StatusClient calls the status service and decodes replies into domain samples
type StatusClient struct {
	cc grpc.ClientConnInterface
}

// NewStatusClient wraps an established connection
func NewStatusClient(cc grpc.ClientConnInterface) *StatusClient {
	return &StatusClient{cc: cc}
}

// GetCurrentSample fetches the latest sample
func (c *StatusClient) GetCurrentSample(ctx context.Context, opts ...grpc.CallOption) (*domain.Sample, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getCurrentSampleMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return SampleFromStruct(out)
}

// GetHistory fetches samples in [start, end) with level statistics
func (c *StatusClient) GetHistory(ctx context.Context, start, end time.Time, opts ...grpc.CallOption) (*History, error) {
	in, err := structpb.NewStruct(map[string]any{
		"start_time": start.Unix(),
		"end_time":   end.Unix(),
	})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getHistoryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return HistoryFromStruct(out)
}
