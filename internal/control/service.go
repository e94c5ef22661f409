package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "chronomesh.control.v1.MissionControl"

// Full method names.
const (
	MissionControl_Start_FullMethodName           = "/" + ServiceName + "/Start"
	MissionControl_Pause_FullMethodName           = "/" + ServiceName + "/Pause"
	MissionControl_Reset_FullMethodName           = "/" + ServiceName + "/Reset"
	MissionControl_SetSpeed_FullMethodName        = "/" + ServiceName + "/SetSpeed"
	MissionControl_TriggerDecision_FullMethodName = "/" + ServiceName + "/TriggerDecision"
	MissionControl_ExitDecision_FullMethodName    = "/" + ServiceName + "/ExitDecision"
	MissionControl_GetSnapshot_FullMethodName     = "/" + ServiceName + "/GetSnapshot"
)

// MissionControlServer is the server API for the MissionControl service.
// Every response is a JSON-shaped Struct so viewers need no generated
// stubs.
type MissionControlServer interface {
	Start(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Pause(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Reset(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetSpeed(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	TriggerDecision(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ExitDecision(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterMissionControlServer attaches srv to s.
func RegisterMissionControlServer(s grpc.ServiceRegistrar, srv MissionControlServer) {
	s.RegisterService(&MissionControl_ServiceDesc, srv)
}

func unaryHandler[Req proto.Message](
	fullMethod string,
	newReq func() Req,
	call func(MissionControlServer, context.Context, Req) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MissionControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MissionControlServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

// MissionControl_ServiceDesc is the grpc.ServiceDesc for MissionControl.
var MissionControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MissionControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Start",
			Handler: unaryHandler(MissionControl_Start_FullMethodName, newEmpty,
				func(s MissionControlServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.Start(ctx, in)
				}),
		},
		{
			MethodName: "Pause",
			Handler: unaryHandler(MissionControl_Pause_FullMethodName, newEmpty,
				func(s MissionControlServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.Pause(ctx, in)
				}),
		},
		{
			MethodName: "Reset",
			Handler: unaryHandler(MissionControl_Reset_FullMethodName, newEmpty,
				func(s MissionControlServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.Reset(ctx, in)
				}),
		},
		{
			MethodName: "SetSpeed",
			Handler: unaryHandler(MissionControl_SetSpeed_FullMethodName,
				func() *wrapperspb.Int32Value { return new(wrapperspb.Int32Value) },
				func(s MissionControlServer, ctx context.Context, in *wrapperspb.Int32Value) (*structpb.Struct, error) {
					return s.SetSpeed(ctx, in)
				}),
		},
		{
			MethodName: "TriggerDecision",
			Handler: unaryHandler(MissionControl_TriggerDecision_FullMethodName, newEmpty,
				func(s MissionControlServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.TriggerDecision(ctx, in)
				}),
		},
		{
			MethodName: "ExitDecision",
			Handler: unaryHandler(MissionControl_ExitDecision_FullMethodName, newEmpty,
				func(s MissionControlServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.ExitDecision(ctx, in)
				}),
		},
		{
			MethodName: "GetSnapshot",
			Handler: unaryHandler(MissionControl_GetSnapshot_FullMethodName, newEmpty,
				func(s MissionControlServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.GetSnapshot(ctx, in)
				}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// MissionControlClient is the client API for the MissionControl service.
type MissionControlClient interface {
	Start(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Pause(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Reset(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetSpeed(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	TriggerDecision(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ExitDecision(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type missionControlClient struct {
	cc grpc.ClientConnInterface
}

// NewMissionControlClient wraps cc.
func NewMissionControlClient(cc grpc.ClientConnInterface) MissionControlClient {
	return &missionControlClient{cc: cc}
}

func (c *missionControlClient) invoke(ctx context.Context, method string, in proto.Message, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *missionControlClient) Start(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MissionControl_Start_FullMethodName, in, opts)
}

func (c *missionControlClient) Pause(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MissionControl_Pause_FullMethodName, in, opts)
}

func (c *missionControlClient) Reset(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MissionControl_Reset_FullMethodName, in, opts)
}

func (c *missionControlClient) SetSpeed(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MissionControl_SetSpeed_FullMethodName, in, opts)
}

func (c *missionControlClient) TriggerDecision(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MissionControl_TriggerDecision_FullMethodName, in, opts)
}

func (c *missionControlClient) ExitDecision(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MissionControl_ExitDecision_FullMethodName, in, opts)
}

func (c *missionControlClient) GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MissionControl_GetSnapshot_FullMethodName, in, opts)
}
