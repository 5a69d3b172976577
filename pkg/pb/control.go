// Package pb holds the control service contract. Messages are protobuf
// well-known types, so only the service descriptor lives here.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ControlServiceName = "christina.control.v1.Control"

const (
	Control_Capture_FullMethodName   = "/christina.control.v1.Control/Capture"
	Control_Current_FullMethodName   = "/christina.control.v1.Control/Current"
	Control_Translate_FullMethodName = "/christina.control.v1.Control/Translate"
)

// ControlClient is the client API for the Control service.
type ControlClient interface {
	Capture(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Current(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Translate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type controlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) ControlClient {
	return &controlClient{cc}
}

func (c *controlClient) Capture(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Control_Capture_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlClient) Current(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Control_Current_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlClient) Translate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, Control_Translate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ControlServer is the server API for the Control service.
type ControlServer interface {
	Capture(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Current(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Translate(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedControlServer can be embedded to have forward compatible implementations.
type UnimplementedControlServer struct{}

func (UnimplementedControlServer) Capture(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Capture not implemented")
}

func (UnimplementedControlServer) Current(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Current not implemented")
}

func (UnimplementedControlServer) Translate(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Translate not implemented")
}

func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&Control_ServiceDesc, srv)
}

func _Control_Capture_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).Capture(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Control_Capture_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).Capture(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Control_Current_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).Current(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Control_Current_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).Current(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Control_Translate_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Control_Translate_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).Translate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Control_ServiceDesc is the grpc.ServiceDesc for the Control service.
var Control_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ControlServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Capture", Handler: _Control_Capture_Handler},
		{MethodName: "Current", Handler: _Control_Current_Handler},
		{MethodName: "Translate", Handler: _Control_Translate_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "control.proto",
}
