// Package rpcapi serves the calculator over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON documents as the HTTP
// API, so no generated code is needed.
package rpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gachacurve.v1.Calculator"

const (
	curveMethod = "/" + ServiceName + "/Curve"
	planMethod  = "/" + ServiceName + "/Plan"
)

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Curve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Plan(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Calculator service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Curve", Handler: curveHandler},
		{MethodName: "Plan", Handler: planHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gachacurve/v1/calculator.proto",
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func curveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Curve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: curveMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Curve(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func planHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Plan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: planMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Plan(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// CalculatorClient is the client API for the Calculator service.
type CalculatorClient struct {
	cc grpc.ClientConnInterface
}

func NewCalculatorClient(cc grpc.ClientConnInterface) *CalculatorClient {
	return &CalculatorClient{cc: cc}
}

func (c *CalculatorClient) Curve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, curveMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CalculatorClient) Plan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, planMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
