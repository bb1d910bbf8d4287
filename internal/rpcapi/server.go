package rpcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jonboulle/clockwork"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/gacha-curve/internal/calculator"
	"github.com/xtding233/gacha-curve/internal/gacha"
)

// Server implements CalculatorServer on top of a calculator.Service.
type Server struct {
	svc *calculator.Service
}

var _ CalculatorServer = (*Server)(nil)

func NewServer(svc *calculator.Service) *Server {
	return &Server{svc: svc}
}

// NewGRPCServer returns a grpc.Server with the Calculator service registered
// and per-call logging.
func NewGRPCServer(svc *calculator.Service, clock clockwork.Clock, opts ...grpc.ServerOption) *grpc.Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(logInterceptor(clock)))
	s := grpc.NewServer(opts...)
	RegisterCalculatorServer(s, NewServer(svc))
	return s
}

func (s *Server) Curve(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req calculator.Request
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Curve(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(resp)
}

func (s *Server) Plan(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req calculator.PlanRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Plan(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(resp)
}

func fromStruct(in *structpb.Struct, v any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// CodeFor maps a calculator error to a gRPC status code.
func CodeFor(err error) codes.Code {
	switch {
	case calculator.NotFound(err):
		return codes.NotFound
	case errors.Is(err, gacha.ErrConfiguration):
		return codes.InvalidArgument
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// toStatus keeps the ErrorInfo kind as the message prefix ("kind: message").
func toStatus(err error) error {
	info := calculator.Describe(err)
	return status.Error(CodeFor(err), fmt.Sprintf("%s: %s", info.Kind, info.Message))
}

func logInterceptor(clock clockwork.Clock) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := clock.Now()
		resp, err := handler(ctx, req)
		log.Printf("[grpc] %s %v (%v)", info.FullMethod, status.Code(err), clock.Since(start))
		return resp, err
	}
}
