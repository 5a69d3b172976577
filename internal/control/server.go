// Package control serves the local gRPC control service. A second invocation
// of the binary uses it to ask the running instance for a capture instead of
// starting another one.
package control

import (
	"context"
	"errors"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/orchestrator/pipeline"
	"github.com/light4/christina/internal/orchestrator/result"
	"github.com/light4/christina/internal/trace"
	"github.com/light4/christina/pkg/pb"
)

// Source labels runs requested over the control service.
const Source = "control"

// Controller is the part of the orchestrator the control service drives.
type Controller interface {
	Do(ctx context.Context, in pipeline.Input) (result.Result, error)
	Current() result.Result
	TranslateText(ctx context.Context, text string) (result.Result, error)
}

// Server implements pb.ControlServer and the standard health service.
type Server struct {
	pb.UnimplementedControlServer

	ctrl   Controller
	health *health.Server
	grpc   *grpc.Server
}

// New creates a server with trace propagation on every call.
func New(ctrl Controller, opts ...grpc.ServerOption) *Server {
	s := &Server{
		ctrl:   ctrl,
		health: health.NewServer(),
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(trace.UnaryServerInterceptor())}, opts...)
	s.grpc = grpc.NewServer(opts...)
	pb.RegisterControlServer(s.grpc, s)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(pb.ControlServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	trace.Logger(context.Background()).Info("control service listening", "addr", lis.Addr().String())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop marks the service as not serving and waits for in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// Capture runs the pipeline and waits for its result. A run already pending
// yields Busy (ResourceExhausted).
func (s *Server) Capture(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	res, err := s.ctrl.Do(ctx, pipeline.Input{Source: Source})
	switch {
	case errors.Is(err, pipeline.ErrUnchanged):
		return ToStruct(res, true)
	case err != nil:
		return nil, asAppError(err)
	}
	return ToStruct(res, false)
}

func (s *Server) Current(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return ToStruct(s.ctrl.Current(), false)
}

func (s *Server) Translate(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	text := in.GetValue()
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.InvalidArgument, "text is empty")
	}
	res, err := s.ctrl.TranslateText(ctx, text)
	if err != nil {
		return nil, asAppError(err)
	}
	return wrapperspb.String(res.Translated), nil
}

// asAppError makes sure the client sees a code it can map back.
func asAppError(err error) error {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Wrap(err, apperr.Internal, err.Error())
}
