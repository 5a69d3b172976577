package grpcclient

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/light4/christina/internal/control"
	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/orchestrator/result"
	"github.com/light4/christina/internal/resilience"
	"github.com/light4/christina/internal/trace"
	"github.com/light4/christina/pkg/pb"
)

// Config holds client settings.
type Config struct {
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
	CallTimeout      time.Duration
	Retry            resilience.RetryConfig
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	retry := resilience.ControlRetryConfig()
	retry.IsRetryable = isTransient
	return Config{
		KeepaliveTime:    DefaultKeepaliveTime,
		KeepaliveTimeout: DefaultKeepaliveTimeout,
		CallTimeout:      DefaultCallTimeout,
		Retry:            retry,
	}
}

// isTransient retries transport failures only. A failed capture also maps to
// Unavailable but carries its own code, and running it again would not help.
func isTransient(err error) bool {
	if !resilience.IsRetryableGRPC(err) {
		return false
	}
	switch apperr.FromGRPCError(err).Code {
	case apperr.Unavailable, apperr.Timeout, apperr.Unknown:
		return true
	default:
		return false
	}
}

// Client wraps the control and health clients
type Client struct {
	conn    *grpc.ClientConn
	cfg     Config
	Control pb.ControlClient
	Health  healthpb.HealthClient
}

// New creates a client for the instance listening on addr. No connection is
// made until the first call.
func New(addr string, cfg Config, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    cfg.KeepaliveTime,
			Timeout: cfg.KeepaliveTimeout,
		}),
		grpc.WithUnaryInterceptor(trace.UnaryClientInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ConfigInvalid, "invalid control address")
	}

	return &Client{
		conn:    conn,
		cfg:     cfg,
		Control: pb.NewControlClient(conn),
		Health:  healthpb.NewHealthClient(conn),
	}, nil
}

// Close closes the gRPC connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Probe reports whether an instance is serving on the address. It does not
// retry: no answer within HealthCheckTimeout means no instance.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	resp, err := c.Health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ControlServiceName})
	if err != nil {
		trace.Logger(ctx).Debug("no running instance", "error", err)
		return false
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
}

// Capture asks the running instance for one pipeline run. unchanged is true
// when the frame matched the previous run.
func (c *Client) Capture(ctx context.Context) (res result.Result, unchanged bool, err error) {
	err = c.call(ctx, func(ctx context.Context) error {
		s, err := c.Control.Capture(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		res, unchanged = control.FromStruct(s)
		return nil
	})
	return res, unchanged, err
}

// Current returns the pair the running instance shows.
func (c *Client) Current(ctx context.Context) (res result.Result, err error) {
	err = c.call(ctx, func(ctx context.Context) error {
		s, err := c.Control.Current(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		res, _ = control.FromStruct(s)
		return nil
	})
	return res, err
}

// Translate translates text in the running instance.
func (c *Client) Translate(ctx context.Context, text string) (translated string, err error) {
	err = c.call(ctx, func(ctx context.Context) error {
		v, err := c.Control.Translate(ctx, wrapperspb.String(text))
		if err != nil {
			return err
		}
		translated = v.GetValue()
		return nil
	})
	return translated, err
}

// call retries transport failures and converts the final error.
func (c *Client) call(ctx context.Context, fn func(context.Context) error) error {
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}
	ctx, _ = trace.EnsureContext(ctx)

	err := resilience.Retry(ctx, c.cfg.Retry, func() error { return fn(ctx) })
	if err == nil {
		return nil
	}
	return apperr.FromGRPCError(err)
}
