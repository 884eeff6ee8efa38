package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe reports whether one dependency is ready.
type Probe func(ctx context.Context) error

// HealthOptions configures a HealthService.
type HealthOptions struct {
	// Addr is the TCP bind address. Ignored when Listener is set.
	Addr     string
	Listener net.Listener
	// Interval is the probe period. Zero means 10s.
	Interval time.Duration
	// Timeout bounds each probe. Zero means Interval.
	Timeout time.Duration
	// Probes maps a grpc.health.v1 service name to its check.
	Probes map[string]Probe
	Logger *zap.Logger
}

// HealthService serves grpc.health.v1. Every probe is published under its
// own service name; the empty name is SERVING only while all of them are.
type HealthService struct {
	opts   HealthOptions
	names  []string
	logger *zap.Logger
	grpc   *grpc.Server
	health *health.Server

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewHealthService builds a HealthService that reports NOT_SERVING until
// its first probe round.
//
// Precondition: opts.Logger must be non-nil.
func NewHealthService(opts HealthOptions) *HealthService {
	if opts.Logger == nil {
		panic("server.NewHealthService: logger must be non-nil")
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = opts.Interval
	}
	names := make([]string, 0, len(opts.Probes))
	for name := range opts.Probes {
		names = append(names, name)
	}
	sort.Strings(names)

	h := &HealthService{
		opts:   opts,
		names:  names,
		logger: opts.Logger.Named("health"),
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		quit:   make(chan struct{}),
	}
	healthpb.RegisterHealthServer(h.grpc, h.health)
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	for _, name := range names {
		h.health.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return h
}

// Check runs every probe once, publishes the results and returns the
// overall status.
func (h *HealthService) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range h.names {
		status := healthpb.HealthCheckResponse_SERVING
		pctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
		err := h.opts.Probes[name](pctx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
			h.logger.Warn("probe failed", zap.String("service", name), zap.Error(err))
		}
		h.health.SetServingStatus(name, status)
	}
	h.health.SetServingStatus("", overall)
	return overall
}

func (h *HealthService) watch(ctx context.Context) {
	ticker := time.NewTicker(h.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.quit:
			return
		default:
		}
		h.Check(ctx)
		select {
		case <-ctx.Done():
			return
		case <-h.quit:
			return
		case <-ticker.C:
		}
	}
}

// Start probes on the configured interval and serves until Stop.
func (h *HealthService) Start(ctx context.Context) error {
	lis := h.opts.Listener
	if lis == nil {
		var err error
		if lis, err = net.Listen("tcp", h.opts.Addr); err != nil {
			return fmt.Errorf("health listen on %s: %w", h.opts.Addr, err)
		}
	}
	h.logger.Info("health service listening", zap.String("addr", lis.Addr().String()))
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.watch(ctx)
	}()
	if err := h.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("health serve: %w", err)
	}
	return nil
}

// Stop reports NOT_SERVING on every name and drains open calls, forcing
// the server closed if ctx expires first.
func (h *HealthService) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.quit) })
	h.wg.Wait()
	h.health.Shutdown()
	done := make(chan struct{})
	go func() {
		h.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		h.grpc.Stop()
		return ctx.Err()
	}
}
