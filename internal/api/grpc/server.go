package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/St1cky1/task-service/internal/usecase"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

type GRPCServer struct {
	taskService usecase.ITaskService
	logger      *slog.Logger
	server      *grpc.Server
	health      *health.Server
}

func NewGRPCServer(taskService usecase.ITaskService, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &GRPCServer{
		taskService: taskService,
		logger:      logger.With("component", "grpc"),
		health:      health.NewServer(),
	}

	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(s.unaryInterceptor),
	)
	RegisterTaskServiceServer(s.server, NewTaskServiceServer(taskService, s.logger))
	healthpb.RegisterHealthServer(s.server, s.health)
	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(s.server)

	return s
}

func (s *GRPCServer) Start(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve блокируется до вызова Stop или ошибки listener'а.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.DebugContext(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
