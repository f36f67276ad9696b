package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type GRPCServer struct {
	server *grpc.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger) *GRPCServer {
	return &GRPCServer{
		server: grpc.NewServer(grpc.ChainUnaryInterceptor(recoverInterceptor(logger), logInterceptor(logger))),
		cfg:    cfg,
		logger: logger,
	}
}

func (s *GRPCServer) RegisterServices(catalogUC usecase.CatalogUC) {
	RegisterCatalogServiceServer(s.server, NewCatalogService(catalogUC, s.logger))
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(lis)
}

// Serve обслуживает готовый listener до остановки сервера.
func (s *GRPCServer) Serve(lis net.Listener) error {
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}

	return nil
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}

func logInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		res, err := handler(ctx, req)

		code := status.Code(err)
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied:
			log.Debugf("%s %s %s", info.FullMethod, code, time.Since(start))
		default:
			log.Warnf("%s %s %s: %v", info.FullMethod, code, time.Since(start), err)
		}

		return res, err
	}
}

func recoverInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (res any, err error) {
		defer func() {
			if p := recover(); p != nil {
				log.Errorf(fmt.Errorf("panic: %v", p), "%s", info.FullMethod)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}
