package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every unary call. Health probes are frequent, so
// successful calls go to debug level.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	if err != nil {
		s.logger.Warn(ctx, "grpc call failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "error", err)
	} else {
		s.logger.Debug(ctx, "grpc call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	}

	return resp, err
}
