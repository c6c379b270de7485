package grpc

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type recordingLogger struct {
	nopLogger
	mu    sync.Mutex
	warns []string
	debug []string
}

func (r *recordingLogger) Debug(_ context.Context, msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debug = append(r.debug, msg)
}

func (r *recordingLogger) Warn(_ context.Context, msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func (r *recordingLogger) With(...any) logging.Logger { return r }

func TestInterceptor_PassesThrough(t *testing.T) {
	l := &recordingLogger{}
	s := NewGRPCServer("", l, nil, 0)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, []string{"grpc call"}, l.debug)
	assert.Empty(t, l.warns)
}

func TestInterceptor_LogsFailures(t *testing.T) {
	l := &recordingLogger{}
	s := NewGRPCServer("", l, nil, 0)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	})

	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, []string{"grpc call failed"}, l.warns)
}
