package grpc

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInterceptor_PassesThrough(t *testing.T) {
	logger := &recordingLogger{}
	s := &GRPCServer{logger: logger}

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if got := logger.last(); got != "grpc call" {
		t.Fatalf("expected debug line, got %q", got)
	}
}

func TestInterceptor_LogsErrors(t *testing.T) {
	logger := &recordingLogger{}
	s := &GRPCServer{logger: logger}

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	want := status.Error(codes.NotFound, "unknown service")

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, want
	}

	_, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if !errors.Is(err, want) {
		t.Fatalf("error not propagated: %v", err)
	}
	if got := logger.last(); got != "grpc call failed" {
		t.Fatalf("expected warn line, got %q", got)
	}
}
