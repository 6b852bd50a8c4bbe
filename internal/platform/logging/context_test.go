package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFromContextFallsBack(t *testing.T) {
	var nilCtx context.Context //nolint:revive // testing nil context handling
	if LoggerFromContext(nilCtx) != Logger() {
		t.Fatal("expected process logger for nil context")
	}
	if LoggerFromContext(context.Background()) != Logger() {
		t.Fatal("expected process logger for empty context")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithLogger(context.Background(), logger)
	if LoggerFromContext(ctx) != logger {
		t.Fatal("expected logger stored in context")
	}
}

func TestTraceIDFromContext(t *testing.T) {
	var nilCtx context.Context //nolint:revive // testing nil context handling
	if got := TraceIDFromContext(nilCtx); got != "" {
		t.Fatalf("expected empty trace ID, got %q", got)
	}
	ctx := withTraceID(context.Background(), "")
	if got := TraceIDFromContext(ctx); got != "" {
		t.Fatalf("expected empty trace ID, got %q", got)
	}
	ctx = withTraceID(ctx, "req-1")
	if got := TraceIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
}

func TestLogHelpersUseContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	LogInfo(ctx, "info msg", zap.String("k", "v"))
	LogWarn(ctx, "warn msg")
	LogError(ctx, "error msg", errors.New("boom"))
	LogError(ctx, "error without err", nil)

	entries := recorded.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["k"] != "v" {
		t.Fatalf("unexpected info entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn entry, got %s", entries[1].Level)
	}
	if got := entries[2].ContextMap()["error"]; got != "boom" {
		t.Fatalf("expected error field boom, got %v", got)
	}
	if _, ok := entries[3].ContextMap()["error"]; ok {
		t.Fatal("did not expect error field for nil error")
	}
}
