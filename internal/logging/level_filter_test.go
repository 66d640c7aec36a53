// internal/logging/level_filter_test.go
package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevelFilter_OnlyErrorsAndWarnings(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(NewLevelFilter(handler, slog.LevelWarn))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "WARN: warn message")
	assert.Contains(t, output, "ERROR: error message")
}

func TestLevelFilter_Enabled(t *testing.T) {
	ctx := context.Background()

	filter := NewLevelFilter(NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}), slog.LevelWarn)
	assert.False(t, filter.Enabled(ctx, slog.LevelDebug))
	assert.False(t, filter.Enabled(ctx, slog.LevelInfo))
	assert.True(t, filter.Enabled(ctx, slog.LevelWarn))
	assert.True(t, filter.Enabled(ctx, slog.LevelError))

	// The wrapped handler still has the final say.
	strict := NewLevelFilter(NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}), slog.LevelWarn)
	assert.False(t, strict.Enabled(ctx, slog.LevelWarn))
}

func TestLevelFilter_LevelVar(t *testing.T) {
	buf := &bytes.Buffer{}
	var min slog.LevelVar
	min.Set(slog.LevelError)

	logger := slog.New(NewLevelFilter(NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}), &min))

	logger.Warn("first")
	min.Set(slog.LevelWarn)
	logger.Warn("second")

	assert.NotContains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "second")
}

func TestLevelFilter_WithChaining(t *testing.T) {
	buf := &bytes.Buffer{}
	filter := NewLevelFilter(NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}), slog.LevelWarn)

	logger := slog.New(filter.WithAttrs([]slog.Attr{slog.String("component", "test")}).WithGroup("request"))
	logger.Info("dropped")
	logger.Error("error message", "id", "123")

	output := buf.String()
	assert.NotContains(t, output, "dropped")
	assert.Contains(t, output, "component=test")
	assert.Contains(t, output, "request.id=123")
	assert.Contains(t, output, "error message")
}

func TestLevelFilter_Handle_BelowThreshold(t *testing.T) {
	buf := &bytes.Buffer{}
	filter := NewLevelFilter(NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}), slog.LevelError)

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "below threshold", 0)
	assert.NoError(t, filter.Handle(context.Background(), record))
	assert.Empty(t, buf.String())
}
