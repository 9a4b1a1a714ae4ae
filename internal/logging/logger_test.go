package logging

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(level LogLevel) (*SlimLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: "text",
		Output: &buf,
	})
	return logger, &buf
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	assert.Empty(t, buf.String(), "debug and info should be filtered at warn level")

	logger.Warn(ctx, nil, "warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestLoggerFields(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)
	ctx := context.Background()

	logger.Info(ctx, "with fields", "path", "views/index.tpl", "bytes", 128)

	out := buf.String()
	assert.Contains(t, out, "views/index.tpl")
	assert.Contains(t, out, "bytes=128")
}

func TestLoggerWithComponent(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)
	ctx := context.Background()

	logger.WithComponent("minifier").Info(ctx, "scoped message")

	assert.Contains(t, buf.String(), "component=minifier")
}

func TestLoggerWith(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)
	ctx := context.Background()

	scoped := logger.With("source", "index.tpl")
	scoped.Info(ctx, "first")
	scoped.Info(ctx, "second")

	out := buf.String()
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("source=index.tpl")))
}

func TestLoggerError(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)
	ctx := context.Background()

	logger.Error(ctx, fmt.Errorf("disk full"), "write failed")

	out := buf.String()
	assert.Contains(t, out, "write failed")
	assert.Contains(t, out, "disk full")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestPerfLogger(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)
	ctx := context.Background()

	perf := logger.StartOperation("minify")
	perf.End(ctx)

	out := buf.String()
	assert.Contains(t, out, "operation=minify")
	assert.Contains(t, out, "duration_ms")
}
