package ctxlog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/go-toolplan/internal/ctxlog"
)

func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	logger := ctxlog.FromContext(context.Background())
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("dropped") })
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := ctxlog.New(&buf, "json", "debug")
	ctx := ctxlog.WithLogger(context.Background(), logger)

	ctxlog.FromContext(ctx).Debug("resolving", "targets", 2)
	assert.Contains(t, buf.String(), `"msg":"resolving"`)
	assert.Contains(t, buf.String(), `"targets":2`)
}

func TestNewTextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := ctxlog.New(&buf, "text", "warn")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level    string
		expected slog.Level
	}{
		"debug":   {level: "debug", expected: slog.LevelDebug},
		"info":    {level: "info", expected: slog.LevelInfo},
		"warn":    {level: "warn", expected: slog.LevelWarn},
		"error":   {level: "error", expected: slog.LevelError},
		"unknown": {level: "verbose", expected: slog.LevelInfo},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, ctxlog.ParseLevel(tc.level))
		})
	}
}
