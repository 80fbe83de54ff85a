package obs

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestDevEnvNames(t *testing.T) {
	for _, env := range []string{"dev", "local", "debug", "Dev"} {
		assert.True(t, devEnv(env), env)
	}
	for _, env := range []string{"prod", "staging", "test", ""} {
		assert.False(t, devEnv(env), env)
	}
}

func TestNewLoggerEnabledLevel(t *testing.T) {
	ctx := context.Background()

	logger := NewLogger("prod", "warn")
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))

	logger = NewLogger("dev", "debug")
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}
