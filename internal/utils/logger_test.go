package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("DEBUG", false))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning", false))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error", true))
	assert.Equal(t, zapcore.DebugLevel, levelFromString("", true))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("nonsense", false))
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "info"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestLogEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	LogEvent(zap.New(core), " req-1 ", "auth", "login", "user logged in", zap.String("user_id", "u1"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "user logged in", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "AUTH", ctx["module"])
	assert.Equal(t, "login", ctx["action"])
	assert.Equal(t, "req-1", ctx["request_id"])
	assert.Equal(t, "u1", ctx["user_id"])

	LogEvent(nil, "", "auth", "noop", "ignored")
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	assert.Equal(t, "req-9", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
