package util

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level string, format LogFormat) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := &Logger{
		level:  parseLogLevel(level),
		fields: make(map[string]interface{}),
	}
	logger.AddOutput(NewConsoleOutput(buf, format))
	return logger, buf
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("warn", FormatText)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("queue near capacity", F("len", 499))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] queue near capacity len=499")
}

func TestLogger_TextFieldsSorted(t *testing.T) {
	logger, buf := newBufferLogger("debug", FormatText)

	logger.Info("replayed", F("settled", 2), F("dropped", 0), F("action", "UPDATE_WEIGHT"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(buf.String()), "action=UPDATE_WEIGHT dropped=0 settled=2"))
}

func TestLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferLogger("info", FormatJSON)

	logger.With(F("component", "store")).Error("save failed", F("path", "/tmp/state.json"))

	var entry LogEntry
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "save failed", entry.Message)
	assert.Equal(t, "store", entry.Fields["component"])
	assert.Equal(t, "/tmp/state.json", entry.Fields["path"])
}

func TestLogger_WithContext(t *testing.T) {
	logger, buf := newBufferLogger("info", FormatText)

	ctx := context.WithValue(context.Background(), ContextUserID, "u-1")
	ctx = context.WithValue(ctx, ContextActionID, "qaid42")
	logger.WithContext(ctx).Info("queued")

	assert.Contains(t, buf.String(), "action_id=qaid42 user_id=u-1")
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "info"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := NewLogger(LoggerConfig{Level: "info", File: path})
	require.NoError(t, err)

	logger.Infof("hello %s", "file")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] hello file")
}

func TestGlobalLoggerHelpers(t *testing.T) {
	logger, buf := newBufferLogger("debug", FormatText)
	SetLogger(logger)
	defer SetLogger(nil)

	LogDebugf("bucketed %d days", 3)
	LogWarn("offline", F("user", "u-1"))

	assert.Contains(t, buf.String(), "bucketed 3 days")
	assert.Contains(t, buf.String(), "offline user=u-1")

	SetLogger(nil)
	assert.NotPanics(t, func() { LogError("dropped") })
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		name string
	}{
		{"debug", LevelDebug, "DEBUG"},
		{"INFO", LevelInfo, "INFO"},
		{"warning", LevelWarn, "WARN"},
		{"error", LevelError, "ERROR"},
		{"fatal", LevelFatal, "FATAL"},
		{"panic", LevelInfo, "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level := parseLogLevel(tt.in)
			assert.Equal(t, tt.want, level)
			assert.Equal(t, tt.name, levelToString(level))
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseLogFormat("JSON"))
	assert.Equal(t, FormatText, ParseLogFormat("text"))
	assert.Equal(t, FormatText, ParseLogFormat(""))
}
