package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func newJSONLogger(buf *bytes.Buffer, level LogLevel) *PartialsLogger {
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestJSONLogger_FieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug).
		WithComponent("scanner").
		With("folder", "_components")

	logger.Info(context.Background(), "scan complete", "loaded", 3)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "scan complete", records[0]["msg"])
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "scanner", records[0]["component"])
	assert.Equal(t, "_components", records[0]["folder"])
	assert.Equal(t, float64(3), records[0]["loaded"])
}

func TestJSONLogger_ErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelInfo)

	logger.Error(context.Background(), errors.New("boom"), "render failed", "component", "card")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "ERROR", records[0]["level"])
	assert.Equal(t, "boom", records[0]["err"])
	assert.Equal(t, "card", records[0]["component"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelWarn)

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden")
	logger.Warn(context.Background(), nil, "shown")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "shown", records[0]["msg"])
}

func TestLogger_OddFieldsDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelInfo)

	logger.Info(context.Background(), "odd", "key", "value", "dangling", 7, "x")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "value", records[0]["key"])
	assert.EqualValues(t, 7, records[0]["dangling"])
	assert.NotContains(t, records[0], "x")
	assert.NotContains(t, records[0], "!BADKEY")
}

func TestTextLogger_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "text", Output: &buf})

	logger.Info(context.Background(), "hello", "name", "badge")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "name=badge")
	assert.NotContains(t, out, "\x1b[")
}

func TestWith_DoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newJSONLogger(&buf, LevelInfo)
	_ = parent.With("child", true)

	parent.Info(context.Background(), "parent")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0], "child")
}

func TestNop(t *testing.T) {
	logger := Nop()
	assert.NotPanics(t, func() {
		logger.Debug(context.Background(), "x")
		logger.Info(context.Background(), "x")
		logger.Warn(context.Background(), errors.New("x"), "x")
		logger.Error(context.Background(), errors.New("x"), "x")
		logger.With("a", 1).WithComponent("c").Info(context.Background(), "x")
	})
}
