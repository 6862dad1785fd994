package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func initFileLogger(t *testing.T, level string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(Config{Level: level, Format: "json", Output: path}))
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	return path
}

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestInit_LevelFilter(t *testing.T) {
	path := initFileLogger(t, "warn")

	Info("忽略", nil)
	Warn("库存偏低", map[string]interface{}{"book_id": "b-1"})

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "库存偏低", lines[0]["message"])
	assert.Equal(t, "b-1", lines[0]["book_id"])
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	path := initFileLogger(t, "verbose")

	Debug("忽略", nil)
	Info("保留", nil)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "保留", lines[0]["message"])
}

func TestCtx_RequestAndTraceID(t *testing.T) {
	path := initFileLogger(t, "debug")

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(WithRequestID(context.Background(), "req-1"), "op")
	defer span.End()

	Ctx(ctx).Info().Msg("下单")

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), lines[0]["trace_id"])
}

func TestRequestID_Missing(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
}

func TestComponent(t *testing.T) {
	path := initFileLogger(t, "info")

	Component("asynq").Info().Msg("启动")
	Error("失败", assert.AnError, nil)

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "asynq", lines[0]["component"])
	assert.Equal(t, assert.AnError.Error(), lines[1]["error"])
}
