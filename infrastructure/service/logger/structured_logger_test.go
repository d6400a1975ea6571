package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return NewStructuredLogger(LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "bookworm-test",
		Output:      buf,
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestStructuredLogger_FieldsAndCorrelation(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	ctx := WithCorrelationID(context.Background(), "cid-123")
	log.Info(ctx, "hello", map[string]interface{}{"user_id": "u1"})

	line := decodeLine(t, &buf)
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "cid-123", line["correlation_id"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "bookworm-test", line["service"])
}

func TestStructuredLogger_ErrorCarriesCause(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.Error(context.Background(), "store down", errors.New("connection refused"), nil)

	line := decodeLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "connection refused", line["error"])
}

func TestStructuredLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newBufferLogger(&buf)
	child := parent.WithFields(map[string]interface{}{"component": "auth"})

	child.Info(context.Background(), "child", nil)
	assert.Equal(t, "auth", decodeLine(t, &buf)["component"])

	buf.Reset()
	parent.Info(context.Background(), "parent", nil)
	_, ok := decodeLine(t, &buf)["component"]
	assert.False(t, ok)
}

func TestLogAuthEvent_FailureLogsWarn(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	LogAuthEvent(context.Background(), log, "login_failed", "", "10.0.0.1", false, nil)

	line := decodeLine(t, &buf)
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "login_failed", line["auth_event"])
	assert.Equal(t, false, line["success"])
}

func TestClientIP_Context(t *testing.T) {
	assert.Equal(t, "", ClientIP(context.Background()))
	assert.Equal(t, "10.0.0.1", ClientIP(WithClientIP(context.Background(), "10.0.0.1")))
}

func TestCorrelationID_Empty(t *testing.T) {
	assert.Equal(t, "", CorrelationID(context.Background()))
}
