package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(buf *bytes.Buffer) *SlogAdapter {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogAdapter(&SlogConfig{Logger: slog.New(handler)})
}

func TestSlogAdapter_Info_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := newTestAdapter(&buf)

	log.Info("key generated", String("algorithm", "RSA"), Int("key_size", 2048))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "key generated", decoded["msg"])
	assert.Equal(t, "RSA", decoded["algorithm"])
	assert.Equal(t, float64(2048), decoded["key_size"])
}

func TestSlogAdapter_With_CarriesFieldsForward(t *testing.T) {
	var buf bytes.Buffer
	log := newTestAdapter(&buf).With(String("component", "keymaster"))

	log.Info("begin")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "keymaster", decoded["component"])
}

func TestSlogAdapter_InfoContext_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := newTestAdapter(&buf)
	ctx := correlation.WithCorrelationID(context.Background(), "req-42")

	log.InfoContext(ctx, "operation started")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "req-42", decoded["correlation_id"])
}

func TestSlogAdapter_WithError_AddsErrorField(t *testing.T) {
	var buf bytes.Buffer
	log := newTestAdapter(&buf).WithError(assertError("boom"))

	log.Error("operation failed")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "boom", decoded["error"])
}

type assertError string

func (e assertError) Error() string { return string(e) }
