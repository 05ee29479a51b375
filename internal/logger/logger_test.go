package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", "info", &buf)

	log.Info("session issued", "user_id", "u-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "session issued", line["msg"])
	assert.Equal(t, "u-1", line["user_id"])
	assert.Equal(t, "community-api", line["service"])
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("development", "warn", &buf)

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.WithGroup("media").Warn("orphaned object", "public_id", "posts/abc")
	out := buf.String()
	assert.Contains(t, out, "orphaned object")
	assert.Contains(t, out, "media.public_id")
	assert.Contains(t, out, "posts/abc")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
