package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"trace":   zerolog.TraceLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Str("file", "a.mp3").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "a.mp3", entry["file"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNew_AutoFormatOnBufferIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})
	logger.Info().Msg("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "console", Output: &buf, NoColor: true})
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestContext(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})
	ctx := WithLogger(context.Background(), &logger)
	ctx = WithRunID(ctx, "run-1")
	ctx = WithFields(ctx, "collection", "/music/album")

	assert.Equal(t, "run-1", RunID(ctx))
	assert.Equal(t, "", RunID(context.Background()))

	FromContext(ctx).Info().Msg("resolving")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "/music/album", entry["collection"])
}
