package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, slog.LevelInfo).With("component", "test")
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.Info(ctx, "shown", Redacted("password"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "component=test")
	assert.Contains(t, out, "password="+redactedPlaceholder)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for given, expected := range tests {
		t.Run(given, func(t *testing.T) {
			assert.Equal(t, expected, ParseLevel(given))
		})
	}
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error(context.Background(), "dropped")
	})
}
