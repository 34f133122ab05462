package log

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(Options{Level: LevelInfo, Output: []string{path}})
	require.NoError(t, err)

	l.With(String("component", "test")).Info("hello",
		Int("n", 3),
		Vec3("at", mgl64.Vec3{1, 2, 3}),
		Error(errors.New("boom")),
	)
	l.Debug("filtered")
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, float64(3), entry["n"])
	assert.Equal(t, "boom", entry["error"])
	assert.Len(t, entry["at"], 3)
}

func TestSetLevel(t *testing.T) {
	l, err := New(Options{Level: LevelWarn, Output: []string{filepath.Join(t.TempDir(), "out.log")}})
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l.GetLevel())

	l.SetLevel(LevelSilent)
	assert.Equal(t, LevelSilent, l.GetLevel())
	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
}
