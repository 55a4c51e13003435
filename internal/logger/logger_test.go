package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level string, h handlerFunc) (Logger, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	l, err := newSlogLogger(buf, level, h)
	require.NoError(t, err)

	return l, buf
}

func TestLogger_parseLevel(t *testing.T) {
	for _, input := range []string{"debug", "DEBUG", "Info", "warn", "ERROR"} {
		_, err := parseLevel(input)
		require.NoError(t, err, "level %q should be known", input)
	}

	lvl, err := parseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, lvl)

	lvl, err = parseLevel("verbose")
	require.Error(t, err)
	require.Equal(t, slog.LevelInfo, lvl, "info is returned for unknown level")
}

func TestLogger_Levels(t *testing.T) {
	// Number of records written by Debug, Info, Warn and Error calls in a row
	tests := map[string]int{
		LevelDebug: 4,
		LevelInfo:  3,
		LevelWarn:  2,
		LevelError: 1,
	}

	for level, expected := range tests {
		t.Run(level, func(t *testing.T) {
			l, buf := newBufferLogger(t, level, textHandler)

			l.Debug("debug")
			l.Info("info")
			l.Warn("warn")
			l.Error("error")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, expected)
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	l, buf := newBufferLogger(t, LevelInfo, jsonHandler)

	l.With("component", "auth").WithGroup("user").Info("logged in", "id", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "one JSON object expected")
	require.Equal(t, "logged in", entry["msg"])
	require.Equal(t, "auth", entry["component"])
	require.Equal(t, map[string]any{"id": float64(42)}, entry["user"])

	source, ok := entry["source"].(map[string]any)
	require.True(t, ok, "source must be logged")
	require.Equal(t, "logger_test.go", source["file"], "caller file expected, not the wrapper")
}

func TestLogger_RedactSecrets(t *testing.T) {
	l, buf := newBufferLogger(t, LevelInfo, textHandler)

	l.Info("login", "email", "a@b.com", "password", "password123", "refreshToken", "eyJhbGciOi", "Authorization", "Bearer x")

	out := buf.String()
	require.Contains(t, out, "email=a@b.com")
	require.NotContains(t, out, "password123")
	require.NotContains(t, out, "eyJhbGciOi")
	require.NotContains(t, out, "Bearer x")
	require.Equal(t, 3, strings.Count(out, redacted))
}

func TestLogger_NoOp(t *testing.T) {
	l := NewNoOpLogger()

	require.NotPanics(t, func() {
		l.With("a", 1).Error("nothing happens")
	})
}

func TestLogger_New(t *testing.T) {
	for _, env := range []string{EnvDevelopment, EnvProduction} {
		l, err := New(env, LevelInfo)
		require.NoError(t, err)
		require.NotNil(t, l)
	}

	_, err := New("staging", LevelInfo)
	require.Error(t, err, "unknown environment")

	_, err = New(EnvDevelopment, "loud")
	require.Error(t, err, "unknown level")
}
