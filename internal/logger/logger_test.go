package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monomori/monomori-server/internal/domain"
)

func newPretty(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Writer: buf, Format: formatPretty, Level: level})
}

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		json        bool
	}{
		{"production", true},
		{"staging", false},
		{"development", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Writer: &buf, Environment: tt.environment}).Info("hello")

			if tt.json {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Environment: "development", Format: formatJSON}).Info("hello")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		" info ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelWarn)

	log.Debug("debug line")
	log.Info("info line")
	log.Warn("warn line")
	log.Error("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "ERR")
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: formatJSON, Level: slog.LevelInfo})

	log.WithComponent("covers").Info("cached", "category", domain.CategoryMusic)

	out := buf.String()
	assert.Contains(t, out, `"component":"covers"`)
	assert.Contains(t, out, `"category":"MUSIC"`)
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelInfo)

	log.WithError(errors.New("disk full")).Error("write failed")
	assert.Contains(t, buf.String(), `error="disk full"`)

	same := log.WithError(nil)
	assert.Same(t, log, same)
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Date(2026, 3, 1, 14, 5, 9, 120*int(time.Millisecond), time.UTC), slog.LevelInfo, "item saved", 0)
	r.AddAttrs(slog.Int("count", 3), slog.Duration("took", 1500*time.Millisecond))
	require.NoError(t, h.Handle(t.Context(), r))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "14:05:09.120")
	assert.Contains(t, out, "item saved")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "took=1.5s")
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.WithGroup("lookup").With("source", "tmdb").Info("done",
		slog.Group("result", slog.Int("hits", 2)))

	out := buf.String()
	assert.Contains(t, out, "lookup.source=tmdb")
	assert.Contains(t, out, "lookup.result.hits=2")
}

func TestPrettyHandler_WithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, nil))

	base.With("a", 1).Info("first")
	base.Info("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a=1")
	assert.NotContains(t, lines[1], "a=1")
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))

	defaults := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.False(t, defaults.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, defaults.Enabled(t.Context(), slog.LevelInfo))
}

func TestPrettyHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true}))
	log.Info("where")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatLevel(t *testing.T) {
	for level, want := range map[slog.Level]string{
		slog.LevelDebug: "DBG",
		slog.LevelInfo:  "INF",
		slog.LevelWarn:  "WRN",
		slog.LevelError: "ERR",
	} {
		label, color := formatLevel(level)
		assert.Equal(t, want, label)
		assert.NotEmpty(t, color)
	}

	label, _ := formatLevel(slog.LevelError + 4)
	assert.Equal(t, "ERROR+4", label)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "Dune", formatValue(slog.StringValue("Dune")))
	assert.Equal(t, `"Dune Messiah"`, formatValue(slog.StringValue("Dune Messiah")))
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, "42", formatValue(slog.Int64Value(42)))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
	assert.Equal(t, "2026-03-01T00:00:00Z", formatValue(slog.TimeValue(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))))
}
