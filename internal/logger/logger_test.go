package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelTag(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelError, "ERROR"},
		{slog.LevelWarn, "WARN "},
		{slog.LevelInfo, "INFO "},
		{slog.LevelDebug, "DEBUG"},
	}

	for _, tt := range tests {
		if got := levelTag(tt.level); got != tt.expected {
			t.Errorf("levelTag(%v) = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestFormatAttr(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		attr     slog.Attr
		expected string
	}{
		{"plain", "", slog.String("key", "value"), "  key=value"},
		{"grouped", "scene", slog.Int("dice", 6), "  scene.dice=6"},
		{"float", "", slog.Float64("spin", 1.1000000001), "  spin=1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAttr(tt.group, tt.attr); got != tt.expected {
				t.Errorf("formatAttr = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{w: &buf, level: slog.LevelInfo}

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be filtered at info level")
	}

	record := slog.NewRecord(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), slog.LevelInfo, "die dropped", 0)
	record.AddAttrs(slog.Int("n", 3))
	if err := h.WithGroup("scene").WithAttrs([]slog.Attr{slog.String("phase", "dropping")}).Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"12:00:00", "INFO", "die dropped", "scene.phase=dropping", "scene.n=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("output should end with newline: %q", out)
	}
	if len(h.attrs) != 0 {
		t.Error("WithAttrs must not modify the receiver")
	}
}

func TestNewFormats(t *testing.T) {
	for _, format := range []string{"json", "text", "console"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Level: "debug", Format: format, Output: &buf}).Debug("hello", "k", 1)
			if !strings.Contains(buf.String(), "hello") {
				t.Errorf("%s output missing message: %q", format, buf.String())
			}
		})
	}
}

func TestInitReplacesDefault(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Config{Level: "warn", Output: &buf})
	if L() != l {
		t.Error("L should return the installed logger")
	}
	slog.Info("quiet")
	slog.Warn("loud")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled")
	}
}
