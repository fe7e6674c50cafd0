package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message should be filtered")
	}
	if strings.Contains(out, "info message") {
		t.Error("info message should be filtered")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message should be logged")
	}
	if !strings.Contains(out, "error message") {
		t.Error("error message should be logged")
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.WithPlugin("expander").Warn("hook failed")

	out := buf.String()
	if !strings.Contains(out, "plugin=expander") {
		t.Errorf("expected plugin field in output, got %q", out)
	}

	// The parent logger must not gain the field.
	buf.Reset()
	l.Warn("plain")
	if strings.Contains(buf.String(), "plugin=") {
		t.Error("parent logger should not carry child fields")
	}
}

func TestFieldsSortedDeterministically(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.WithField("b", 2).WithField("a", 1).Info("msg")

	out := buf.String()
	if !strings.Contains(out, "{a=1, b=2}") {
		t.Errorf("expected sorted fields, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	// Must not panic and must accept all levels.
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}

func TestFormattedArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.Info("dropped %d of %d", 2, 10)
	if !strings.Contains(buf.String(), "dropped 2 of 10") {
		t.Errorf("expected formatted message, got %q", buf.String())
	}
}
