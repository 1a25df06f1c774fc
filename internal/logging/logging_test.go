package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level    Level
		expected []string
		excluded []string
	}{
		{LevelError, []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{LevelWarn, []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{LevelInfo, []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{LevelDebug, []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithOutput(tt.level, &buf)

			log.Debug("debug %d", 1)
			log.Info("info %d", 2)
			log.Warn("warn %d", 3)
			log.Error("error %d", 4)
			log.Sync()

			out := buf.String()
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in output:\n%s", exp, out)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(LevelError, &buf)

	log.Info("hidden")
	log.SetLevel(LevelInfo)
	log.Info("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("message below level was written")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("message at level was not written")
	}
}

func TestWithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).Named("tilecache").With("epoch", 3)

	log.Warn("fetch failed: %s", "boom")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "tilecache" {
		t.Errorf("logger name = %q", e.LoggerName)
	}
	if e.Message != "fetch failed: boom" {
		t.Errorf("message = %q", e.Message)
	}
	if e.ContextMap()["epoch"] != int64(3) {
		t.Errorf("context = %v", e.ContextMap())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *Logger
	log.Info("nothing %d", 1)
	log.Named("x").With("k", "v").Error("still nothing")
	log.SetLevel(LevelDebug)
	log.Sync()
	if log.Zap() == nil {
		t.Error("Zap() on nil logger returned nil")
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skychart.log")
	log := NewWithFile(LevelInfo, DefaultFileConfig(path), false)

	log.Info("written to %s", "file")
	log.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "written to file") {
		t.Errorf("log file missing message: %s", content)
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("dropped")
	log.Sync()
}
