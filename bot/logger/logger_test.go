package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewWritesDailyFile(t *testing.T) {
	t.Chdir(t.TempDir())

	log, err := New("debug", "json", false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.With("component", "test").Info("started")
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	name := time.Now().Local().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, name))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"started"`) || !strings.Contains(out, `"component":"test"`) {
		t.Fatalf("unexpected log contents: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"  WARN ": slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
