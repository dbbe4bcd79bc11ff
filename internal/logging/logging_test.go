package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupWritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pomo.log")
	var console bytes.Buffer

	logger, closer, err := Setup(Options{File: path, Level: "info", Console: true, Stderr: &console})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.Debug("hidden")
	logger.With("phase", "work").Info("phase complete", "cycles", 2)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, out := range []string{string(data), console.String()} {
		if !strings.Contains(out, "phase complete") || !strings.Contains(out, "phase=work") || !strings.Contains(out, "cycles=2") {
			t.Fatalf("missing record in %q", out)
		}
		if strings.Contains(out, "hidden") {
			t.Fatalf("debug record leaked at info level: %q", out)
		}
	}
}

func TestSetupFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pomo.log")
	var console bytes.Buffer

	logger, closer, err := Setup(Options{File: path, Level: "debug", Stderr: &console})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.Debug("tick")
	closer.Close()

	if console.Len() != 0 {
		t.Fatalf("file-only logger wrote to console: %q", console.String())
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "tick") {
		t.Fatalf("debug record missing from file: %q", data)
	}
}

func TestFanoutRespectsLevels(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	h := Fanout(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("fanout should be enabled when any handler is")
	}
	logger := slog.New(h).WithGroup("api")
	logger.Info("request", "path", "/login")

	if !strings.Contains(debugBuf.String(), "api.path=/login") {
		t.Fatalf("debug handler missed record: %q", debugBuf.String())
	}
	if errorBuf.Len() != 0 {
		t.Fatalf("error handler received info record: %q", errorBuf.String())
	}
}
