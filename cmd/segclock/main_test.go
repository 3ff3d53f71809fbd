package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"segclock/bus"
	"segclock/types"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestLoadConfigOverlayAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	if err := os.WriteFile(path, []byte("display:\n  dwell_us: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig("sim", path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Display.DwellUs != 50 {
		t.Fatalf("dwell not clamped: %d", cfg.Display.DwellUs)
	}
	if _, err := loadConfig("toaster", ""); err == nil {
		t.Fatal("unknown board accepted")
	}
}

func TestRunSimBoardUntilCancelled(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, log, "sim", "") }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

func TestMonitorStopsWithRun(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	b := bus.NewBus(4)
	stop := startMonitor(log, b)

	conn := b.NewConnection("app")
	conn.PublishRetained(bus.T("app", "active"), types.ModeEvent{App: "clock", Status: "time"})
	conn.Publish(&bus.Message{Topic: bus.T("config", "board"), Payload: "sim"})

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("monitor goroutine still running after stop")
	}
}
