package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"segclock/bus"
	"segclock/services/app"
	"segclock/services/config"
	"segclock/services/display"
	"segclock/services/hal"
	"segclock/types"
	"segclock/x/timex"
)

func main() {
	board := flag.String("board", hal.DefaultBoard(), "embedded board config: "+strings.Join(config.Boards(), ", "))
	cfgPath := flag.String("config", "", "optional YAML overlay for the board config")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*level)}))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := run(ctx, log, *board, *cfgPath); err != nil {
		log.Error("segclock:exit", slog.String("err", err.Error()))
		stop()
		os.Exit(1)
	}
	log.Info("segclock:stopped")
}

func run(ctx context.Context, log *slog.Logger, board, cfgPath string) (err error) {
	cfg, err := loadConfig(board, cfgPath)
	if err != nil {
		return err
	}

	b := bus.NewBus(8)
	defer startMonitor(log, b)()
	config.NewConfigService().Publish(b.NewConnection("config"), cfg)

	var pins hal.PinFactory
	if cfg.Board == "sim" {
		pins = hal.SimPins()
	} else if pins, err = hal.DefaultPins(); err != nil {
		return err
	}

	h := hal.New(ctx, pins)
	defer func() {
		if cerr := h.Cleanup(); cerr != nil {
			log.Error("hal:cleanup", slog.String("err", cerr.Error()))
		}
		if drops := h.ISRDrops(); drops > 0 {
			log.Warn("hal:isr queue overflowed", slog.Uint64("drops", uint64(drops)))
		}
	}()

	dcfg, err := display.ConfigFrom(cfg.Display)
	if err != nil {
		return err
	}
	segIdle, digIdle := dcfg.IdleLevels()
	if err := h.ConfigureOutput(append(dcfg.Segments[:], dcfg.Point), segIdle); err != nil {
		return err
	}
	if err := h.ConfigureOutput(dcfg.Digits[:], digIdle); err != nil {
		return err
	}
	pull, _ := hal.ParsePull(cfg.Buttons.Pull)
	if err := h.ConfigureInput([]int{cfg.Buttons.Mode, cfg.Buttons.Switch}, pull); err != nil {
		return err
	}

	wall, err := hal.WallClock(cfg.RTC)
	if err != nil {
		log.Warn("rtc:unavailable, using system time", slog.String("err", err.Error()))
		wall = time.Now
	}

	sw := app.NewSwitcher(
		display.NewRenderer(h, dcfg),
		h,
		timex.System{Wall: wall},
		b.NewConnection("app"),
		app.SwitcherConfig{
			ModeButton:   cfg.Buttons.Mode,
			SwitchButton: cfg.Buttons.Switch,
			Debounce:     time.Duration(cfg.Buttons.DebounceMs) * time.Millisecond,
			Backoff:      time.Duration(cfg.Stopwatch.BackoffMs) * time.Millisecond,
		},
		app.NewClock(),
		app.NewStopwatch(cfg.Stopwatch.Format),
	)

	log.Info("segclock:start", slog.String("board", cfg.Board), slog.Duration("dwell", time.Duration(cfg.Display.DwellUs)*time.Microsecond))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sw.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		sw.Suspend()
		return nil
	})
	return g.Wait()
}

func loadConfig(board, path string) (types.AppConfig, error) {
	cfg, err := config.Load(board)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if cfg, err = config.LoadFile(path, cfg); err != nil {
			return cfg, err
		}
	}
	return config.Validate(cfg)
}

// startMonitor logs every bus message until the returned stop func
// disconnects it and waits for the goroutine to exit.
func startMonitor(log *slog.Logger, b *bus.Bus) (stop func()) {
	conn := b.NewConnection("monitor")
	sub := conn.Subscribe(bus.T("#"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor(log, sub)
	}()
	return func() {
		conn.Disconnect()
		<-done
	}
}

func monitor(log *slog.Logger, sub *bus.Subscription) {
	for m := range sub.Channel() {
		topic := strings.Join(m.Topic, "/")
		if ev, ok := m.Payload.(types.ModeEvent); ok {
			log.Info(topic, slog.String("app", ev.App), slog.String("status", ev.Status))
			continue
		}
		log.Debug(topic, slog.Any("payload", m.Payload))
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
