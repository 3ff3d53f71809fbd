package app

import (
	"context"
	"errors"
	"time"

	"segclock/bus"
	"segclock/types"
	"segclock/x/timex"
)

// Renderer is the display surface a mode draws on.
type Renderer interface {
	Render(text string) error
	Blank() error
}

// Buttons is the edge-delivery side of the HAL.
type Buttons interface {
	RegisterRisingEdge(pin int, handler func(), debounce time.Duration) error
	Unregister(pin int)
	PollLatchedEdge(pin int) bool
}

type SwitcherConfig struct {
	ModeButton   int
	SwitchButton int
	Debounce     time.Duration
	Backoff      time.Duration // sleep when a mode has nothing to show
}

const (
	DefaultDebounce = 200 * time.Millisecond
	DefaultBackoff  = 100 * time.Millisecond
)

var (
	topicActive = bus.T("app", "active")
)

func topicStatus(app string) bus.Topic { return bus.T("app", app, "status") }

// Switcher runs one mode at a time and rotates to the next whenever the
// switch button fires.
type Switcher struct {
	modes  []Mode
	r      Renderer
	btn    Buttons
	clock  timex.Clock
	conn   *bus.Connection
	cfg    SwitcherConfig
	irq    Interrupt
	active int
}

// NewSwitcher wires modes to the display and buttons. conn may be nil.
func NewSwitcher(r Renderer, btn Buttons, clock timex.Clock, conn *bus.Connection, cfg SwitcherConfig, modes ...Mode) *Switcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if clock == nil {
		clock = timex.System{}
	}
	return &Switcher{modes: modes, r: r, btn: btn, clock: clock, conn: conn, cfg: cfg}
}

// Active returns the running mode.
func (s *Switcher) Active() Mode { return s.modes[s.active] }

// Suspend stops the active mode's render loop as if the switch button had
// fired, without rotating to the next mode.
func (s *Switcher) Suspend() { s.irq.Set() }

// Run blocks until ctx is cancelled or a hardware call fails. The display is
// blanked and every button registration is dropped before it returns.
func (s *Switcher) Run(ctx context.Context) error {
	if len(s.modes) == 0 {
		return errors.New("app: no modes")
	}
	if err := s.btn.RegisterRisingEdge(s.cfg.SwitchButton, s.irq.Set, s.cfg.Debounce); err != nil {
		return err
	}
	defer s.btn.Unregister(s.cfg.SwitchButton)

	for ctx.Err() == nil {
		s.irq.Clear()
		m := s.modes[s.active]
		s.publish(topicActive, m)
		if err := s.activate(ctx, m); err != nil {
			return err
		}
		if s.btn.PollLatchedEdge(s.cfg.SwitchButton) {
			s.active = (s.active + 1) % len(s.modes)
		}
	}
	return nil
}

func (s *Switcher) activate(ctx context.Context, m Mode) error {
	m.Reset()
	if err := s.btn.RegisterRisingEdge(s.cfg.ModeButton, m.Advance, s.cfg.Debounce); err != nil {
		return err
	}
	defer s.btn.Unregister(s.cfg.ModeButton)

	status := ""
	for !s.irq.IsSet() && ctx.Err() == nil {
		if st := m.StatusName(); st != status {
			status = st
			s.publish(topicStatus(m.Name()), m)
		}
		text, show := m.Tick(s.clock.Now())
		if !show {
			s.clock.Sleep(s.cfg.Backoff)
			continue
		}
		if err := s.r.Render(text); err != nil {
			return err
		}
	}
	return s.r.Blank()
}

func (s *Switcher) publish(t bus.Topic, m Mode) {
	if s.conn == nil {
		return
	}
	s.conn.PublishRetained(t, types.ModeEvent{App: m.Name(), Status: m.StatusName()})
}
