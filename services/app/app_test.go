package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"segclock/bus"
	"segclock/services/display"
	"segclock/types"
)

func TestStatusCycles(t *testing.T) {
	s := NewStatus(3)
	want := []uint32{1, 2, 0, 1}
	for i, w := range want {
		s.Advance()
		if got := s.Load(); got != w {
			t.Fatalf("advance %d: got %d want %d", i+1, got, w)
		}
	}
	s.Reset()
	if s.Load() != 0 {
		t.Fatalf("Reset left %d", s.Load())
	}
	one := NewStatus(0)
	one.Advance()
	if one.Load() != 0 {
		t.Fatalf("single-value status moved to %d", one.Load())
	}

	var irq Interrupt
	irq.Set()
	if !irq.IsSet() {
		t.Fatal("Set not visible")
	}
	irq.Clear()
	if irq.IsSet() {
		t.Fatal("Clear not visible")
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		s       float64
		variant string
		want    string
	}{
		{0, types.FormatFixed, "00.00"},
		{-3, types.FormatFixed, "00.00"},
		{1.5, types.FormatFixed, "01.50"},
		{0.29, types.FormatFixed, "00.29"},
		{0.57, types.FormatFixed, "00.57"},
		{1.13, types.FormatFixed, "01.13"},
		{4.35, types.FormatFixed, "04.35"},
		{59.99, types.FormatFixed, "59.99"},
		{(290 * time.Millisecond).Seconds(), types.FormatFixed, "00.29"},
		{12.345, types.FormatFixed, "12.34"},
		{59.994, types.FormatFixed, "59.99"},
		{99.996, types.FormatFixed, "99.99"},
		{100, types.FormatFixed, "01.40."},
		{125, types.FormatFixed, "02.05."},
		{5999.99, types.FormatFixed, "99.59."},
		{6000, types.FormatFixed, "Err.0"},
		{1e9, types.FormatFixed, "Err.0"},
		{7.25, "bogus", "07.25"},

		{1.5, types.FormatLegacy, "01.50"},
		{9.996, types.FormatLegacy, "10.00"},
		{12, types.FormatLegacy, "12.00"},
		{12.5, types.FormatLegacy, "12.50"},
		{12.3456, types.FormatLegacy, "12.34"},
		{125, types.FormatLegacy, "02.05."},
		{6000, types.FormatLegacy, "Err.0"},
	}
	for _, c := range cases {
		got := FormatElapsed(c.s, c.variant)
		if got != c.want {
			t.Fatalf("FormatElapsed(%v, %q) = %q want %q", c.s, c.variant, got, c.want)
		}
		if _, err := display.DecodeFrame(got); err != nil {
			t.Fatalf("FormatElapsed(%v) = %q does not render: %v", c.s, got, err)
		}
	}
}

func TestClockTick(t *testing.T) {
	c := NewClock()
	even := time.Date(2026, 3, 7, 9, 5, 4, 0, time.UTC)
	if got, ok := c.Tick(even); !ok || got != "09.05" {
		t.Fatalf("even second: %q %v", got, ok)
	}
	if got, _ := c.Tick(even.Add(time.Second)); got != "0905" {
		t.Fatalf("odd second: %q", got)
	}
	c.Advance()
	if c.Status() != ClockDate || c.StatusName() != "date" {
		t.Fatalf("status after advance: %v", c.Status())
	}
	if got, _ := c.Tick(even); got != "03.07" {
		t.Fatalf("date: %q", got)
	}
	c.Advance()
	if c.Status() != ClockTime {
		t.Fatalf("status did not wrap: %v", c.Status())
	}
	c.Advance()
	c.Reset()
	if c.Status() != ClockTime {
		t.Fatal("Reset did not return to time")
	}
}

func TestStopwatchTransitions(t *testing.T) {
	w := NewStopwatch(types.FormatFixed)
	t0 := time.Unix(1000, 600*int64(time.Millisecond))

	if got, ok := w.Tick(t0); !ok || got != "00.00" {
		t.Fatalf("idle lit phase: %q %v", got, ok)
	}
	if _, ok := w.Tick(time.Unix(1000, 100*int64(time.Millisecond))); ok {
		t.Fatal("idle shown in dark phase")
	}

	w.Advance()
	if got, ok := w.Tick(t0); !ok || got != "00.00" {
		t.Fatalf("running at start: %q %v", got, ok)
	}
	if w.Elapsed(t0) != 0 {
		t.Fatalf("elapsed at start = %v", w.Elapsed(t0))
	}
	if got, _ := w.Tick(t0.Add(1500 * time.Millisecond)); got != "01.50" {
		t.Fatalf("running +1.5s: %q", got)
	}

	w.Advance()
	stop := t0.Add(2 * time.Second) // phase 0.6s of 2s
	if _, ok := w.Tick(stop); ok {
		t.Fatal("result shown outside its blink window")
	}
	if w.Elapsed(stop.Add(time.Hour)) != 2*time.Second {
		t.Fatalf("total not frozen: %v", w.Elapsed(stop.Add(time.Hour)))
	}
	lit := time.Unix(1003, 900*int64(time.Millisecond))
	if got, ok := w.Tick(lit); !ok || got != "02.00" {
		t.Fatalf("result lit phase: %q %v", got, ok)
	}

	w.Advance()
	if w.Status() != TimerIdle {
		t.Fatalf("status = %v", w.Status())
	}
	w.Tick(lit)
	if w.Elapsed(lit) != 0 {
		t.Fatal("idle reports elapsed time")
	}
}

func TestStopwatchResultShowsExactCentiseconds(t *testing.T) {
	w := NewStopwatch(types.FormatFixed)
	t0 := time.Unix(1001, 0)
	w.Advance()
	w.Tick(t0)
	w.Advance()
	w.Tick(t0.Add(290 * time.Millisecond))

	lit := time.Unix(1003, 900*int64(time.Millisecond))
	if got, ok := w.Tick(lit); !ok || got != "00.29" {
		t.Fatalf("result after 290ms: %q %v", got, ok)
	}
}

func TestStopwatchSkipsRunningBetweenTicks(t *testing.T) {
	w := NewStopwatch("")
	w.Advance()
	w.Advance()
	lit := time.Unix(1003, 900*int64(time.Millisecond))
	if got, ok := w.Tick(lit); !ok || got != "00.00" {
		t.Fatalf("result after double press: %q %v", got, ok)
	}
	if w.variant != types.FormatFixed {
		t.Fatalf("variant %q", w.variant)
	}
}

// ---- switcher ----

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

type fakeButtons struct {
	mu       sync.Mutex
	handlers map[int]func()
	latched  map[int]bool
	failPin  int
}

func newFakeButtons() *fakeButtons {
	return &fakeButtons{handlers: map[int]func(){}, latched: map[int]bool{}, failPin: -1}
}

func (b *fakeButtons) RegisterRisingEdge(pin int, h func(), _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin == b.failPin {
		return errors.New("no irq")
	}
	b.handlers[pin] = h
	return nil
}

func (b *fakeButtons) Unregister(pin int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, pin)
}

func (b *fakeButtons) PollLatchedEdge(pin int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := b.latched[pin]
	b.latched[pin] = false
	return v
}

func (b *fakeButtons) press(pin int) {
	b.mu.Lock()
	h, ok := b.handlers[pin]
	if ok {
		b.latched[pin] = true
	}
	b.mu.Unlock()
	if h != nil {
		h()
	}
}

func (b *fakeButtons) armed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

type fakeRenderer struct {
	clock    *fakeClock
	events   []string
	texts    []string
	err      error
	onRender func(n int)
}

func (r *fakeRenderer) Render(text string) error {
	if r.err != nil {
		return r.err
	}
	r.texts = append(r.texts, text)
	r.events = append(r.events, "R")
	r.clock.now = r.clock.now.Add(4 * time.Millisecond)
	if r.onRender != nil {
		r.onRender(len(r.texts))
	}
	return nil
}

func (r *fakeRenderer) Blank() error {
	r.events = append(r.events, "B")
	return nil
}

const (
	modePin   = 25
	switchPin = 24
)

func testRig() (*fakeClock, *fakeButtons, *fakeRenderer) {
	clk := &fakeClock{now: time.Unix(1000, 600*int64(time.Millisecond))}
	return clk, newFakeButtons(), &fakeRenderer{clock: clk}
}

func cfg() SwitcherConfig {
	return SwitcherConfig{ModeButton: modePin, SwitchButton: switchPin}
}

func TestInterruptExitsWithinOneIteration(t *testing.T) {
	clk, btn, r := testRig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewSwitcher(r, btn, clk, nil, cfg(), NewClock(), NewStopwatch(""))
	r.onRender = func(n int) {
		switch n {
		case 3:
			s.Suspend()
		case 4:
			cancel()
		}
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(r.events, ""); got != "RRRBRB" {
		t.Fatalf("events %q want RRRBRB", got)
	}
	if s.Active().Name() != "clock" {
		t.Fatalf("suspend without a switch edge rotated to %s", s.Active().Name())
	}
	if btn.armed() != 0 {
		t.Fatalf("%d buttons left armed", btn.armed())
	}
}

func TestSwitchButtonRotatesModes(t *testing.T) {
	clk, btn, r := testRig()
	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSwitcher(r, btn, clk, conn, cfg(), NewClock(), NewStopwatch(""))
	r.onRender = func(n int) {
		switch n {
		case 2:
			btn.press(switchPin)
		case 5:
			cancel()
		}
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(r.events, ""); got != "RRBRRRB" {
		t.Fatalf("events %q", got)
	}
	if len(r.texts[0]) != 5 && len(r.texts[0]) != 4 {
		t.Fatalf("clock text %q", r.texts[0])
	}
	for _, txt := range r.texts[2:] {
		if txt != "00.00" {
			t.Fatalf("stopwatch idle text %q", txt)
		}
	}
	if s.Active().Name() != "stopwatch" {
		t.Fatalf("active = %s", s.Active().Name())
	}

	sub := b.NewConnection("check").Subscribe(bus.T("app", "#"))
	got := map[string]types.ModeEvent{}
	for len(got) < 3 {
		m := <-sub.Channel()
		got[strings.Join(m.Topic, "/")] = m.Payload.(types.ModeEvent)
	}
	if ev := got["app/active"]; ev.App != "stopwatch" || ev.Status != "idle" {
		t.Fatalf("app/active = %+v", ev)
	}
	if ev := got["app/clock/status"]; ev.Status != "time" {
		t.Fatalf("app/clock/status = %+v", ev)
	}
	if ev := got["app/stopwatch/status"]; ev.Status != "idle" {
		t.Fatalf("app/stopwatch/status = %+v", ev)
	}
}

func TestModeButtonStartsStopwatch(t *testing.T) {
	clk, btn, r := testRig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := NewStopwatch(types.FormatFixed)
	s := NewSwitcher(r, btn, clk, nil, cfg(), sw)
	var startedAt time.Time
	r.onRender = func(n int) {
		switch n {
		case 1:
			btn.press(modePin)
			startedAt = clk.now
		case 3:
			cancel()
		}
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sw.Status() != TimerRunning {
		t.Fatalf("status = %v", sw.Status())
	}
	if r.texts[1] != "00.00" {
		t.Fatalf("first running frame %q", r.texts[1])
	}
	// start is captured on the first tick after the press
	if e := sw.Elapsed(startedAt); e != 0 {
		t.Fatalf("elapsed at transition = %v", e)
	}
}

func TestIdleBacksOffInsteadOfSpinning(t *testing.T) {
	clk, btn, r := testRig()
	clk.now = time.Unix(1000, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.onRender = func(int) { cancel() }

	s := NewSwitcher(r, btn, clk, nil, cfg(), NewStopwatch(""))
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(clk.sleeps) != 6 {
		t.Fatalf("sleeps = %v", clk.sleeps)
	}
	for _, d := range clk.sleeps {
		if d != DefaultBackoff {
			t.Fatalf("backoff %v", d)
		}
	}
}

func TestRenderFailureIsFatal(t *testing.T) {
	clk, btn, r := testRig()
	boom := errors.New("EIO")
	r.err = boom
	s := NewSwitcher(r, btn, clk, nil, cfg(), NewClock())
	if err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run err = %v", err)
	}
	if btn.armed() != 0 {
		t.Fatalf("%d buttons left armed after failure", btn.armed())
	}
}

func TestRegisterFailureIsFatal(t *testing.T) {
	clk, btn, r := testRig()
	btn.failPin = modePin
	s := NewSwitcher(r, btn, clk, nil, cfg(), NewClock())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run ignored a register failure")
	}
	if btn.armed() != 0 {
		t.Fatalf("%d buttons left armed", btn.armed())
	}
	if err := NewSwitcher(r, btn, clk, nil, cfg()).Run(context.Background()); err == nil {
		t.Fatal("Run with no modes succeeded")
	}
}
