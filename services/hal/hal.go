// services/hal/hal.go
package hal

import (
	"context"
	"errors"
	"sync"
	"time"

	"segclock/errcode"
	"segclock/services/hal/internal/gpioirq"
	"segclock/services/hal/internal/halcore"
	"segclock/services/hal/internal/platform"
	"segclock/types"
)

type (
	Pull       = halcore.Pull
	PinFactory = halcore.PinFactory
)

const (
	PullNone = halcore.PullNone
	PullUp   = halcore.PullUp
	PullDown = halcore.PullDown
)

// ParsePull maps "none","up","down" to a Pull.
func ParsePull(s string) (Pull, bool) { return halcore.ParsePull(s) }

// DefaultPins returns the platform GPIO factory (periph on Linux, machine on RP2).
func DefaultPins() (PinFactory, error) { return platform.DefaultPinFactory() }

// SimPins returns in-memory pins for running without hardware.
func SimPins() PinFactory { return platform.NewHostPinFactory() }

// DefaultBoard is the embedded config name matching this build's platform.
func DefaultBoard() string { return platform.DefaultBoard }

// WallClock returns the platform wall-clock source.
func WallClock(cfg types.RTCConfig) (func() time.Time, error) { return platform.WallClock(cfg) }

type role uint8

const (
	roleOut role = iota + 1
	roleIn
)

type claim struct {
	pin   halcore.GPIOPin
	role  role
	unreg func()
}

// HAL owns every configured pin and the IRQ worker behind button edges.
// Write is safe to call from the render loop while buttons are being
// registered from the same loop; edge handlers run on the worker goroutine.
type HAL struct {
	pins   PinFactory
	irq    *gpioirq.Worker
	cancel context.CancelFunc

	mu     sync.RWMutex
	claims map[int]*claim
	closed bool
}

// New starts the IRQ worker; call Cleanup to release everything.
func New(ctx context.Context, pins PinFactory) *HAL {
	ctx, cancel := context.WithCancel(ctx)
	w := gpioirq.New(16)
	w.Start(ctx)
	return &HAL{
		pins:   pins,
		irq:    w,
		cancel: cancel,
		claims: map[int]*claim{},
	}
}

// ConfigureOutput claims pins as outputs driven to initial.
func (h *HAL) ConfigureOutput(pins []int, initial bool) error {
	return h.configure(pins, roleOut, func(p halcore.GPIOPin) error {
		return p.ConfigureOutput(initial)
	})
}

// ConfigureInput claims pins as inputs with the given pull.
func (h *HAL) ConfigureInput(pins []int, pull Pull) error {
	return h.configure(pins, roleIn, func(p halcore.GPIOPin) error {
		return p.ConfigureInput(pull)
	})
}

func (h *HAL) configure(pins []int, r role, apply func(halcore.GPIOPin) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return &errcode.E{C: errcode.PinNotConfigured, Op: "hal.configure", Msg: "closed"}
	}
	// Validate the whole set before touching hardware.
	seen := make(map[int]bool, len(pins))
	resolved := make([]halcore.GPIOPin, 0, len(pins))
	for _, n := range pins {
		if _, taken := h.claims[n]; taken || seen[n] {
			return &errcode.E{C: errcode.PinInUse, Op: "hal.configure", Msg: pinName(n)}
		}
		seen[n] = true
		p, ok := h.pins.ByNumber(n)
		if !ok {
			return &errcode.E{C: errcode.UnknownPin, Op: "hal.configure", Msg: pinName(n)}
		}
		resolved = append(resolved, p)
	}
	for _, p := range resolved {
		if err := apply(p); err != nil {
			return &errcode.E{C: errcode.HardwareIO, Op: "hal.configure", Msg: pinName(p.Number()), Err: err}
		}
		h.claims[p.Number()] = &claim{pin: p, role: r}
	}
	return nil
}

// Write drives an output pin.
func (h *HAL) Write(pin int, level bool) error {
	h.mu.RLock()
	c := h.claims[pin]
	h.mu.RUnlock()
	if c == nil || c.role != roleOut {
		return &errcode.E{C: errcode.PinNotConfigured, Op: "hal.write", Msg: pinName(pin)}
	}
	if err := c.pin.Set(level); err != nil {
		return &errcode.E{C: errcode.HardwareIO, Op: "hal.write", Msg: pinName(pin), Err: err}
	}
	return nil
}

// RegisterRisingEdge arms a debounced rising-edge watch on an input pin.
// handler (nil allowed) runs on the IRQ worker goroutine and must only
// update shared state; every accepted edge is also latched for
// PollLatchedEdge.
func (h *HAL) RegisterRisingEdge(pin int, handler func(), debounce time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.claims[pin]
	if c == nil || c.role != roleIn {
		return &errcode.E{C: errcode.PinNotConfigured, Op: "hal.register", Msg: pinName(pin)}
	}
	irqPin, ok := c.pin.(halcore.IRQPin)
	if !ok {
		return &errcode.E{C: errcode.Unsupported, Op: "hal.register", Msg: pinName(pin) + " has no IRQ"}
	}
	if c.unreg != nil {
		c.unreg()
		c.unreg = nil
	}
	unreg, err := h.irq.RegisterRising(irqPin, debounce, handler)
	if err != nil {
		return &errcode.E{C: errcode.HardwareIO, Op: "hal.register", Msg: pinName(pin), Err: err}
	}
	c.unreg = unreg
	return nil
}

// Unregister disarms a pin's edge watch; unknown pins are ignored.
func (h *HAL) Unregister(pin int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c := h.claims[pin]; c != nil && c.unreg != nil {
		c.unreg()
		c.unreg = nil
	}
}

// PollLatchedEdge reports and clears the pin's latched edge.
func (h *HAL) PollLatchedEdge(pin int) bool { return h.irq.Latched(pin) }

// ISRDrops counts edges lost because the ISR queue was full.
func (h *HAL) ISRDrops() uint32 { return h.irq.ISRDrops() }

// Cleanup disarms every IRQ, returns every claimed pin to a floating input
// and stops the IRQ worker. It is safe to call more than once.
func (h *HAL) Cleanup() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	var errs []error
	for n, c := range h.claims {
		if c.unreg != nil {
			c.unreg()
		}
		if err := c.pin.ConfigureInput(PullNone); err != nil {
			errs = append(errs, &errcode.E{C: errcode.HardwareIO, Op: "hal.cleanup", Msg: pinName(n), Err: err})
		}
		delete(h.claims, n)
	}
	h.cancel()
	<-h.irq.Stopped()
	return errors.Join(errs...)
}
