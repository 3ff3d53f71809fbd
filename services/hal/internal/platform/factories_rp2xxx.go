// services/hal/internal/platform/factories_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/pcf8523"

	"segclock/services/hal/internal/halcore"
	"segclock/types"
)

// -----------------------------------------------------------------------------
// Defaults used on Raspberry Pi Pico / Pico 2 (RP2 family)
// -----------------------------------------------------------------------------

// DefaultBoard names the embedded config used when none is given.
const DefaultBoard = "pico"

// DefaultPinFactory maps logical numbers directly to machine.Pin(n).
// This matches Pico/Pico 2 GP numbering.
func DefaultPinFactory() (halcore.PinFactory, error) { return rp2PinFactory{}, nil }

// WallClock reads a PCF8523 once and then advances from the monotonic
// clock, so the render loop never touches I2C. Without an RTC the Pico
// starts at the epoch.
func WallClock(cfg types.RTCConfig) (func() time.Time, error) {
	if !cfg.Enabled {
		return time.Now, nil
	}
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       machine.Pin(cfg.SDA),
		SCL:       machine.Pin(cfg.SCL),
	}); err != nil {
		return nil, err
	}
	rtc := pcf8523.New(bus)
	lost, err := rtc.LostPower()
	if err != nil {
		return nil, err
	}
	if lost {
		return time.Now, nil
	}
	base, err := rtc.Now()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	return func() time.Time { return base.Add(time.Since(start)) }, nil
}

// ---- GPIO implementation (includes IRQ support) ----

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	// Constrain to RP2's user GPIOs (GP0..GP28).
	if n < 0 || n > 28 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureInput(pull halcore.Pull) error {
	var mode machine.PinMode
	switch pull {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

// Register writes cannot fail on RP2.
func (r *rp2Pin) Set(level bool) error { r.p.Set(level); return nil }
func (r *rp2Pin) Get() bool            { return r.p.Get() }
func (r *rp2Pin) Number() int          { return r.n }

// IRQ support. The RP2 port provides SetInterrupt with PinChange flags.
func (r *rp2Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e halcore.Edge) machine.PinChange {
	switch e {
	case halcore.EdgeRising:
		return machine.PinRising
	case halcore.EdgeFalling:
		return machine.PinFalling
	case halcore.EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}
