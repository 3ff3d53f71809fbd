// services/hal/internal/platform/factories_linux.go
//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"segclock/services/hal/internal/halcore"
	"segclock/types"
)

// DefaultBoard names the embedded config used when none is given.
const DefaultBoard = "rpi"

// edgePoll bounds how long ClearIRQ waits for the edge goroutine.
const edgePoll = 100 * time.Millisecond

// DefaultPinFactory registers periph host drivers and resolves BCM numbers
// as "GPIO<n>".
func DefaultPinFactory() (halcore.PinFactory, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if err := checkDrivers(); err != nil {
		return nil, err
	}
	return &periphPinFactory{pins: map[int]*periphPin{}}, nil
}

// WallClock is the system clock; Linux boards keep time via NTP/RTC already.
func WallClock(_ types.RTCConfig) (func() time.Time, error) {
	return time.Now, nil
}

type periphPinFactory struct {
	mu   sync.Mutex
	pins map[int]*periphPin
}

func (f *periphPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pins[n]; ok {
		return p, true
	}
	pin := gpioreg.ByName("GPIO" + strconv.Itoa(n))
	if pin == nil {
		return nil, false
	}
	p := &periphPin{p: pin, n: n}
	f.pins[n] = p
	return p, true
}

type periphPin struct {
	p gpio.PinIO
	n int

	mu   sync.Mutex
	pull gpio.Pull
	stop chan struct{}
	done chan struct{}
}

func (r *periphPin) ConfigureInput(pull halcore.Pull) error {
	r.mu.Lock()
	r.pull = toPull(pull)
	r.mu.Unlock()
	return r.p.In(toPull(pull), gpio.NoEdge)
}

func (r *periphPin) ConfigureOutput(initial bool) error {
	return r.p.Out(gpio.Level(initial))
}

func (r *periphPin) Set(level bool) error { return r.p.Out(gpio.Level(level)) }
func (r *periphPin) Get() bool            { return r.p.Read() == gpio.High }
func (r *periphPin) Number() int          { return r.n }

// SetIRQ enables kernel edge detection and forwards each edge to handler
// from a dedicated goroutine.
func (r *periphPin) SetIRQ(edge halcore.Edge, handler func()) error {
	if handler == nil || edge == halcore.EdgeNone {
		return r.ClearIRQ()
	}
	if err := r.ClearIRQ(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.p.In(r.pull, toEdge(edge)); err != nil {
		return err
	}
	stop, done := make(chan struct{}), make(chan struct{})
	r.stop, r.done = stop, done
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if r.p.WaitForEdge(edgePoll) {
				handler()
			}
		}
	}()
	return nil
}

func (r *periphPin) ClearIRQ() error {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	pull := r.pull
	r.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return r.p.In(pull, gpio.NoEdge)
}

func toPull(p halcore.Pull) gpio.Pull {
	switch p {
	case halcore.PullUp:
		return gpio.PullUp
	case halcore.PullDown:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}

func toEdge(e halcore.Edge) gpio.Edge {
	switch e {
	case halcore.EdgeRising:
		return gpio.RisingEdge
	case halcore.EdgeFalling:
		return gpio.FallingEdge
	case halcore.EdgeBoth:
		return gpio.BothEdges
	default:
		return gpio.NoEdge
	}
}

var _ halcore.IRQPin = (*periphPin)(nil)

var errNoPeriph = errors.New("periph: no gpio driver")

// checkDrivers reports whether any GPIO got registered by host.Init.
func checkDrivers() error {
	if len(gpioreg.All()) == 0 {
		return errNoPeriph
	}
	return nil
}
