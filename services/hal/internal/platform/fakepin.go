// services/hal/internal/platform/fakepin.go
package platform

import (
	"sync"

	"segclock/services/hal/internal/halcore"
)

// FakePin implements GPIOPin and IRQPin in memory. It backs the "sim" board
// and host-side tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	pull    halcore.Pull
	irqEdge halcore.Edge
	irqFunc func()
	writes  int
	failErr error
}

func (p *FakePin) ConfigureInput(pull halcore.Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	if p.failErr != nil {
		err := p.failErr
		p.mu.Unlock()
		return err
	}
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

// Set drives the line; rising/falling transitions fire a matching IRQ
// handler the way a real input would.
func (p *FakePin) Set(level bool) error {
	p.mu.Lock()
	if p.failErr != nil {
		err := p.failErr
		p.mu.Unlock()
		return err
	}
	old := p.level
	p.level = level
	p.writes++
	irq := p.irqFunc
	want := irqWanted(p.irqEdge, edgeFrom(old, level))
	p.mu.Unlock()
	if want && irq != nil {
		irq() // ISR-style callback used by gpioirq.Worker
	}
	return nil
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) SetIRQ(edge halcore.Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.irqEdge = halcore.EdgeNone
	p.irqFunc = nil
	p.mu.Unlock()
	return nil
}

// IsOutput reports the configured direction.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// Pull reports the configured pull for inputs.
func (p *FakePin) Pull() halcore.Pull {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pull
}

// IRQArmed reports whether an interrupt handler is installed.
func (p *FakePin) IRQArmed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.irqFunc != nil
}

// Writes counts successful Set calls.
func (p *FakePin) Writes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writes
}

// FailWith makes later writes and output configuration return err; nil heals.
func (p *FakePin) FailWith(err error) {
	p.mu.Lock()
	p.failErr = err
	p.mu.Unlock()
}

// Press simulates a button press and release on an input line.
func (p *FakePin) Press() {
	_ = p.Set(true)
	_ = p.Set(false)
}

func edgeFrom(old, new bool) halcore.Edge {
	switch {
	case !old && new:
		return halcore.EdgeRising
	case old && !new:
		return halcore.EdgeFalling
	default:
		return halcore.EdgeNone
	}
}

func irqWanted(cfg, seen halcore.Edge) bool {
	switch cfg {
	case halcore.EdgeBoth:
		return seen == halcore.EdgeRising || seen == halcore.EdgeFalling
	case halcore.EdgeNone:
		return false
	default:
		return cfg == seen
	}
}

// HostPinFactory returns stable *FakePin instances per number.
// Numbers outside [0, Max] are unknown; Max==0 means 63.
type HostPinFactory struct {
	Max int

	mu   sync.Mutex
	pins map[int]*FakePin
}

func NewHostPinFactory() *HostPinFactory {
	return &HostPinFactory{pins: make(map[int]*FakePin)}
}

func (f *HostPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	p, ok := f.Get(n)
	if !ok {
		return nil, false
	}
	return p, true
}

// Get exposes the underlying *FakePin for tests (e.g. to drive IRQ edges).
func (f *HostPinFactory) Get(n int) (*FakePin, bool) {
	max := f.Max
	if max == 0 {
		max = 63
	}
	if n < 0 || n > max {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p, true
}
