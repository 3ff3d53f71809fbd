// Package app holds the clock and stopwatch applications and the switcher
// that runs one of them at a time on the display.
//
// Button handlers run on the IRQ worker goroutine and only touch the atomic
// fields defined here. Each field has a single writer: the switch button
// sets Interrupt, a mode's own button advances its Status, and the render
// loop only reads them (Interrupt is cleared by the switcher between
// activations).
package app

import "sync/atomic"

// Interrupt asks the active mode's render loop to return.
type Interrupt struct{ v atomic.Bool }

func (i *Interrupt) Set()        { i.v.Store(true) }
func (i *Interrupt) Clear()      { i.v.Store(false) }
func (i *Interrupt) IsSet() bool { return i.v.Load() }

// Status is a cyclic counter over n values: Advance past the last value
// wraps to 0.
type Status struct {
	v atomic.Uint32
	n uint32
}

func NewStatus(n uint32) *Status {
	if n == 0 {
		n = 1
	}
	return &Status{n: n}
}

// Advance moves to the next value. Safe from a button handler.
func (s *Status) Advance() {
	for {
		cur := s.v.Load()
		if s.v.CompareAndSwap(cur, (cur+1)%s.n) {
			return
		}
	}
}

func (s *Status) Load() uint32 { return s.v.Load() }
func (s *Status) Reset()       { s.v.Store(0) }
