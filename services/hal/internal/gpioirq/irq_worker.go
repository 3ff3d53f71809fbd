// services/hal/internal/gpioirq/irq_worker.go
package gpioirq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"segclock/services/hal/internal/halcore"
)

// Worker turns raw rising-edge interrupts into debounced button presses.
// The ISR side only enqueues the pin number; debounce, latching and
// handler dispatch happen on the worker goroutine.
type Worker struct {
	// Written by ISR; MUST NOT block the ISR:
	isrQ    chan int
	stopped chan struct{}

	mu     sync.RWMutex
	inputs map[int]*watch // pin number -> watch

	drops atomic.Uint32 // ISR drop counter
	now   func() time.Time
}

type watch struct {
	pin      halcore.IRQPin
	debounce time.Duration
	handler  func()
	latched  atomic.Bool

	// worker goroutine only
	lastEvent time.Time
}

func New(isrBuf int) *Worker {
	if isrBuf <= 0 {
		isrBuf = 16
	}
	return &Worker{
		isrQ:    make(chan int, isrBuf),
		stopped: make(chan struct{}),
		inputs:  map[int]*watch{},
		now:     time.Now,
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-w.isrQ:
				w.handleISR(n)
			}
		}
	}()
}

// Stopped is closed once the worker goroutine has exited.
func (w *Worker) Stopped() <-chan struct{} { return w.stopped }

// RegisterRising arms a rising-edge IRQ on pin. Accepted edges are at least
// debounce apart; each one sets the pin's latch and then calls handler
// (which may be nil). Registering a pin again replaces the old watch.
// The returned func disarms the IRQ and forgets the latch.
func (w *Worker) RegisterRising(pin halcore.IRQPin, debounce time.Duration, handler func()) (func(), error) {
	n := pin.Number()
	w.unregister(n)

	wh := &watch{pin: pin, debounce: debounce, handler: handler}

	// ISR handler: non-blocking channel send only.
	isr := func() {
		select {
		case w.isrQ <- n:
		default:
			w.drops.Add(1) // protect ISR path
		}
	}

	w.mu.Lock()
	w.inputs[n] = wh
	w.mu.Unlock()

	if err := pin.SetIRQ(halcore.EdgeRising, isr); err != nil {
		w.mu.Lock()
		delete(w.inputs, n)
		w.mu.Unlock()
		return nil, err
	}

	return func() {
		w.mu.Lock()
		cur, ok := w.inputs[n]
		if ok && cur == wh {
			delete(w.inputs, n)
		}
		w.mu.Unlock()
		if ok && cur == wh {
			_ = pin.ClearIRQ()
		}
	}, nil
}

func (w *Worker) unregister(n int) {
	w.mu.Lock()
	cur, ok := w.inputs[n]
	delete(w.inputs, n)
	w.mu.Unlock()
	if ok {
		_ = cur.pin.ClearIRQ()
	}
}

// Latched reports whether an accepted edge arrived on pin n since the last
// call, and clears the latch.
func (w *Worker) Latched(n int) bool {
	w.mu.RLock()
	wh := w.inputs[n]
	w.mu.RUnlock()
	if wh == nil {
		return false
	}
	return wh.latched.Swap(false)
}

func (w *Worker) handleISR(n int) {
	w.mu.RLock()
	wh := w.inputs[n]
	w.mu.RUnlock()
	if wh == nil {
		return
	}
	now := w.now()

	// Debounce against the last accepted edge.
	if !wh.lastEvent.IsZero() && now.Sub(wh.lastEvent) < wh.debounce {
		return
	}
	wh.lastEvent = now

	wh.latched.Store(true)
	if wh.handler != nil {
		wh.handler()
	}
}

func (w *Worker) ISRDrops() uint32 { return w.drops.Load() }
