package app

import (
	"time"

	"segclock/types"
	"segclock/x/timex"
)

type TimerStatus uint32

const (
	TimerIdle TimerStatus = iota
	TimerRunning
	TimerResult
	timerStatuses
)

func (s TimerStatus) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerRunning:
		return "running"
	case TimerResult:
		return "result"
	default:
		return "unknown"
	}
}

// Stopwatch cycles idle -> running -> result on its button.
//
// Idle blinks "00.00" in the second half of every wall-clock second.
// Running shows the live elapsed time. Result shows the frozen total in the
// last 1.2 s of every 2 s period.
type Stopwatch struct {
	status  *Status
	variant string

	// owned by the render loop
	seen  TimerStatus
	start time.Time
	total time.Duration
}

// NewStopwatch uses types.FormatFixed unless variant is types.FormatLegacy.
func NewStopwatch(variant string) *Stopwatch {
	if variant != types.FormatLegacy {
		variant = types.FormatFixed
	}
	return &Stopwatch{status: NewStatus(uint32(timerStatuses)), variant: variant}
}

func (w *Stopwatch) Name() string        { return "stopwatch" }
func (w *Stopwatch) Advance()            { w.status.Advance() }
func (w *Stopwatch) Status() TimerStatus { return TimerStatus(w.status.Load()) }
func (w *Stopwatch) StatusName() string  { return w.Status().String() }

func (w *Stopwatch) Reset() {
	w.status.Reset()
	w.seen = TimerIdle
	w.start = time.Time{}
	w.total = 0
}

// Elapsed is the live time while running, the frozen total in result and
// zero when idle.
func (w *Stopwatch) Elapsed(now time.Time) time.Duration {
	switch w.seen {
	case TimerRunning:
		return now.Sub(w.start)
	case TimerResult:
		return w.total
	}
	return 0
}

func (w *Stopwatch) observe(now time.Time) TimerStatus {
	cur := w.Status()
	if cur == w.seen {
		return cur
	}
	switch cur {
	case TimerRunning:
		w.start = now
	case TimerResult:
		if w.seen == TimerRunning {
			w.total = now.Sub(w.start)
		} else {
			// both presses landed between two ticks
			w.start, w.total = now, 0
		}
	}
	w.seen = cur
	return cur
}

func (w *Stopwatch) Tick(now time.Time) (string, bool) {
	switch w.observe(now) {
	case TimerRunning:
		return FormatElapsed(now.Sub(w.start).Seconds(), w.variant), true
	case TimerResult:
		if timex.Phase(now, 2*time.Second) > 800*time.Millisecond {
			return FormatElapsed(w.total.Seconds(), w.variant), true
		}
		return "", false
	default:
		if timex.Phase(now, time.Second) > 500*time.Millisecond {
			return "00.00", true
		}
		return "", false
	}
}
