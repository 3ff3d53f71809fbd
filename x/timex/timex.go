package timex

import "time"

// Phase returns how far t is into the current wall-clock period,
// i.e. t mod period measured from the Unix epoch. period<=0 yields 0.
func Phase(t time.Time, period time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	p := t.UnixNano() % int64(period)
	if p < 0 {
		p += int64(period)
	}
	return time.Duration(p)
}

// Clock is the time source seen by render loops.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System uses time.Now, or Wall when set (e.g. an RTC-backed clock).
type System struct {
	Wall func() time.Time
}

func (s System) Now() time.Time {
	if s.Wall != nil {
		return s.Wall()
	}
	return time.Now()
}

func (System) Sleep(d time.Duration) { time.Sleep(d) }
