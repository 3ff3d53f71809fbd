package app

import (
	"strconv"
	"time"
)

type ClockStatus uint32

const (
	ClockTime ClockStatus = iota
	ClockDate
	clockStatuses
)

func (s ClockStatus) String() string {
	switch s {
	case ClockTime:
		return "time"
	case ClockDate:
		return "date"
	default:
		return "unknown"
	}
}

// Clock shows HH.MM with the point blinking once a second, or MM.DD.
type Clock struct {
	status *Status
}

func NewClock() *Clock { return &Clock{status: NewStatus(uint32(clockStatuses))} }

func (c *Clock) Name() string        { return "clock" }
func (c *Clock) Reset()              { c.status.Reset() }
func (c *Clock) Advance()            { c.status.Advance() }
func (c *Clock) Status() ClockStatus { return ClockStatus(c.status.Load()) }
func (c *Clock) StatusName() string  { return c.Status().String() }

func (c *Clock) Tick(now time.Time) (string, bool) {
	if c.Status() == ClockDate {
		return pad2(int(now.Month())) + "." + pad2(now.Day()), true
	}
	sep := "."
	if now.Second()%2 == 1 {
		sep = ""
	}
	return pad2(now.Hour()) + sep + pad2(now.Minute()), true
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
