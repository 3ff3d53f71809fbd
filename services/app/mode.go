package app

import "time"

// Mode is one application driven by the switcher's render loop.
//
// Tick is called once per loop iteration with the current time and returns
// the text to render; show=false asks the loop to back off briefly
// instead (blink gaps). Advance is the mode button's handler.
type Mode interface {
	Name() string
	Reset()
	Advance()
	StatusName() string
	Tick(now time.Time) (text string, show bool)
}
