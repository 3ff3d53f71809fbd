package display

import (
	"time"

	"segclock/errcode"
	"segclock/types"
	"segclock/x/mathx"
)

// Dwell limits. Four digits at MaxDwell keep a full frame near 4 ms, fast
// enough that the multiplexing does not flicker.
const (
	DefaultDwell = time.Millisecond
	MinDwell     = 50 * time.Microsecond
	MaxDwell     = time.Millisecond
)

// Writer drives one GPIO line. hal.HAL satisfies it.
type Writer interface {
	Write(pin int, level bool) error
}

// Config is the wiring and timing of one display.
type Config struct {
	Segments [Segments]int
	Point    int
	Digits   [Digits]int

	// SegmentActiveLow: a segment (and the point) lights when its line is low.
	SegmentActiveLow bool
	// DigitActiveHigh: a digit is selected when its line is high.
	DigitActiveHigh bool

	Dwell time.Duration
	Sleep func(time.Duration) // nil means time.Sleep
}

// ConfigFrom converts the loaded pin map; slices must have 7 and 4 entries.
func ConfigFrom(c types.DisplayConfig) (Config, error) {
	var out Config
	if len(c.Segments) != Segments || len(c.Digits) != Digits {
		return out, &errcode.E{C: errcode.InvalidConfig, Op: "display.config", Msg: "need 7 segment and 4 digit pins"}
	}
	copy(out.Segments[:], c.Segments)
	copy(out.Digits[:], c.Digits)
	out.Point = c.Point
	out.SegmentActiveLow = c.SegmentActiveLow
	out.DigitActiveHigh = c.DigitActiveHigh
	out.Dwell = time.Duration(c.DwellUs) * time.Microsecond
	return out, nil
}

// Pins lists every output line, segments first.
func (c Config) Pins() []int {
	pins := make([]int, 0, Segments+1+Digits)
	pins = append(pins, c.Segments[:]...)
	pins = append(pins, c.Point)
	return append(pins, c.Digits[:]...)
}

// IdleLevels returns the line levels that keep every segment and digit dark.
func (c Config) IdleLevels() (segment, digit bool) {
	return c.SegmentActiveLow, !c.DigitActiveHigh
}

// Renderer strobes frames onto the display. One call to Render lights each
// digit once for the dwell time; callers repeat it in a tight loop.
type Renderer struct {
	w   Writer
	cfg Config
}

func NewRenderer(w Writer, cfg Config) *Renderer {
	cfg.Dwell = mathx.ClampDefault(cfg.Dwell, DefaultDwell, MinDwell, MaxDwell)
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Renderer{w: w, cfg: cfg}
}

// Dwell is the effective per-digit on time.
func (r *Renderer) Dwell() time.Duration { return r.cfg.Dwell }

// Render decodes text and shows it for one multiplex cycle. Malformed text
// is rejected before any line is written.
func (r *Renderer) Render(text string) error {
	f, err := DecodeFrame(text)
	if err != nil {
		return err
	}
	return r.Show(f)
}

// Show runs one multiplex cycle over f. The first write error aborts it.
func (r *Renderer) Show(f Frame) error {
	for i, d := range f {
		for s := 0; s < Segments; s++ {
			if err := r.w.Write(r.cfg.Segments[s], r.segLevel(d.Pattern[s])); err != nil {
				return err
			}
		}
		if err := r.w.Write(r.cfg.Point, r.segLevel(d.Point)); err != nil {
			return err
		}
		if err := r.w.Write(r.cfg.Digits[i], r.cfg.DigitActiveHigh); err != nil {
			return err
		}
		r.cfg.Sleep(r.cfg.Dwell)
		if err := r.w.Write(r.cfg.Digits[i], !r.cfg.DigitActiveHigh); err != nil {
			return err
		}
	}
	return nil
}

// Blank deselects every digit.
func (r *Renderer) Blank() error {
	for _, pin := range r.cfg.Digits {
		if err := r.w.Write(pin, !r.cfg.DigitActiveHigh); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) segLevel(lit bool) bool { return lit != r.cfg.SegmentActiveLow }
