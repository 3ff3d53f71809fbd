package display

import (
	"strconv"

	"segclock/errcode"
)

// Digit is one decoded position of a frame.
type Digit struct {
	Glyph   byte
	Pattern Pattern
	Point   bool
}

// Frame is the decoded content of all four digits, left to right.
type Frame [Digits]Digit

// DecodeFrame turns display text into a Frame. The text holds exactly four
// supported characters; a '.' lights the point of the character before it.
// "12.34" lights the point of the second digit, "02.05." the second and
// fourth. A leading '.' or two '.' in a row have no digit to attach to and
// are rejected, as is any other length or an unsupported character.
func DecodeFrame(text string) (Frame, error) {
	var f Frame

	n := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' {
			n++
		}
	}
	if n != Digits {
		return f, malformed(text, strconv.Itoa(n)+" characters, want 4")
	}

	n = 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '.' {
			if n == 0 {
				return f, malformed(text, "point before first digit")
			}
			if f[n-1].Point {
				return f, malformed(text, "repeated point")
			}
			f[n-1].Point = true
			continue
		}
		pat, err := Encode(c)
		if err != nil {
			return f, err
		}
		f[n] = Digit{Glyph: c, Pattern: pat}
		n++
	}
	return f, nil
}

// Points returns the per-digit point flags.
func (f Frame) Points() [Digits]bool {
	var pts [Digits]bool
	for i, d := range f {
		pts[i] = d.Point
	}
	return pts
}

// Text returns the glyphs without points.
func (f Frame) Text() string {
	b := make([]byte, Digits)
	for i, d := range f {
		b[i] = d.Glyph
	}
	return string(b)
}

func malformed(text, why string) error {
	return &errcode.E{C: errcode.MalformedDisplay, Op: "display.decode", Msg: strconv.Quote(text) + ": " + why}
}
