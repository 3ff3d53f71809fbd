// Package display drives a 4-digit, 7-segment LED display whose segment
// lines are shared between digits and multiplexed in time.
//
// Segment order used throughout:
//
//	┌──0──┐
//	3     4
//	├──1──┤
//	5     6
//	└──2──┘  7 (decimal point)
package display

import "segclock/errcode"

const (
	// Segments is the number of shared segment lines excluding the point.
	Segments = 7
	// Digits is the number of digit-select lines.
	Digits = 4
)

// Pattern holds lit flags for the 7 segments plus the decimal point.
type Pattern [Segments + 1]bool

// Point is the index of the decimal-point flag within a Pattern.
const Point = Segments

func lit(top, mid, bot, ul, ur, ll, lr bool) Pattern {
	return Pattern{top, mid, bot, ul, ur, ll, lr, false}
}

const (
	x = true
	o = false
)

// glyphs is indexed by character; zero entries are unsupported.
var glyphs = [128]struct {
	ok  bool
	pat Pattern
}{
	' ': {true, lit(o, o, o, o, o, o, o)},
	'0': {true, lit(x, o, x, x, x, x, x)},
	'1': {true, lit(o, o, o, o, x, o, x)},
	'2': {true, lit(x, x, x, o, x, x, o)},
	'3': {true, lit(x, x, x, o, x, o, x)},
	'4': {true, lit(o, x, o, x, x, o, x)},
	'5': {true, lit(x, x, x, x, o, o, x)},
	'6': {true, lit(x, x, x, x, o, x, x)},
	'7': {true, lit(x, o, o, o, x, o, x)},
	'8': {true, lit(x, x, x, x, x, x, x)},
	'9': {true, lit(x, x, x, x, x, o, x)},
	'E': {true, lit(x, x, x, x, o, x, o)},
	'r': {true, lit(o, x, o, o, o, x, o)},
}

// Encode returns the segment pattern for ch. Supported characters are
// ' ', '0'-'9', 'E' and 'r'.
func Encode(ch byte) (Pattern, error) {
	if Supported(ch) {
		return glyphs[ch].pat, nil
	}
	return Pattern{}, &errcode.E{C: errcode.UnknownGlyph, Op: "display.encode", Msg: quote(ch)}
}

// Supported reports whether Encode accepts ch.
func Supported(ch byte) bool { return int(ch) < len(glyphs) && glyphs[ch].ok }

func quote(ch byte) string {
	if ch >= 0x20 && ch < 0x7f {
		return "'" + string(rune(ch)) + "'"
	}
	const hex = "0123456789abcdef"
	return "0x" + string([]byte{hex[ch>>4], hex[ch&0xf]})
}
