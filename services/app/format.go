package app

import (
	"math"
	"strconv"

	"segclock/types"
	"segclock/x/mathx"
)

// Overflow is shown once the stopwatch reaches 100 minutes.
const Overflow = "Err.0"

const (
	overflowSeconds = 6000
	minutesFrom     = 100

	// absorbs binary error, e.g. 0.29*100 == 28.999999999999996
	epsilon = 1e-6
)

// FormatElapsed renders seconds in the display's 4 digits + points:
//
//	s < 100 (fixed) or s < 10 (legacy)  "SS.CC"
//	10 <= s < 100 (legacy)               decimal text cut or padded to 5
//	100 <= s < 6000                      "MM.SS."
//	s >= 6000                            "Err.0"
//
// Negative input counts as zero. Unknown variants use the fixed format.
func FormatElapsed(seconds float64, variant string) string {
	s := math.Max(seconds, 0)
	switch {
	case s >= overflowSeconds:
		return Overflow
	case s >= minutesFrom:
		whole := int(s + epsilon)
		return pad2(whole/60) + "." + pad2(whole%60) + "."
	case variant == types.FormatLegacy && s >= 10:
		return legacyText(s)
	case variant == types.FormatLegacy:
		return centis(int(math.Round(s * 100)))
	default:
		return centis(int(math.Floor(s*100 + epsilon)))
	}
}

// centis formats hundredths of a second as "SS.CC", saturating at 99.99.
func centis(c int) string {
	c = mathx.Clamp(c, 0, 9999)
	return pad2(c/100) + "." + pad2(c%100)
}

func legacyText(s float64) string {
	b := []byte(strconv.FormatFloat(s, 'f', -1, 64))
	if len(b) > 5 {
		b = b[:5]
	}
	if len(b) == 2 {
		b = append(b, '.')
	}
	for len(b) < 5 {
		b = append(b, '0')
	}
	return string(b)
}
