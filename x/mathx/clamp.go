package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampDefault returns def when v is the zero value, otherwise Clamp(v, lo, hi).
// Config fields use it so an omitted value picks the default instead of the floor.
func ClampDefault[T constraints.Integer | constraints.Float](v, def, lo, hi T) T {
	if v == 0 {
		return def
	}
	return Clamp(v, lo, hi)
}
