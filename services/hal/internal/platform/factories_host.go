// services/hal/internal/platform/factories_host.go
//go:build !linux && !(rp2040 || rp2350)

package platform

import (
	"time"

	"segclock/services/hal/internal/halcore"
	"segclock/types"
)

// DefaultBoard names the embedded config used when none is given.
const DefaultBoard = "sim"

// DefaultPinFactory provides in-memory pins; there is no GPIO on this host.
func DefaultPinFactory() (halcore.PinFactory, error) {
	return NewHostPinFactory(), nil
}

// WallClock is the system clock; cfg is ignored.
func WallClock(_ types.RTCConfig) (func() time.Time, error) {
	return time.Now, nil
}
