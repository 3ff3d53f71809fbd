//go:build tinygo

package main

import "context"

// No signals on a microcontroller; the loop runs until power-off or a fault.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(parent)
}
