package sim

import "errors"

// Kernel contract violations. They indicate a bug in the calling code,
// not a runtime condition to recover from.
var (
	// ErrInvalidDelay is returned by Schedule for a negative or NaN delay.
	ErrInvalidDelay = errors.New("invalid delay")
	// ErrInvalidAmount is returned by Container operations for a
	// non-positive or NaN amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrOverRelease is returned by Container.Release when the release
	// would drive the allocated level below zero.
	ErrOverRelease = errors.New("release exceeds allocated amount")
)
