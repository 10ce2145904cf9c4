// Package clock provides the time source and the pure time arithmetic the
// session engine and analytics queries share. Injecting Clock instead of
// calling time.Now directly keeps pause accounting testable.
package clock

import "time"

// Clock is the time source injected into the engines.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall-clock Clock.
func System() Clock { return systemClock{} }
