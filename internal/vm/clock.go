package vm

import "time"

// Clock supplies time for sleeping threads. Tests drive the pool with a
// virtual clock; hosts pass a real one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
