package loadctl

import (
	"sync"
	"time"

	"jstep/internal/vm"
)

// RealClock reads the wall clock. It satisfies vm.Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// VirtualClock advances only when told to. The pool and the controller
// should share one instance so Thread.sleep and tick budgets agree.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock starts at a fixed epoch so runs are reproducible.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{now: time.Unix(0, 0).UTC()}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d; negative durations are ignored.
func (c *VirtualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var (
	_ vm.Clock = RealClock{}
	_ vm.Clock = (*VirtualClock)(nil)
)
