// Package loadctl paces a thread pool from a host tick: it turns a target
// speed in steps per second into per-tick step quotas and keeps each tick
// within a share of its interval.
package loadctl

import (
	"context"
	"math"
	"time"

	"jstep/internal/vm"
)

const (
	DefaultInterval        = 16 * time.Millisecond
	DefaultBudget          = 0.7
	DefaultSingleStepBelow = 20
	DefaultMaxStepsPerTick = 1_000_000
	batchSize              = 256
)

// Controller drives Pool. Zero fields take the defaults above; Speed <= 0
// means as fast as the budget allows.
type Controller struct {
	Pool  *vm.ThreadPool
	Clock vm.Clock

	Speed           float64 // шагов в секунду
	Interval        time.Duration
	Budget          float64
	SingleStepBelow float64
	MaxStepsPerTick int

	last  time.Time
	acc   time.Duration // накопленное время для пошагового режима
	carry float64       // дробный остаток квоты
}

// Tick performs one host tick and returns the number of steps executed.
func (c *Controller) Tick() int {
	c.Pool.Poll()
	now := c.clock().Now()
	if c.Pool.State() != vm.PoolRunning {
		c.reset()
		return 0
	}
	var elapsed time.Duration
	if !c.last.IsZero() {
		elapsed = now.Sub(c.last)
	}
	c.last = now

	if c.Speed > 0 && c.Speed < c.singleStepBelow() {
		return c.tickSingle(elapsed)
	}
	return c.tickBatch(now, elapsed)
}

// tickSingle runs at most one single-mode step per tick, spaced by the
// step interval. The remainder carries over so steps do not drift.
func (c *Controller) tickSingle(elapsed time.Duration) int {
	step := time.Duration(float64(time.Second) / c.Speed)
	c.acc += elapsed
	if c.acc < step {
		return 0
	}
	c.acc -= step
	if c.acc > step {
		c.acc = step
	}
	return c.Pool.RunSteps(1, vm.ModeSingle)
}

func (c *Controller) tickBatch(start time.Time, elapsed time.Duration) int {
	quota := c.MaxStepsPerTick
	if quota <= 0 {
		quota = DefaultMaxStepsPerTick
	}
	if c.Speed > 0 {
		want := c.Speed*elapsed.Seconds() + c.carry
		n := math.Floor(want)
		c.carry = want - n
		if n < float64(quota) {
			quota = int(n)
		}
	}
	deadline := time.Duration(float64(c.interval()) * c.budget())
	done := 0
	for done < quota && c.Pool.State() == vm.PoolRunning {
		n := c.Pool.RunSteps(min(batchSize, quota-done), vm.ModeMulti)
		done += n
		if n == 0 || c.clock().Now().Sub(start) >= deadline {
			break
		}
	}
	return done
}

func (c *Controller) reset() {
	c.last = time.Time{}
	c.acc = 0
	c.carry = 0
}

// Run ticks every Interval until the pool stops or ctx is cancelled, in
// which case the pool is stopped.
func (c *Controller) Run(ctx context.Context) error {
	tk := time.NewTicker(c.interval())
	defer tk.Stop()
	for {
		c.Tick()
		if c.Pool.State() == vm.PoolStopped {
			return nil
		}
		select {
		case <-ctx.Done():
			c.Pool.Stop()
			return ctx.Err()
		case <-tk.C:
		}
	}
}

func (c *Controller) clock() vm.Clock {
	if c.Clock == nil {
		return c.Pool.Clock()
	}
	return c.Clock
}

func (c *Controller) interval() time.Duration {
	if c.Interval <= 0 {
		return DefaultInterval
	}
	return c.Interval
}

func (c *Controller) budget() float64 {
	if c.Budget <= 0 || c.Budget > 1 {
		return DefaultBudget
	}
	return c.Budget
}

func (c *Controller) singleStepBelow() float64 {
	if c.SingleStepBelow <= 0 {
		return DefaultSingleStepBelow
	}
	return c.SingleStepBelow
}
