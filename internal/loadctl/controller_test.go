package loadctl_test

import (
	"testing"
	"time"

	"jstep/internal/loadctl"
	"jstep/internal/testkit"
	"jstep/internal/vm"
)

const spin = `int i = 0;
while (true) {
    i = i + 1;
}
`

func start(t *testing.T, src string, clock *loadctl.VirtualClock) (*vm.ThreadPool, *testkit.Console) {
	t.Helper()
	res, con := testkit.MustCompile(t, src)
	return testkit.Launch(t, res, vm.Options{Clock: clock}), con
}

func TestOneStepPerSecond(t *testing.T) {
	clock := loadctl.NewVirtualClock()
	p, _ := start(t, spin, clock)
	c := &loadctl.Controller{Pool: p, Clock: clock, Speed: 1, Interval: 100 * time.Millisecond}

	total := 0
	for i := 0; i <= 25; i++ {
		total += c.Tick()
		clock.Advance(100 * time.Millisecond)
	}
	if total < 2 || total > 3 {
		t.Fatalf("got %d steps in 2.5s at 1 step/s, want 2 or 3", total)
	}
	if p.Steps() != int64(total) {
		t.Fatalf("pool counted %d steps, controller %d", p.Steps(), total)
	}
}

func TestSpeedSetsQuota(t *testing.T) {
	clock := loadctl.NewVirtualClock()
	p, _ := start(t, spin, clock)
	c := &loadctl.Controller{Pool: p, Clock: clock, Speed: 1000, Interval: 100 * time.Millisecond}

	c.Tick() // первый тик только запоминает время
	total := 0
	for i := 0; i < 10; i++ {
		clock.Advance(100 * time.Millisecond)
		total += c.Tick()
	}
	if total != 1000 {
		t.Fatalf("got %d steps in 1s at 1000 steps/s, want 1000", total)
	}
}

func TestUnlimitedSpeedIsCapped(t *testing.T) {
	clock := loadctl.NewVirtualClock()
	p, _ := start(t, spin, clock)
	c := &loadctl.Controller{Pool: p, Clock: clock, MaxStepsPerTick: 500}

	if n := c.Tick(); n != 500 {
		t.Fatalf("got %d steps, want the 500 step cap", n)
	}
}

func TestPausedPoolDoesNotRun(t *testing.T) {
	clock := loadctl.NewVirtualClock()
	p, _ := start(t, spin, clock)
	c := &loadctl.Controller{Pool: p, Clock: clock, Speed: 1000}

	c.Tick()
	p.Pause()
	clock.Advance(time.Second)
	if n := c.Tick(); n != 0 {
		t.Fatalf("paused pool ran %d steps", n)
	}
	p.Resume()
	// время паузы не превращается в квоту
	if n := c.Tick(); n != 0 {
		t.Fatalf("got %d steps right after resume, want 0", n)
	}
	clock.Advance(10 * time.Millisecond)
	if n := c.Tick(); n != 10 {
		t.Fatalf("got %d steps for 10ms at 1000 steps/s, want 10", n)
	}
}

func TestSleepUsesPoolClock(t *testing.T) {
	clock := loadctl.NewVirtualClock()
	p, con := start(t, `println("a");
Thread.sleep(1000);
println("b");
`, clock)
	c := &loadctl.Controller{Pool: p, Clock: clock}

	for i := 0; i < 5; i++ {
		c.Tick()
		clock.Advance(100 * time.Millisecond)
	}
	if out := con.String(); out != "a\n" {
		t.Fatalf("got %q after 0.5s, want %q", out, "a\n")
	}
	if p.State() != vm.PoolWaiting {
		t.Fatalf("got state %v while sleeping, want waiting", p.State())
	}
	for i := 0; i < 10 && p.State() != vm.PoolStopped; i++ {
		clock.Advance(100 * time.Millisecond)
		c.Tick()
	}
	if out := con.String(); out != "a\nb\n" {
		t.Fatalf("got %q after 1.5s, want %q", out, "a\nb\n")
	}
}
