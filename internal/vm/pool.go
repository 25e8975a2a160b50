package vm

import (
	"errors"
	"fmt"
	"sync"

	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/trace"
	"jstep/internal/types"
)

var (
	ErrNoPrograms = errors.New("vm: no type table or programs")
	ErrLaunched   = errors.New("vm: pool already launched")
	ErrNotPaused  = errors.New("vm: pool is not paused")
)

// PoolState is the state of the whole program run.
type PoolState uint8

const (
	PoolIdle PoolState = iota
	PoolRunning
	PoolPaused
	// PoolWaiting: every live thread is blocked.
	PoolWaiting
	PoolStopped
)

func (s PoolState) String() string {
	switch s {
	case PoolIdle:
		return "idle"
	case PoolRunning:
		return "running"
	case PoolPaused:
		return "paused"
	case PoolWaiting:
		return "waiting"
	case PoolStopped:
		return "stopped"
	}
	return "?"
}

// Mode selects the granularity of RunSteps.
type Mode uint8

const (
	ModeSingle Mode = iota
	ModeMulti
)

type PauseReason uint8

const (
	PauseRequested PauseReason = iota
	PauseBreakpoint
	PauseStep
)

func (r PauseReason) String() string {
	switch r {
	case PauseBreakpoint:
		return "breakpoint"
	case PauseStep:
		return "step"
	}
	return "pause"
}

type PauseEvent struct {
	Thread *Thread
	Reason PauseReason
	Span   source.Span
}

// Hooks are called on the goroutine that drives the pool.
type Hooks struct {
	OnPause       func(PauseEvent)
	OnUncaught    func(*Uncaught)
	OnInput       func(*Suspension)
	OnExit        func()
	OnStateChange func(PoolState)
}

// ProgramSource resolves compiled programs; the generator output
// implements it.
type ProgramSource interface {
	Method(id types.MethodID) *steps.Program
	Programs() []*steps.Program
}

type Options struct {
	Types    *types.Table
	Programs ProgramSource
	// Natives is indexed by NativeID; entry 0 is unused.
	Natives []NativeFunc
	Files   *source.FileSet
	Clock   Clock
	// Slice is the number of steps a thread runs before the next one is
	// scheduled.
	Slice    int
	MaxDepth int
	Tracer   trace.Tracer
	Hooks    Hooks
}

const (
	defaultSlice    = 16
	defaultMaxDepth = 1000
)

type stepKind uint8

const (
	stepNone stepKind = iota
	stepInto
	stepOver
	stepOut
)

type stepping struct {
	kind   stepKind
	thread *Thread
	depth  int
}

// ThreadPool runs logical threads cooperatively on the caller's goroutine.
// Only Suspension.Resume may be called concurrently.
type ThreadPool struct {
	tbl      *types.Table
	progs    ProgramSource
	natives  []NativeFunc
	files    *source.FileSet
	clock    Clock
	slice    int
	maxDepth int
	tracer   trace.Tracer
	hooks    Hooks

	heap    heap
	statics map[types.ClassID][]Value
	singles map[string]*Object

	threads []*Thread
	nextID  int
	rr      int
	current *Thread
	state   PoolState
	steps   int64

	mu      sync.Mutex
	inbox   []resumeMsg
	stopped bool

	breaks map[Breakpoint]struct{}
	step   stepping

	objectClass *types.Class
	stringClass *types.Class
}

func NewThreadPool(opts Options) (*ThreadPool, error) {
	if opts.Types == nil || opts.Programs == nil {
		return nil, ErrNoPrograms
	}
	p := &ThreadPool{
		tbl:      opts.Types,
		progs:    opts.Programs,
		natives:  opts.Natives,
		files:    opts.Files,
		clock:    opts.Clock,
		slice:    opts.Slice,
		maxDepth: opts.MaxDepth,
		tracer:   opts.Tracer,
		hooks:    opts.Hooks,
		heap:     heap{tbl: opts.Types},
		statics:  make(map[types.ClassID][]Value),
		singles:  make(map[string]*Object),
		breaks:   make(map[Breakpoint]struct{}),
	}
	if p.clock == nil {
		p.clock = systemClock{}
	}
	if p.slice <= 0 {
		p.slice = defaultSlice
	}
	if p.maxDepth <= 0 {
		p.maxDepth = defaultMaxDepth
	}
	if p.tracer == nil {
		p.tracer = trace.Nop
	}
	bt := p.tbl.Builtins()
	p.objectClass = p.tbl.ClassOf(bt.Object)
	p.stringClass = p.tbl.ClassOf(bt.String)
	return p, nil
}

func (p *ThreadPool) Types() *types.Table     { return p.tbl }
func (p *ThreadPool) Files() *source.FileSet  { return p.files }
func (p *ThreadPool) State() PoolState        { return p.state }
func (p *ThreadPool) Steps() int64            { return p.steps }
func (p *ThreadPool) Clock() Clock            { return p.clock }
func (p *ThreadPool) Programs() ProgramSource { return p.progs }
func (p *ThreadPool) Current() *Thread        { return p.current }
func (p *ThreadPool) Threads() []*Thread      { return append([]*Thread(nil), p.threads...) }
func (p *ThreadPool) Stepping() bool          { return p.step.kind != stepNone }

func (p *ThreadPool) native(id types.NativeID) NativeFunc {
	if int(id) < len(p.natives) {
		return p.natives[id]
	}
	return nil
}

// Launch starts the main thread with the script program. Class
// initializers run first, in the given order, on the same thread.
func (p *ThreadPool) Launch(script *steps.Program, inits []*steps.Program) error {
	if p.state != PoolIdle {
		return ErrLaunched
	}
	t := p.newThread("main")
	t.pushFrame(script, nil, 0)
	for i := len(inits) - 1; i >= 0; i-- {
		t.pushFrame(inits[i], nil, 0)
	}
	p.current = t
	p.setState(PoolRunning)
	p.setThreadState(t, ThreadRunning)
	return nil
}

func (p *ThreadPool) newThread(name string) *Thread {
	id := p.nextID
	p.nextID++
	if name == "" {
		name = fmt.Sprintf("Thread-%d", id-1)
	}
	t := &Thread{ID: id, Name: name}
	p.threads = append(p.threads, t)
	return t
}

// spawn creates a thread that starts by calling m with args.
func (p *ThreadPool) spawn(name string, m types.MethodID, args []Value) (*Thread, error) {
	meth := p.tbl.Method(m)
	if meth == nil {
		return nil, fmt.Errorf("vm: spawn of unknown method %d", m)
	}
	t := p.newThread(name)
	if p.state == PoolPaused {
		p.setThreadState(t, ThreadPaused)
	} else {
		p.setThreadState(t, ThreadRunning)
	}
	for _, a := range args {
		t.push(a)
	}
	p.invoke(t, meth, len(args), meth.Span)
	if len(t.frames) == 0 && t.state != ThreadStopped && !t.state.blocked() {
		p.finish(t)
	}
	return t, nil
}

func (p *ThreadPool) setState(s PoolState) {
	if p.state == s {
		return
	}
	p.state = s
	if p.hooks.OnStateChange != nil {
		p.hooks.OnStateChange(s)
	}
}

func (p *ThreadPool) setThreadState(t *Thread, s ThreadState) {
	t.state = s
}

// Pause stops a running pool between steps.
func (p *ThreadPool) Pause() {
	if p.state != PoolRunning && p.state != PoolWaiting {
		return
	}
	var sp source.Span
	if p.current != nil {
		if f := p.current.Top(); f != nil && f.PC < len(f.Prog.Steps) {
			sp = f.Prog.Steps[f.PC].Span
		}
	}
	p.pause(PauseEvent{Thread: p.current, Reason: PauseRequested, Span: sp})
}

func (p *ThreadPool) pause(ev PauseEvent) {
	p.step = stepping{}
	for _, t := range p.threads {
		if t.state == ThreadRunning {
			p.setThreadState(t, ThreadPaused)
		}
	}
	p.setState(PoolPaused)
	if p.hooks.OnPause != nil {
		p.hooks.OnPause(ev)
	}
}

// Resume continues a paused pool. The thread that paused at a breakpoint
// executes that step instead of pausing again.
func (p *ThreadPool) Resume() {
	if p.state != PoolPaused {
		return
	}
	for _, t := range p.threads {
		if t.state == ThreadPaused {
			p.setThreadState(t, ThreadRunning)
		}
	}
	if p.current != nil {
		p.current.skipBreak = true
		p.current.sinceResume = 0
	}
	p.setState(PoolRunning)
}

func (p *ThreadPool) StepInto() error { return p.stepWith(stepInto) }
func (p *ThreadPool) StepOver() error { return p.stepWith(stepOver) }
func (p *ThreadPool) StepOut() error  { return p.stepWith(stepOut) }

func (p *ThreadPool) stepWith(k stepKind) error {
	if p.state != PoolPaused {
		return ErrNotPaused
	}
	t := p.current
	if t == nil || t.state == ThreadStopped {
		p.Resume()
		return nil
	}
	p.Resume()
	p.step = stepping{kind: k, thread: t, depth: t.Depth()}
	return nil
}

// Stop terminates every thread. Later resumes are discarded.
func (p *ThreadPool) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.inbox = nil
	p.mu.Unlock()
	for _, t := range p.threads {
		p.setThreadState(t, ThreadStopped)
		t.pending = nil
	}
	p.step = stepping{}
	p.setState(PoolStopped)
}

// Poll delivers queued resumes and wakes sleepers whose time has come.
// It must be called from the goroutine driving the pool.
func (p *ThreadPool) Poll() {
	p.mu.Lock()
	msgs := p.inbox
	p.inbox = nil
	p.mu.Unlock()
	for _, m := range msgs {
		p.deliver(m)
	}
	now := p.clock.Now()
	for _, t := range p.threads {
		if t.state == ThreadSleeping && t.sleep != nil && !now.Before(t.wakeAt) {
			p.resumeNow(t.sleep, Null())
		}
	}
	if p.state == PoolWaiting && p.runnable() != nil {
		p.setState(PoolRunning)
	}
}

// resumeNow delivers a resume on the pool goroutine without the inbox.
func (p *ThreadPool) resumeNow(s *Suspension, v Value) {
	p.mu.Lock()
	if s.done || p.stopped {
		p.mu.Unlock()
		return
	}
	s.done = true
	p.mu.Unlock()
	p.deliver(resumeMsg{s: s, value: v})
}

// Waiting lists the input suspensions not yet resumed.
func (p *ThreadPool) Waiting() []*Suspension {
	var out []*Suspension
	for _, t := range p.threads {
		if t.state == ThreadWaitingForInput && t.pending != nil {
			out = append(out, t.pending)
		}
	}
	return out
}

// Position is where the current thread is about to continue.
type Position struct {
	Thread *Thread
	Prog   *steps.Program
	PC     int
	Span   source.Span
	Depth  int
}

func (p *ThreadPool) Position() (Position, bool) {
	t := p.current
	if t == nil {
		return Position{}, false
	}
	f := t.Top()
	if f == nil {
		return Position{Thread: t}, false
	}
	pos := Position{Thread: t, Prog: f.Prog, PC: f.PC, Depth: len(t.frames), Span: f.Prog.Span}
	if f.PC < len(f.Prog.Steps) {
		pos.Span = f.Prog.Steps[f.PC].Span
	}
	return pos, true
}

// RunSteps executes up to n steps round-robin, slice steps per thread at
// a time, and returns how many ran. In ModeMulti a multi-step counts as
// one. It returns early once the pool leaves Running.
func (p *ThreadPool) RunSteps(n int, mode Mode) int {
	done := 0
	for done < n && p.state == PoolRunning {
		t := p.runnable()
		if t == nil {
			p.idle()
			break
		}
		for i := 0; i < p.slice && done < n && p.state == PoolRunning && t.state == ThreadRunning; i++ {
			var ran bool
			if mode == ModeMulti {
				ran = p.multiStep(t)
			} else {
				ran = p.singleStep(t)
			}
			if ran {
				done++
			}
		}
		p.rotate(t)
	}
	return done
}

// runnable picks the next running thread in round-robin order.
func (p *ThreadPool) runnable() *Thread {
	n := len(p.threads)
	for i := 0; i < n; i++ {
		t := p.threads[(p.rr+i)%n]
		if t.state == ThreadRunning {
			return t
		}
	}
	return nil
}

func (p *ThreadPool) rotate(t *Thread) {
	for i, x := range p.threads {
		if x == t {
			p.rr = i + 1
			return
		}
	}
}

// idle is called when no thread can run.
func (p *ThreadPool) idle() {
	for _, t := range p.threads {
		if t.state != ThreadStopped {
			p.setState(PoolWaiting)
			return
		}
	}
	p.setState(PoolStopped)
}

// finish stops a thread whose last frame returned or failed.
func (p *ThreadPool) finish(t *Thread) {
	if t.state == ThreadStopped {
		return
	}
	p.setThreadState(t, ThreadStopped)
	if p.step.thread == t {
		p.step = stepping{}
	}
	for _, s := range t.joiners {
		p.resumeNow(s, Null())
	}
	t.joiners = nil
	if t.scratch {
		return
	}
	for _, x := range p.threads {
		if x.state != ThreadStopped {
			return
		}
	}
	p.setState(PoolStopped)
	if p.hooks.OnExit != nil {
		p.hooks.OnExit()
	}
}

// Singleton returns the pool-wide object registered under key, creating it
// with mk on first use.
func (p *ThreadPool) Singleton(key string, mk func() *Object) *Object {
	if o, ok := p.singles[key]; ok {
		return o
	}
	o := mk()
	p.singles[key] = o
	return o
}
