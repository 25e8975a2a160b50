package vm

import (
	"time"

	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
)

// ThreadState is the lifecycle state of a logical thread.
type ThreadState uint8

const (
	ThreadReady ThreadState = iota
	ThreadRunning
	ThreadPaused
	ThreadWaitingForInput
	ThreadSleeping
	ThreadJoining
	ThreadStopped
)

func (s ThreadState) String() string {
	switch s {
	case ThreadReady:
		return "ready"
	case ThreadRunning:
		return "running"
	case ThreadPaused:
		return "paused"
	case ThreadWaitingForInput:
		return "waiting for input"
	case ThreadSleeping:
		return "sleeping"
	case ThreadJoining:
		return "joining"
	case ThreadStopped:
		return "stopped"
	}
	return "?"
}

// blocked reports states that only a resume can leave.
func (s ThreadState) blocked() bool {
	return s == ThreadWaitingForInput || s == ThreadSleeping || s == ThreadJoining
}

// catchMark is pushed by EnterCatch: the handler and the operand stack
// height to restore when it catches.
type catchMark struct {
	handler int
	height  int
}

// Frame is one activation. Locals occupy Stack[Base:Base+Prog.SlotCount],
// operands live above them.
type Frame struct {
	Prog    *steps.Program
	PC      int
	Base    int
	Method  *types.Method
	catches []catchMark
	// cur is the pc of the step being executed, for spans and backtraces.
	cur int
}

func (f *Frame) span() source.Span {
	if f.cur >= 0 && f.cur < len(f.Prog.Steps) {
		return f.Prog.Steps[f.cur].Span
	}
	return f.Prog.Span
}

// resumed is a delivered Suspension result waiting for the next step.
type resumed struct {
	value Value
	err   error
	push  bool
}

// Thread is a logical thread multiplexed by the pool.
type Thread struct {
	ID     int
	Name   string
	Object *Object // the Thread object, nil for main

	state  ThreadState
	frames []*Frame
	stack  []Value

	pending *Suspension
	resume  *resumed
	sleep   *Suspension
	wakeAt  time.Time
	joiners []*Suspension

	skipBreak   bool
	sinceResume int

	// scratch threads run evaluations: no hooks, no breakpoints.
	scratch bool
	result  Value
	locals  []Value
	failure *Uncaught
}

func (t *Thread) State() ThreadState { return t.state }
func (t *Thread) Depth() int         { return len(t.frames) }

// Top returns the innermost frame, nil when the thread has finished.
func (t *Thread) Top() *Frame {
	if len(t.frames) == 0 {
		return nil
	}
	return t.frames[len(t.frames)-1]
}

// FrameInfo describes a frame for hosts.
type FrameInfo struct {
	Name string
	Span source.Span
	PC   int
}

// Frames lists frames from the innermost outwards.
func (t *Thread) Frames() []FrameInfo {
	out := make([]FrameInfo, 0, len(t.frames))
	for i := len(t.frames) - 1; i >= 0; i-- {
		f := t.frames[i]
		out = append(out, FrameInfo{Name: f.Prog.Name, Span: f.span(), PC: f.cur})
	}
	return out
}

// Local is a variable visible in a frame.
type Local struct {
	Name  string
	Type  types.TypeID
	Value Value
}

// Locals returns the variables visible in frame depth (0 = innermost) at
// its current position.
func (t *Thread) Locals(depth int) []Local {
	i := len(t.frames) - 1 - depth
	if i < 0 || i >= len(t.frames) {
		return nil
	}
	f := t.frames[i]
	var out []Local
	for _, v := range f.Prog.Symbols.At(f.cur) {
		if f.Base+v.Slot < len(t.stack) {
			out = append(out, Local{Name: v.Name, Type: v.Type, Value: t.stack[f.Base+v.Slot]})
		}
	}
	return out
}

func (t *Thread) push(v Value) { t.stack = append(t.stack, v) }

func (t *Thread) pop() Value {
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v
}

func (t *Thread) peek() Value { return t.stack[len(t.stack)-1] }

// popN removes the top n values and returns a copy of them.
func (t *Thread) popN(n int) []Value {
	at := len(t.stack) - n
	out := make([]Value, n)
	copy(out, t.stack[at:])
	t.stack = t.stack[:at]
	return out
}

// pushFrame activates prog with its argc arguments already on the stack.
func (t *Thread) pushFrame(prog *steps.Program, m *types.Method, argc int) *Frame {
	base := len(t.stack) - argc
	for len(t.stack) < base+prog.SlotCount {
		t.stack = append(t.stack, Value{})
	}
	f := &Frame{Prog: prog, Base: base, Method: m, cur: -1}
	t.frames = append(t.frames, f)
	return f
}

func (t *Thread) popFrame() *Frame {
	f := t.Top()
	t.frames = t.frames[:len(t.frames)-1]
	t.stack = t.stack[:f.Base]
	return f
}
