package vm

import (
	"errors"
	"fmt"

	"jstep/internal/steps"
)

var (
	ErrEvalLimit    = errors.New("evaluation did not finish within the step limit")
	ErrEvalBlocking = errors.New("evaluation tried to block")
	ErrNoFrame      = errors.New("no paused frame")
)

const defaultEvalLimit = 100000

// Eval runs prog, compiled against the innermost frame of the current
// thread, on a scratch thread. The frame's locals are copied in and
// assignments are written back. Breakpoints and hooks do not fire.
func (p *ThreadPool) Eval(prog *steps.Program, limit int) (Value, error) {
	if p.state != PoolPaused && p.state != PoolStopped && p.state != PoolWaiting {
		return Null(), ErrNotPaused
	}
	src := p.current
	if src == nil || src.Top() == nil {
		return Null(), ErrNoFrame
	}
	if limit <= 0 {
		limit = defaultEvalLimit
	}
	f := src.Top()
	n := min(f.Prog.SlotCount, len(src.stack)-f.Base)

	t := &Thread{ID: -1, Name: src.Name, scratch: true, state: ThreadRunning}
	t.stack = make([]Value, 0, prog.SlotCount+8)
	t.stack = append(t.stack, src.stack[f.Base:f.Base+n]...)
	t.pushFrame(prog, f.Method, len(t.stack))

	prev := p.current
	defer func() { p.current = prev }()
	for i := 0; t.state == ThreadRunning; i++ {
		if i >= limit {
			return Null(), ErrEvalLimit
		}
		p.singleStep(t)
	}
	switch {
	case t.failure != nil:
		return Null(), t.failure
	case t.state != ThreadStopped:
		return Null(), ErrEvalBlocking
	}
	if len(t.locals) > 0 {
		copy(src.stack[f.Base:f.Base+n], t.locals[:min(n, len(t.locals))])
	}
	return t.result, nil
}

// Describe renders a value for hosts: strings quoted, objects by class.
func (p *ThreadPool) Describe(v Value) string {
	switch v.Kind {
	case VKString:
		return fmt.Sprintf("%q", v.S)
	case VKChar:
		return fmt.Sprintf("'%c'", rune(v.N))
	case VKObject:
		o := v.Object()
		if msg, ok := p.Message(o); ok {
			return fmt.Sprintf("%s@%x(%q)", o.Class.Name, o.id, msg)
		}
		if o.Class.Kind.IsClassLike() && len(o.Class.EnumConsts) > 0 {
			if a := p.tbl.Attr(o.Class, "$name"); a != nil && a.Index < len(o.Attrs) {
				return o.Attrs[a.Index].S
			}
		}
	case VKArray:
		a := v.Array()
		return fmt.Sprintf("%s[%d]@%x", p.tbl.String(p.tbl.Elem(a.Type)), len(a.Items), a.id)
	}
	return DefaultString(p.tbl, v)
}
