package vm

import (
	"errors"

	"jstep/internal/types"
)

// Suspension is the continuation slot of a parked thread. Resume is the
// only method safe to call from other goroutines.
type Suspension struct {
	Prompt string
	// Decode, when set, converts the resumed value on the pool goroutine
	// before it reaches the thread. An error is rethrown like a Resume error.
	Decode func(p *ThreadPool, v Value) (Value, error)

	pool   *ThreadPool
	thread *Thread
	push   bool
	done   bool // под pool.mu
}

type resumeMsg struct {
	s     *Suspension
	value Value
	err   error
}

// Thread returns the parked thread.
func (s *Suspension) Thread() *Thread { return s.thread }

// Resume delivers the result of the blocking call. It is queued and takes
// effect on the pool's next Poll. A non-nil err is rethrown in the thread
// as an exception. A second resume, or any resume after Stop, is discarded
// and reported as false.
func (s *Suspension) Resume(v Value, err error) bool {
	p := s.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.done || p.stopped {
		return false
	}
	s.done = true
	p.inbox = append(p.inbox, resumeMsg{s: s, value: v, err: err})
	return true
}

func (p *ThreadPool) suspend(t *Thread, state ThreadState, prompt string, m *types.Method) *Suspension {
	s := &Suspension{Prompt: prompt, pool: p, thread: t}
	if m != nil {
		s.push = m.Return != types.NoTypeID
	}
	t.pending = s
	p.setThreadState(t, state)
	if state == ThreadWaitingForInput && p.hooks.OnInput != nil && !t.scratch {
		p.hooks.OnInput(s)
	}
	return s
}

// deliver applies a resume message on the pool goroutine.
func (p *ThreadPool) deliver(m resumeMsg) {
	t := m.s.thread
	if t.state == ThreadStopped || t.pending != m.s {
		return
	}
	t.pending = nil
	if t.sleep == m.s {
		t.sleep = nil
	}
	v, err := m.value, m.err
	if err == nil && m.s.Decode != nil {
		v, err = m.s.Decode(p, v)
	}
	t.resume = &resumed{value: v, err: err, push: m.s.push}
	if p.state == PoolPaused {
		p.setThreadState(t, ThreadPaused)
	} else {
		p.setThreadState(t, ThreadRunning)
	}
}

// applyResume runs at the start of the next step of a resumed thread. It
// reports false when the step was consumed by rethrowing an error.
func (p *ThreadPool) applyResume(t *Thread) bool {
	r := t.resume
	t.resume = nil
	if r.err != nil {
		var te *ThrowError
		if errors.As(r.err, &te) {
			p.throw(t, te.Value)
		} else {
			p.throw(t, p.NewThrowable("RuntimeException", r.err.Error()))
		}
		return false
	}
	if r.push {
		t.push(r.value)
	}
	return true
}
