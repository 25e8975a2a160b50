package vm

import (
	"errors"
	"fmt"
	"time"

	"jstep/internal/source"
	"jstep/internal/types"
)

// NativeFunc implements a runtime-library method or computed attribute.
// Returning Suspended parks the calling thread until its Suspension is
// resumed; a *ThrowError raises an exception in the calling thread.
type NativeFunc func(c *Call) (Value, error)

var (
	// Suspended is returned by natives that parked the calling thread.
	Suspended = errors.New("vm: thread suspended")

	errTailCall = errors.New("vm: tail call")
)

// ThrowError carries an exception object out of a native.
type ThrowError struct {
	Value Value
}

func (e *ThrowError) Error() string {
	if o := e.Value.Object(); o != nil {
		return "exception " + o.Class.Name
	}
	return "exception"
}

// Call is the context of one native invocation.
type Call struct {
	Pool   *ThreadPool
	Thread *Thread
	Method *types.Method // nil for computed attributes
	// Args holds the receiver first for instance methods.
	Args []Value
	Span source.Span

	tail     types.MethodID
	tailArgs []Value
}

// Receiver is Args[0] of an instance call.
func (c *Call) Receiver() Value {
	if len(c.Args) == 0 {
		return Null()
	}
	return c.Args[0]
}

// This returns the receiver object, nil for strings and primitives.
func (c *Call) This() *Object { return c.Receiver().Object() }

func (c *Call) Types() *types.Table { return c.Pool.tbl }

// Throw builds an exception of the named library class and returns it as
// an error to be returned by the native.
func (c *Call) Throw(class, msg string) error {
	return &ThrowError{Value: c.Pool.NewThrowable(class, msg)}
}

// TailCall asks the interpreter to replace the native with a call of m;
// the result of m becomes the result of the native.
func (c *Call) TailCall(m types.MethodID, args ...Value) error {
	c.tail = m
	c.tailArgs = args
	return errTailCall
}

// PauseForInput parks the calling thread in WaitingForInput. The native
// must return Suspended right after; the value later passed to Resume is
// its result.
func (c *Call) PauseForInput(prompt string) *Suspension {
	return c.Pool.suspend(c.Thread, ThreadWaitingForInput, prompt, c.Method)
}

// Sleep parks the calling thread until the pool clock reaches now+d.
func (c *Call) Sleep(d time.Duration) error {
	s := c.Pool.suspend(c.Thread, ThreadSleeping, "", c.Method)
	c.Thread.wakeAt = c.Pool.clock.Now().Add(d)
	c.Thread.sleep = s
	return Suspended
}

// Join parks the calling thread until target stops. A stopped target
// returns immediately.
func (c *Call) Join(target *Thread) error {
	if target == nil || target.state == ThreadStopped || target == c.Thread {
		return nil
	}
	s := c.Pool.suspend(c.Thread, ThreadJoining, "", c.Method)
	target.joiners = append(target.joiners, s)
	return Suspended
}

// Spawn starts a thread running method m (dispatched on args[0] when it is
// an instance method).
func (c *Call) Spawn(m types.MethodID, args ...Value) (*Thread, error) {
	return c.Pool.spawn("", m, args)
}

func (c *Call) String(v Value) string { return DefaultString(c.Pool.tbl, v) }

// Errorf reports an internal native failure; it stops the thread as a
// fault rather than raising a catchable exception.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("native: "+format, args...)
}
