package rtlib

import (
	"time"

	"jstep/internal/types"
	"jstep/internal/vm"
)

// threadState is the native part of a Thread object.
type threadState struct {
	target vm.Value // Runnable или null
	thread *vm.Thread
}

func stateOf(o *vm.Object) *threadState {
	if o == nil {
		return nil
	}
	st, ok := o.Native.(*threadState)
	if !ok {
		st = &threadState{}
		o.Native = st
	}
	return st
}

func declareThreads(d *decl) {
	bt := d.tbl.Builtins()

	rn := d.class("Runnable", types.KindInterface, types.NoTypeID, types.ClassAbstract)
	runnableRun := d.abstract(rn, "run", types.NoTypeID)

	th := d.class("Thread", types.KindClass, d.object(), 0)
	th.Interfaces = append(th.Interfaces, rn.Type)
	d.ctor(th, func(c *vm.Call) (vm.Value, error) {
		stateOf(c.This())
		return vm.Null(), nil
	})
	d.ctor(th, func(c *vm.Call) (vm.Value, error) {
		stateOf(c.This()).target = arg(c, 1)
		return vm.Null(), nil
	}, param("target", rn.Type))

	threadRun := d.method(th, "run", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		target := stateOf(c.This()).target
		if target.IsNull() {
			return vm.Null(), nil
		}
		impl := c.Types().Dispatch(target.Object().Class, runnableRun.ID)
		return vm.Null(), c.TailCall(impl, target)
	})
	d.method(th, "start", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		o := c.This()
		st := stateOf(o)
		if st.thread != nil {
			return vm.Null(), c.Throw("IllegalStateException", "thread already started")
		}
		impl := c.Types().Dispatch(o.Class, threadRun.ID)
		t, err := c.Spawn(impl, vm.Obj(o))
		if err != nil {
			return vm.Null(), err
		}
		t.Object = o
		st.thread = t
		return vm.Null(), nil
	})
	d.method(th, "join", types.NoTypeID, types.MethodBlocking, func(c *vm.Call) (vm.Value, error) {
		return vm.Null(), c.Join(stateOf(c.This()).thread)
	})
	d.method(th, "getName", bt.String, 0, func(c *vm.Call) (vm.Value, error) {
		if t := stateOf(c.This()).thread; t != nil {
			return vm.Str(t.Name), nil
		}
		return vm.Str("Thread"), nil
	})
	d.method(th, "isAlive", bt.Bool, 0, func(c *vm.Call) (vm.Value, error) {
		t := stateOf(c.This()).thread
		return vm.Bool(t != nil && t.State() != vm.ThreadStopped), nil
	})
	d.method(th, "sleep", types.NoTypeID, types.MethodStatic|types.MethodBlocking, func(c *vm.Call) (vm.Value, error) {
		ms := arg(c, 0).AsInt()
		if ms < 0 {
			return vm.Null(), c.Throw("IllegalArgumentException", "timeout value is negative")
		}
		return vm.Null(), c.Sleep(time.Duration(ms) * time.Millisecond)
	}, param("millis", bt.Int))
	d.static(th, "currentThread", th.Type, func(c *vm.Call) (vm.Value, error) {
		t := c.Thread
		if t.Object == nil {
			// main и потоки без объекта получают его лениво
			t.Object = c.Pool.NewObject(th)
			stateOf(t.Object).thread = t
		}
		return vm.Obj(t.Object), nil
	})
}
