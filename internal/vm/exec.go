package vm

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"

	"jstep/internal/source"
	"jstep/internal/steps"
	"jstep/internal/types"
)

// singleStep executes one step of t. It reports false when nothing ran
// because the thread paused or had already finished.
func (p *ThreadPool) singleStep(t *Thread) bool {
	p.current = t
	if t.resume != nil && !p.applyResume(t) {
		p.count(t)
		return true
	}
	f := t.Top()
	if f == nil {
		p.finish(t)
		return false
	}
	if f.PC < len(f.Prog.Steps) && p.shouldPause(t, f) {
		return false
	}
	p.execStep(t, f)
	return true
}

// multiStep executes the multi-step starting at the current pc. Pause
// checks happen at its first step only.
func (p *ThreadPool) multiStep(t *Thread) bool {
	f := t.Top()
	if !p.singleStep(t) {
		return false
	}
	for t.state == ThreadRunning && p.state == PoolRunning && t.resume == nil {
		g := t.Top()
		if g == nil || g != f || g.PC >= len(g.Prog.Steps) || g.Prog.IsCut(g.PC) {
			break
		}
		p.execStep(t, g)
	}
	return true
}

func (p *ThreadPool) shouldPause(t *Thread, f *Frame) bool {
	if t.scratch {
		return false
	}
	s := f.Prog.Steps[f.PC]
	if s.Has(steps.FlagBreakpoint) && !t.skipBreak {
		p.current = t
		p.pause(PauseEvent{Thread: t, Reason: PauseBreakpoint, Span: s.Span})
		return true
	}
	st := p.step
	if st.kind == stepNone || st.thread != t || !s.Has(steps.FlagStmtStart) || t.sinceResume == 0 {
		return false
	}
	d := len(t.frames)
	hit := st.kind == stepInto ||
		(st.kind == stepOver && d <= st.depth) ||
		(st.kind == stepOut && d < st.depth)
	if hit {
		p.current = t
		p.pause(PauseEvent{Thread: t, Reason: PauseStep, Span: s.Span})
	}
	return hit
}

func (p *ThreadPool) count(t *Thread) {
	t.skipBreak = false
	t.sinceResume++
	p.steps++
}

// execStep runs the step at f.PC and recovers interpreter defects into a
// fault of the thread.
func (p *ThreadPool) execStep(t *Thread, f *Frame) {
	defer func() {
		if r := recover(); r != nil {
			p.fault(t, fmt.Errorf("internal error at %s pc %d: %v", f.Prog.Name, f.cur, r))
		}
	}()
	p.count(t)
	if f.PC >= len(f.Prog.Steps) {
		p.doReturn(t, false)
		return
	}
	p.traceStep(t, f)
	p.exec(t, f)
}

func (p *ThreadPool) exec(t *Thread, f *Frame) {
	pc := f.PC
	s := f.Prog.Steps[pc]
	f.cur = pc
	f.PC = pc + 1

	switch s.Op {
	case steps.OpNop:

	case steps.OpPushConst:
		t.push(constValue(f.Prog.Consts[s.A]))
	case steps.OpPushNull:
		t.push(Null())
	case steps.OpLoadLocal:
		t.push(t.stack[f.Base+int(s.A)])
	case steps.OpStoreLocal:
		if s.Has(steps.FlagKeep) {
			t.stack[f.Base+int(s.A)] = t.peek()
		} else {
			t.stack[f.Base+int(s.A)] = t.pop()
		}
	case steps.OpPop:
		t.pop()
	case steps.OpDup:
		t.push(t.peek())
	case steps.OpDup2:
		n := len(t.stack)
		t.push(t.stack[n-2])
		t.push(t.stack[n-1])
	case steps.OpDupX1:
		b := t.pop()
		a := t.pop()
		t.push(b)
		t.push(a)
		t.push(b)
	case steps.OpDupX2:
		c := t.pop()
		b := t.pop()
		a := t.pop()
		t.push(c)
		t.push(a)
		t.push(b)
		t.push(c)

	case steps.OpLoadField:
		o := t.pop()
		if o.IsNull() {
			p.throwBuiltin(t, "NullPointerException", "cannot read a field of null")
			return
		}
		t.push(o.Object().Attrs[s.A])
	case steps.OpStoreField:
		v := t.pop()
		o := t.pop()
		if o.IsNull() {
			p.throwBuiltin(t, "NullPointerException", "cannot assign a field of null")
			return
		}
		o.Object().Attrs[s.A] = v
	case steps.OpLoadStatic:
		t.push(p.staticsOf(types.ClassID(s.A))[s.B])
	case steps.OpStoreStatic:
		v := t.peek()
		if !s.Has(steps.FlagKeep) {
			t.pop()
		}
		p.staticsOf(types.ClassID(s.A))[s.B] = v
	case steps.OpLoadComputed:
		p.loadComputed(t, s)

	case steps.OpArrayLoad:
		idx := t.pop()
		a := t.pop()
		if arr, ok := p.checkIndex(t, a, idx); ok {
			t.push(arr.Items[idx.AsInt()])
		}
	case steps.OpArrayStore:
		v := t.pop()
		idx := t.pop()
		a := t.pop()
		if arr, ok := p.checkIndex(t, a, idx); ok {
			arr.Items[idx.AsInt()] = v
		}
	case steps.OpArrayLength:
		a := t.pop()
		if a.IsNull() {
			p.throwBuiltin(t, "NullPointerException", "cannot read the array length because it is null")
			return
		}
		n, err := safecast.Conv[int32](len(a.Array().Items))
		if err != nil {
			p.fault(t, fmt.Errorf("array length: %w", err))
			return
		}
		t.push(Int(n))
	case steps.OpNewArray:
		dims := make([]int32, s.B)
		for i := int(s.B) - 1; i >= 0; i-- {
			dims[i] = t.pop().AsInt()
		}
		for _, d := range dims {
			if d < 0 {
				p.throwBuiltin(t, "NegativeArraySizeException", "%d", d)
				return
			}
		}
		t.push(Arr(p.heap.newMulti(types.TypeID(s.A), dims)))
	case steps.OpArrayLit:
		items := t.popN(int(s.B))
		arr := p.heap.newArray(types.TypeID(s.A), 0)
		arr.Items = items
		t.push(Arr(arr))

	case steps.OpNew:
		c := p.tbl.ClassOf(types.TypeID(s.A))
		if c == nil {
			panic(fmt.Sprintf("new of non-class type %d", s.A))
		}
		t.push(Obj(p.heap.newObject(c)))
	case steps.OpBinary:
		b := t.pop()
		a := t.pop()
		if v, ok := p.binary(t, steps.BinOp(s.A), steps.NumKind(s.B), a, b); ok {
			t.push(v)
		}
	case steps.OpUnary:
		t.push(unary(steps.UnOp(s.A), steps.NumKind(s.B), t.pop()))
	case steps.OpConvert:
		t.push(convert(t.pop(), steps.NumKind(s.B)))
	case steps.OpToString:
		p.toString(t, types.MethodID(s.A), s.Span)
	case steps.OpCheckCast:
		v := t.peek()
		if !v.IsNull() && !p.InstanceOf(v, types.TypeID(s.A)) {
			p.throwBuiltin(t, "ClassCastException", "class %s cannot be cast to class %s",
				p.typeName(v), p.tbl.String(types.TypeID(s.A)))
		}
	case steps.OpInstanceOf:
		v := t.pop()
		t.push(Bool(!v.IsNull() && p.InstanceOf(v, types.TypeID(s.A))))

	case steps.OpJump:
		f.PC = int(s.A)
	case steps.OpJumpIfFalse:
		if !t.pop().AsBool() {
			f.PC = int(s.A)
		}
	case steps.OpJumpIfTrue:
		if t.pop().AsBool() {
			f.PC = int(s.A)
		}

	case steps.OpCall:
		m := p.tbl.Method(types.MethodID(s.A))
		if m == nil {
			panic(fmt.Sprintf("call of unknown method %d", s.A))
		}
		argc := int(s.B)
		if !m.Is(types.MethodStatic) && t.stack[len(t.stack)-argc].IsNull() {
			t.popN(argc)
			p.throwBuiltin(t, "NullPointerException", "cannot invoke %s on null", m.Name)
			return
		}
		p.invoke(t, m, argc, s.Span)
	case steps.OpCallVirtual:
		argc := int(s.B)
		recv := t.stack[len(t.stack)-argc]
		if recv.IsNull() {
			name := "method"
			if m := p.tbl.Method(types.MethodID(s.A)); m != nil {
				name = m.Name + "()"
			}
			t.popN(argc)
			p.throwBuiltin(t, "NullPointerException", "cannot invoke %s on null", name)
			return
		}
		impl := p.tbl.Dispatch(p.ClassOf(recv), types.MethodID(s.A))
		m := p.tbl.Method(impl)
		if m == nil {
			panic(fmt.Sprintf("no implementation of method %d", s.A))
		}
		p.invoke(t, m, argc, s.Span)
	case steps.OpReturn:
		p.doReturn(t, false)
	case steps.OpReturnValue:
		p.doReturn(t, true)
	case steps.OpThrow:
		p.throw(t, t.pop())

	case steps.OpEnterCatch:
		f.catches = append(f.catches, catchMark{handler: int(s.A), height: len(t.stack)})
	case steps.OpLeaveCatch:
		if n := len(f.catches); n > 0 {
			f.catches = f.catches[:n-1]
		}

	default:
		panic(fmt.Sprintf("unknown op %s", s.Op))
	}
}

func constValue(c steps.Const) Value {
	switch c.Kind {
	case steps.ConstDouble:
		return Double(c.F)
	case steps.ConstBool:
		return Bool(c.N != 0)
	case steps.ConstChar:
		return Char(uint16(c.N)) // #nosec G115
	case steps.ConstString:
		return Str(c.S)
	}
	return Int(int32(c.N)) // #nosec G115 -- литералы проверены парсером
}

func (p *ThreadPool) staticsOf(id types.ClassID) []Value {
	c := p.tbl.Class(id)
	if c != nil && c.Origin != types.NoClassID {
		c = p.tbl.Class(c.Origin)
		id = c.ID
	}
	vals, ok := p.statics[id]
	if !ok {
		vals = make([]Value, len(c.Statics))
		for i, a := range c.Statics {
			vals[i] = Zero(p.tbl, a.Type)
		}
		p.statics[id] = vals
	}
	return vals
}

// Static reads a static attribute; hosts use it to inspect state.
func (p *ThreadPool) Static(a *types.Attribute) Value {
	vals := p.staticsOf(a.Owner)
	if a.Index < len(vals) {
		return vals[a.Index]
	}
	return Null()
}

func (p *ThreadPool) loadComputed(t *Thread, s steps.Step) {
	fn := p.native(types.NativeID(s.A))
	if fn == nil {
		panic(fmt.Sprintf("unknown computed attribute %d", s.A))
	}
	c := &Call{Pool: p, Thread: t, Span: s.Span}
	if s.B == 1 {
		recv := t.pop()
		if recv.IsNull() {
			p.throwBuiltin(t, "NullPointerException", "cannot read a field of null")
			return
		}
		c.Args = []Value{recv}
	}
	v, err := fn(c)
	if err != nil {
		p.nativeError(t, err)
		return
	}
	t.push(v)
}

func (p *ThreadPool) checkIndex(t *Thread, a, idx Value) (*Array, bool) {
	if a.IsNull() {
		p.throwBuiltin(t, "NullPointerException", "cannot load from a null array")
		return nil, false
	}
	arr := a.Array()
	i := idx.AsInt()
	if i < 0 || int(i) >= len(arr.Items) {
		p.throwBuiltin(t, "ArrayIndexOutOfBoundsException", "Index %d out of bounds for length %d", i, len(arr.Items))
		return nil, false
	}
	return arr, true
}

// ClassOf returns the class used for dispatch on v.
func (p *ThreadPool) ClassOf(v Value) *types.Class {
	switch v.Kind {
	case VKObject:
		return v.Object().Class
	case VKString:
		return p.stringClass
	}
	return p.objectClass
}

func (p *ThreadPool) typeName(v Value) string {
	switch v.Kind {
	case VKObject:
		return v.Object().Class.Name
	case VKArray:
		return p.tbl.String(v.Array().Type)
	}
	return v.Kind.String()
}

// InstanceOf checks v against an erased type. Null is never an instance.
func (p *ThreadPool) InstanceOf(v Value, ty types.TypeID) bool {
	bt := p.tbl.Builtins()
	if v.IsNull() {
		return false
	}
	if ty == bt.Object {
		return true
	}
	switch p.tbl.Kind(ty) {
	case types.KindInt:
		return v.Kind == VKInt
	case types.KindDouble:
		return v.Kind == VKDouble
	case types.KindBool:
		return v.Kind == VKBool
	case types.KindChar:
		return v.Kind == VKChar
	case types.KindString:
		return v.Kind == VKString
	case types.KindArray:
		return v.Kind == VKArray && p.tbl.IsAssignable(v.Array().Type, ty)
	}
	switch v.Kind {
	case VKObject, VKString:
		return p.tbl.IsSubclass(p.ClassOf(v), p.tbl.ClassOf(ty))
	}
	return false
}

// invoke calls m with its argc arguments on the stack: natives run
// immediately, compiled methods get a frame.
func (p *ThreadPool) invoke(t *Thread, m *types.Method, argc int, sp source.Span) {
	if m.Native != types.NoNativeID {
		p.callNative(t, m, argc, sp)
		return
	}
	prog := p.progs.Method(m.Impl())
	if prog == nil {
		panic(fmt.Sprintf("no code for %s", m.Name))
	}
	if len(t.frames) >= p.maxDepth {
		t.popN(argc)
		p.throwBuiltin(t, "StackOverflowError", "")
		return
	}
	t.pushFrame(prog, m, argc)
}

func (p *ThreadPool) callNative(t *Thread, m *types.Method, argc int, sp source.Span) {
	fn := p.native(m.Native)
	if fn == nil {
		panic(fmt.Sprintf("native %d of %s is not registered", m.Native, m.Name))
	}
	c := &Call{Pool: p, Thread: t, Method: m, Args: t.popN(argc), Span: sp}
	v, err := fn(c)
	switch {
	case err == nil:
		if m.Return != types.NoTypeID {
			t.push(v)
		}
	case errors.Is(err, Suspended):
	case errors.Is(err, errTailCall):
		tm := p.tbl.Method(c.tail)
		if tm == nil {
			panic(fmt.Sprintf("tail call of unknown method %d", c.tail))
		}
		for _, a := range c.tailArgs {
			t.push(a)
		}
		p.invoke(t, tm, len(c.tailArgs), sp)
	default:
		p.nativeError(t, err)
	}
}

func (p *ThreadPool) nativeError(t *Thread, err error) {
	var te *ThrowError
	if errors.As(err, &te) {
		p.throw(t, te.Value)
		return
	}
	p.fault(t, err)
}

// doReturn pops the frame; the result goes to the caller's stack.
func (p *ThreadPool) doReturn(t *Thread, withValue bool) {
	var v Value
	if withValue {
		v = t.pop()
	}
	f := t.Top()
	if f.Prog.Kind == steps.KindEval {
		n := min(f.Prog.SlotCount, len(t.stack)-f.Base)
		t.locals = append([]Value(nil), t.stack[f.Base:f.Base+n]...)
	}
	t.popFrame()
	if len(t.frames) == 0 {
		t.result = v
		p.finish(t)
		return
	}
	if withValue {
		t.push(v)
	}
}

// toString converts the top of the stack to a String. Objects dispatch
// toString; compiled overrides run in a new frame.
func (p *ThreadPool) toString(t *Thread, objToString types.MethodID, sp source.Span) {
	v := t.peek()
	if s, ok := v.Primitive(); ok {
		t.stack[len(t.stack)-1] = Str(s)
		return
	}
	m := p.tbl.Method(p.tbl.Dispatch(p.ClassOf(v), objToString))
	if m == nil {
		t.stack[len(t.stack)-1] = Str(DefaultString(p.tbl, v))
		return
	}
	p.invoke(t, m, 1, sp)
}

func (p *ThreadPool) binary(t *Thread, op steps.BinOp, k steps.NumKind, a, b Value) (Value, bool) {
	switch k {
	case steps.NumString:
		switch op {
		case steps.BinAdd:
			as, _ := a.Primitive()
			bs, _ := b.Primitive()
			return Str(as + bs), true
		case steps.BinEq:
			return Bool(Same(a, b)), true
		case steps.BinNe:
			return Bool(!Same(a, b)), true
		}
	case steps.NumRef:
		switch op {
		case steps.BinEq:
			return Bool(Same(a, b)), true
		case steps.BinNe:
			return Bool(!Same(a, b)), true
		}
	case steps.NumBool:
		x, y := a.AsBool(), b.AsBool()
		switch op {
		case steps.BinEq:
			return Bool(x == y), true
		case steps.BinNe:
			return Bool(x != y), true
		case steps.BinAnd:
			return Bool(x && y), true
		case steps.BinOr:
			return Bool(x || y), true
		case steps.BinXor:
			return Bool(x != y), true
		}
	case steps.NumDouble:
		return doubleBinary(op, a.AsDouble(), b.AsDouble())
	default:
		x, y := a.AsInt(), b.AsInt()
		if (op == steps.BinDiv || op == steps.BinMod) && y == 0 {
			p.throwBuiltin(t, "ArithmeticException", "/ by zero")
			return Value{}, false
		}
		return intBinary(op, x, y)
	}
	panic(fmt.Sprintf("binary %s on %s", op, k))
}

func intBinary(op steps.BinOp, x, y int32) (Value, bool) {
	switch op {
	case steps.BinAdd:
		return Int(x + y), true
	case steps.BinSub:
		return Int(x - y), true
	case steps.BinMul:
		return Int(x * y), true
	case steps.BinDiv:
		if x == math.MinInt32 && y == -1 {
			return Int(x), true
		}
		return Int(x / y), true
	case steps.BinMod:
		if y == -1 {
			return Int(0), true
		}
		return Int(x % y), true
	case steps.BinShl:
		return Int(x << (uint32(y) & 31)), true
	case steps.BinShr:
		return Int(x >> (uint32(y) & 31)), true
	case steps.BinLt:
		return Bool(x < y), true
	case steps.BinLe:
		return Bool(x <= y), true
	case steps.BinGt:
		return Bool(x > y), true
	case steps.BinGe:
		return Bool(x >= y), true
	case steps.BinEq:
		return Bool(x == y), true
	case steps.BinNe:
		return Bool(x != y), true
	case steps.BinAnd:
		return Int(x & y), true
	case steps.BinXor:
		return Int(x ^ y), true
	case steps.BinOr:
		return Int(x | y), true
	}
	panic(fmt.Sprintf("int binary %s", op))
}

func doubleBinary(op steps.BinOp, x, y float64) (Value, bool) {
	switch op {
	case steps.BinAdd:
		return Double(x + y), true
	case steps.BinSub:
		return Double(x - y), true
	case steps.BinMul:
		return Double(x * y), true
	case steps.BinDiv:
		return Double(x / y), true
	case steps.BinMod:
		return Double(math.Mod(x, y)), true
	case steps.BinLt:
		return Bool(x < y), true
	case steps.BinLe:
		return Bool(x <= y), true
	case steps.BinGt:
		return Bool(x > y), true
	case steps.BinGe:
		return Bool(x >= y), true
	case steps.BinEq:
		return Bool(x == y), true
	case steps.BinNe:
		return Bool(x != y), true
	}
	panic(fmt.Sprintf("double binary %s", op))
}

func unary(op steps.UnOp, k steps.NumKind, v Value) Value {
	switch op {
	case steps.UnNot:
		return Bool(!v.AsBool())
	case steps.UnBitNot:
		return Int(^v.AsInt())
	}
	if k == steps.NumDouble {
		return Double(-v.AsDouble())
	}
	return Int(-v.AsInt())
}

// convert narrows or widens a primitive like a Java cast.
func convert(v Value, to steps.NumKind) Value {
	switch to {
	case steps.NumInt:
		return Int(v.AsInt())
	case steps.NumDouble:
		return Double(v.AsDouble())
	case steps.NumChar:
		return Char(uint16(v.AsInt())) // #nosec G115 -- (char) отбрасывает старшие биты
	case steps.NumBool:
		return Bool(v.AsBool())
	}
	return v
}
