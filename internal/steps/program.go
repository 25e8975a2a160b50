// Package steps defines the compiled form executed by the interpreter:
// programs made of position-tagged atomic Steps.
package steps

import (
	"jstep/internal/source"
	"jstep/internal/symbols"
	"jstep/internal/types"
)

type Kind uint8

const (
	KindScript Kind = iota
	KindMethod
	KindCtor
	KindClassInit
	KindEval
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindMethod:
		return "method"
	case KindCtor:
		return "ctor"
	case KindClassInit:
		return "clinit"
	case KindEval:
		return "eval"
	}
	return "?"
}

type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstDouble
	ConstBool
	ConstChar
	ConstString
)

type Const struct {
	Kind ConstKind `msgpack:"k"`
	N    int64     `msgpack:"n,omitempty"`
	F    float64   `msgpack:"f,omitempty"`
	S    string    `msgpack:"s,omitempty"`
}

// Clause is one catch clause: Types are erased class types; the caught
// exception is stored into Slot before jumping to Target.
type Clause struct {
	Types  []types.TypeID `msgpack:"t"`
	Target int            `msgpack:"j"`
	Slot   int            `msgpack:"s"`
}

type Handler struct {
	Clauses []Clause `msgpack:"c"`
}

// Program is a compiled method, constructor, class initializer or script.
type Program struct {
	Name     string         `msgpack:"name"`
	Kind     Kind           `msgpack:"kind"`
	Module   uint32         `msgpack:"mod"`
	File     source.FileID  `msgpack:"file"`
	Method   types.MethodID `msgpack:"method"`
	Class    types.ClassID  `msgpack:"class"`
	Steps    []Step         `msgpack:"steps"`
	Multi    []Multi        `msgpack:"multi"`
	Consts   []Const        `msgpack:"consts"`
	Handlers []Handler      `msgpack:"handlers"`
	// SlotCount covers parameters (this included) and locals.
	SlotCount  int              `msgpack:"slots"`
	ParamCount int              `msgpack:"params"`
	Returns    bool             `msgpack:"ret"`
	Symbols    symbols.Snapshot `msgpack:"sym"`
	Span       source.Span      `msgpack:"span"`

	cut []bool
}

// Finish computes the multi-step partition. It must be called once the
// Steps are final.
func (p *Program) Finish() {
	p.Multi = Coalesce(p.Steps, p.Handlers)
	p.index()
}

func (p *Program) index() {
	p.cut = make([]bool, len(p.Steps)+1)
	for _, m := range p.Multi {
		p.cut[m.Begin] = true
	}
	p.cut[len(p.Steps)] = true
}

// IsCut reports whether pc begins a multi-step.
func (p *Program) IsCut(pc int) bool {
	if p.cut == nil {
		p.index()
	}
	if pc < 0 || pc >= len(p.cut) {
		return true
	}
	return p.cut[pc]
}

// Coalesce partitions steps into multi-steps. A new multi-step starts at
// every statement start, jump or handler target, and after every control
// transfer.
func Coalesce(code []Step, handlers []Handler) []Multi {
	if len(code) == 0 {
		return nil
	}
	starts := make([]bool, len(code)+1)
	starts[0] = true
	for i, s := range code {
		if s.Has(FlagStmtStart) {
			starts[i] = true
		}
		if s.Op.IsJump() && int(s.A) <= len(code) {
			starts[s.A] = true
		}
		if s.Op.EndsBlock() {
			starts[i+1] = true
		}
	}
	for _, h := range handlers {
		for _, c := range h.Clauses {
			if c.Target <= len(code) {
				starts[c.Target] = true
			}
		}
	}
	var out []Multi
	begin := 0
	for i := 1; i <= len(code); i++ {
		if starts[i] {
			out = append(out, Multi{Begin: begin, End: i})
			begin = i
		}
	}
	return out
}

// AddConst interns a constant into the pool.
func (p *Program) AddConst(c Const) int32 {
	for i, e := range p.Consts {
		if e == c {
			return int32(i) // #nosec G115
		}
	}
	p.Consts = append(p.Consts, c)
	return int32(len(p.Consts) - 1) // #nosec G115
}
