package steps

import "jstep/internal/source"

type Flags uint8

const (
	// FlagStmtStart marks the first Step of a statement.
	FlagStmtStart Flags = 1 << iota
	// FlagBreakpoint is toggled by the interpreter host.
	FlagBreakpoint
	// FlagKeep leaves the stored value on the stack.
	FlagKeep
)

// Step is one atomic unit of execution.
type Step struct {
	Op    Op          `msgpack:"o"`
	A     int32       `msgpack:"a"`
	B     int32       `msgpack:"b"`
	Flags Flags       `msgpack:"f"`
	Span  source.Span `msgpack:"s"`
}

func (s Step) Has(f Flags) bool { return s.Flags&f != 0 }

// Multi is a coalesced run of single Steps [Begin, End). Begin links the
// multi-step back to its single Step for breakpoint correlation.
type Multi struct {
	Begin int `msgpack:"b"`
	End   int `msgpack:"e"`
}
