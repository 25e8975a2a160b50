package trace

import (
	"sync/atomic"
	"time"
)

// Kind is begin, end or point.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Event is one trace record. Seq is assigned by the sink that stores it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Detail   string
	Extra    map[string]string
}

var seq, spanIDs atomic.Uint64

func nextSeq() uint64 { return seq.Add(1) }

// Accepts reports whether events of scope reach t. A LevelError tracer
// takes everything so its ring can be dumped after a fault.
func Accepts(t Tracer, scope Scope) bool {
	if t == nil || !t.Enabled() {
		return false
	}
	l := t.Level()
	return l == LevelError || l.Admits(scope)
}

// Point emits an instant event when t accepts scope.
func Point(t Tracer, scope Scope, name, detail string) {
	if !Accepts(t, scope) {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Name: name, Detail: detail})
}
