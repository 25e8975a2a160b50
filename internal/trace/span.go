package trace

import "time"

// Span pairs a begin event with the end event emitted by End. A span
// begun on a tracer that drops its scope is inert.
type Span struct {
	t       Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin emits the begin event. parent is 0 for roots.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !Accepts(t, scope) {
		return &Span{}
	}
	s := &Span{t: t, id: spanIDs.Add(1), parent: parent, scope: scope, name: name, started: time.Now()}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) live() bool { return s != nil && s.t != nil }

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{Time: at, Kind: kind, Scope: s.scope, SpanID: s.id, ParentID: s.parent, Name: s.name, Detail: detail}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	s.t.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = map[string]string{}
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
