package source

import "fmt"

// Span is a half-open byte range inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span holding both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether off lies inside s.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}

// AtEnd returns an empty span positioned at s.End.
func (s Span) AtEnd() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

// AtStart returns an empty span positioned at s.Start.
func (s Span) AtStart() Span {
	return Span{File: s.File, Start: s.Start, End: s.Start}
}
