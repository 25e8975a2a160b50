package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"jstep/internal/ast"
	"jstep/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span is non-empty and within file content bounds
// 2) every item and top-level statement span is non-empty and inside file.Span
// 3) spans of consecutive items do not overlap
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.File(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	// 1) file span sanity
	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	inside := func(what string, sp source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("empty %s span: %v", what, sp)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("%s span %v outside file span %v", what, sp, f.Span)
		}
		return nil
	}
	// 2) items and statements; 3) item order
	var prev source.Span
	for i, it := range f.Items {
		item := b.Item(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		if err := inside("item", item.Span); err != nil {
			return err
		}
		if i > 0 && item.Span.Start < prev.End {
			return fmt.Errorf("item spans overlap: %v then %v", prev, item.Span)
		}
		prev = item.Span
	}
	for _, id := range f.Stmts {
		st := b.Stmts.Get(id)
		if st == nil {
			return fmt.Errorf("nil statement for id=%d", id)
		}
		if err := inside("statement", st.Span); err != nil {
			return err
		}
	}
	return nil
}
