package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"jstep/internal/diag"
	"jstep/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview renders the whole lines touched by edit before and
// after applying it.
func buildFixEditPreview(fs *source.FileSet, edit diag.FixEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	if edit.Span.Start > edit.Span.End || edit.Span.End > size {
		return fixEditPreview{}, fmt.Errorf("edit span %s out of range", edit.Span)
	}

	startPos, endPos := fs.Resolve(edit.Span)
	first, ok := file.LineSpan(startPos.Line)
	if !ok {
		return fixEditPreview{}, fmt.Errorf("line %d out of range", startPos.Line)
	}
	last, ok := file.LineSpan(max(endPos.Line, startPos.Line))
	if !ok {
		last = first
	}
	block := file.Content[first.Start:last.End]
	rel := edit.Span.Start - first.Start
	relEnd := min(edit.Span.End, last.End) - first.Start

	after := make([]byte, 0, len(block)+len(edit.NewText))
	after = append(after, block[:rel]...)
	after = append(after, edit.NewText...)
	after = append(after, block[relEnd:]...)

	return fixEditPreview{
		before: splitPreviewLines(block),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(content), "\n"), "\n")
}
