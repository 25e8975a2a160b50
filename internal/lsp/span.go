package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"jstep/internal/source"
)

// Positions on the wire count UTF-16 code units; spans count bytes.

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

func lineStart(file *source.File, line int) uint32 {
	if line == 0 {
		return 0
	}
	return file.LineIdx[line-1] + 1
}

func offsetForPosition(file *source.File, pos protocol.Position) uint32 {
	if file == nil || len(file.Content) == 0 {
		return 0
	}
	size := safeUint32(len(file.Content))
	line := int(pos.Line)
	if line > len(file.LineIdx) {
		return size
	}
	off := lineStart(file, line)
	end := size
	if line < len(file.LineIdx) {
		end = file.LineIdx[line]
	}
	units := uint32(0)
	for off < end && units < pos.Character {
		r, n := utf8.DecodeRune(file.Content[off:end])
		need := uint32(1)
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(n)
	}
	return off
}

func positionForOffset(file *source.File, offset uint32) protocol.Position {
	if file == nil {
		return protocol.Position{}
	}
	offset = min(offset, safeUint32(len(file.Content)))
	idx := file.LineIdx
	line := sort.Search(len(idx), func(i int) bool { return idx[i] >= offset })
	units := uint32(0)
	for off := min(lineStart(file, line), offset); off < offset; {
		r, n := utf8.DecodeRune(file.Content[off:offset])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(n)
	}
	return protocol.Position{Line: safeUint32(line), Character: units}
}

func rangeForSpan(file *source.File, sp source.Span) protocol.Range {
	if file == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: positionForOffset(file, sp.Start),
		End:   positionForOffset(file, sp.End),
	}
}

// overlaps reports whether two ranges share a position; touching counts.
func overlaps(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b protocol.Position) bool {
	return a.Line < b.Line || a.Line == b.Line && a.Character < b.Character
}
