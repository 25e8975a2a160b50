// Package fix applies the quick fixes attached to diagnostics.
package fix

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"jstep/internal/diag"
	"jstep/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// Mode determines how many fixes are selected.
type Mode uint8

const (
	// ModeFirst applies the first fix in source order.
	ModeFirst Mode = iota
	// ModeAll applies every non-conflicting fix.
	ModeAll
)

// Options configures how fixes are selected.
type Options struct {
	Mode Mode
	// Codes restricts fixes to diagnostics with these codes; empty means all.
	Codes []diag.Code
}

// Applied records a successfully applied fix.
type Applied struct {
	Title string
	Code  diag.Code
	Path  string
	Span  source.Span
	Edits int
}

// Skipped captures a skipped fix with a reason.
type Skipped struct {
	Title  string
	Reason string
}

// Result holds applied and skipped fixes and the new text of every
// changed file, keyed by path.
type Result struct {
	Applied []Applied
	Skipped []Skipped
	Files   map[string][]byte
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply selects fixes from diagnostics and computes the edited texts. It
// does not touch the disk.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts Options) (*Result, error) {
	res := &Result{Files: map[string][]byte{}}
	if fs == nil {
		return res, fmt.Errorf("fix: FileSet is nil")
	}
	cands := gather(diagnostics, opts.Codes, res)
	if len(cands) == 0 {
		return res, ErrNoFixes
	}
	sortCandidates(cands)

	accepted := map[source.FileID][]diag.FixEdit{}
	for _, c := range cands {
		if opts.Mode == ModeFirst && len(res.Applied) > 0 {
			break
		}
		if reason := check(fs, accepted, c.fix.Edits); reason != "" {
			res.Skipped = append(res.Skipped, Skipped{Title: c.fix.Title, Reason: reason})
			continue
		}
		for _, e := range c.fix.Edits {
			accepted[e.Span.File] = append(accepted[e.Span.File], e)
		}
		res.Applied = append(res.Applied, Applied{
			Title: c.fix.Title,
			Code:  c.diag.Code,
			Path:  fs.Get(c.diag.Primary.File).Path,
			Span:  c.diag.Primary,
			Edits: len(c.fix.Edits),
		})
	}
	if len(res.Applied) == 0 {
		return res, ErrNoFixes
	}
	for id, edits := range accepted {
		f := fs.Get(id)
		res.Files[f.Path] = applyEdits(f.Content, edits)
	}
	return res, nil
}

func gather(diagnostics []diag.Diagnostic, codes []diag.Code, res *Result) []candidate {
	var out []candidate
	for _, d := range diagnostics {
		if len(codes) > 0 && !slices.Contains(codes, d.Code) {
			continue
		}
		for _, f := range d.Fixes {
			if len(f.Edits) == 0 {
				res.Skipped = append(res.Skipped, Skipped{Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			out = append(out, candidate{diag: d, fix: f, order: len(out)})
		}
	}
	return out
}

// sortCandidates orders by file, span start, span end, then insertion order.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		di, dj := cands[i].diag.Primary, cands[j].diag.Primary
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Start != dj.Start {
			return di.Start < dj.Start
		}
		if di.End != dj.End {
			return di.End < dj.End
		}
		return cands[i].order < cands[j].order
	})
}

// check validates edits against the file contents and the edits already
// accepted. It returns a skip reason or "".
func check(fs *source.FileSet, accepted map[source.FileID][]diag.FixEdit, edits []diag.FixEdit) string {
	for i, e := range edits {
		f := fs.Get(e.Span.File)
		if f == nil {
			return "unknown file"
		}
		if e.Span.Start > e.Span.End || int(e.Span.End) > len(f.Content) {
			return "edit span out of range"
		}
		if e.OldText != "" && string(f.Content[e.Span.Start:e.Span.End]) != e.OldText {
			return "existing text does not match expected content"
		}
		for _, prev := range accepted[e.Span.File] {
			if spansConflict(prev, e) {
				return "conflicts with a previously applied edit"
			}
		}
		for _, other := range edits[:i] {
			if other.Span.File == e.Span.File && spansConflict(other, e) {
				return "edits of the fix overlap"
			}
		}
	}
	return ""
}

// spansConflict reports whether two edits overlap. Spans are half-open;
// two insertions never conflict, an insertion conflicts with a replacement
// strictly containing its position.
func spansConflict(a, b diag.FixEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End
	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// applyEdits applies non-overlapping edits given in original offsets.
// Insertions at the same offset keep their acceptance order.
func applyEdits(content []byte, edits []diag.FixEdit) []byte {
	type indexed struct {
		e   diag.FixEdit
		idx int
	}
	list := make([]indexed, len(edits))
	for i, e := range edits {
		list[i] = indexed{e, i}
	}
	// с конца файла, чтобы смещения оставались валидными
	sort.Slice(list, func(i, j int) bool {
		if list[i].e.Span.Start != list[j].e.Span.Start {
			return list[i].e.Span.Start > list[j].e.Span.Start
		}
		return list[i].idx > list[j].idx
	})
	out := append([]byte(nil), content...)
	for _, it := range list {
		start, end := it.e.Span.Start, it.e.Span.End
		tail := append([]byte(nil), out[end:]...)
		out = append(append(out[:start], it.e.NewText...), tail...)
	}
	return out
}

// WriteFiles stores res.Files on disk, keeping file modes. With backup set
// the previous contents go to <path>.bak first.
func WriteFiles(res *Result, backup bool) error {
	paths := make([]string, 0, len(res.Files))
	for p := range res.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		mode := os.FileMode(0o644)
		if info, err := os.Stat(p); err == nil {
			mode = info.Mode()
			if backup {
				old, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("backup %s: %w", p, err)
				}
				if err := os.WriteFile(p+".bak", old, mode); err != nil {
					return fmt.Errorf("backup %s: %w", p, err)
				}
			}
		}
		if err := os.WriteFile(p, res.Files[p], mode); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	return nil
}
