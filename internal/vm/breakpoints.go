package vm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"jstep/internal/steps"
)

var ErrNoStatement = errors.New("no statement on that line")

// Breakpoint is a file:line breakpoint.
type Breakpoint struct {
	Path string
	Line int
}

func (bp Breakpoint) String() string {
	return fmt.Sprintf("%s:%d", bp.Path, bp.Line)
}

// ParseBreakpoint parses "file:line".
func ParseBreakpoint(spec string) (Breakpoint, error) {
	i := strings.LastIndexByte(spec, ':')
	if i <= 0 {
		return Breakpoint{}, fmt.Errorf("invalid breakpoint %q (expected file:line)", spec)
	}
	line, err := strconv.Atoi(spec[i+1:])
	if err != nil || line <= 0 {
		return Breakpoint{}, fmt.Errorf("invalid line in breakpoint %q", spec)
	}
	return Breakpoint{Path: spec[:i], Line: line}, nil
}

// SetBreakpoint flags the first statement starting on the line in every
// program of the file and returns how many programs were flagged.
func (p *ThreadPool) SetBreakpoint(path string, line int) (int, error) {
	bp := Breakpoint{Path: path, Line: line}
	n := p.flag(bp, true)
	if n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoStatement, bp)
	}
	p.breaks[bp] = struct{}{}
	return n, nil
}

// ClearBreakpoint removes a breakpoint; it reports whether one was set.
func (p *ThreadPool) ClearBreakpoint(path string, line int) bool {
	bp := Breakpoint{Path: path, Line: line}
	if _, ok := p.breaks[bp]; !ok {
		return false
	}
	delete(p.breaks, bp)
	p.flag(bp, false)
	return true
}

// Breakpoints lists the set breakpoints ordered by file and line.
func (p *ThreadPool) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, 0, len(p.breaks))
	for bp := range p.breaks {
		out = append(out, bp)
	}
	slices.SortFunc(out, func(a, b Breakpoint) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return a.Line - b.Line
	})
	return out
}

func (p *ThreadPool) flag(bp Breakpoint, on bool) int {
	if p.files == nil {
		return 0
	}
	fid, ok := p.files.Latest(bp.Path)
	if !ok {
		return 0
	}
	n := 0
	for _, prog := range p.progs.Programs() {
		if prog.File != fid {
			continue
		}
		for pc := range prog.Steps {
			s := &prog.Steps[pc]
			if !s.Has(steps.FlagStmtStart) || s.Span.File != fid {
				continue
			}
			start, _ := p.files.Resolve(s.Span)
			if int(start.Line) != bp.Line {
				continue
			}
			if on {
				s.Flags |= steps.FlagBreakpoint
			} else {
				s.Flags &^= steps.FlagBreakpoint
			}
			n++
			break
		}
	}
	return n
}
