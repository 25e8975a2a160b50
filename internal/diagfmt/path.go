package diagfmt

import (
	"fmt"
	"path/filepath"
	"strings"

	"jstep/internal/source"
)

const autoPathMax = 40

func formatPath(f *source.File, mode PathMode, base string) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if base != "" {
			if rel, err := filepath.Rel(base, f.Path); err == nil && !strings.HasPrefix(rel, "..") {
				return filepath.ToSlash(rel)
			}
		}
	case PathModeBasename:
		return f.BaseName()
	case PathModeAuto:
		if len(f.Path) > autoPathMax {
			return f.BaseName()
		}
	}
	return f.Path
}

func location(fs *source.FileSet, sp source.Span, mode PathMode, base string) string {
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs.Get(sp.File), mode, base), start.Line, start.Col)
}
