package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves byte offsets to lines.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists;
// the path index then points at the newest version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	normalized := normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalized] = id
	return id
}

// AddVirtual adds an in-memory buffer, normalizing BOM and CRLF like Load does.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := normalizeContent(content)
	return fileSet.Add(name, content, flags|FileVirtual)
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	content, flags := normalizeContent(content)
	return fileSet.Add(path, content, flags), nil
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Len returns the number of stored file versions.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Latest returns the newest file ID for the given path.
func (fileSet *FileSet) Latest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineSpan returns the byte range of a 1-based line, without the trailing newline.
func (f *File) LineSpan(line uint32) (Span, bool) {
	if line == 0 {
		return Span{}, false
	}
	n := uint32(len(f.LineIdx)) // #nosec G115 -- bounded by content length
	size := uint32(len(f.Content))
	if line > n+1 {
		return Span{}, false
	}
	var start uint32
	if line > 1 {
		start = f.LineIdx[line-2] + 1
	}
	end := size
	if line <= n {
		end = f.LineIdx[line-1]
	}
	if start > size {
		return Span{}, false
	}
	return Span{File: f.ID, Start: start, End: end}, true
}

// GetLine returns the text of a 1-based line, or "" when it does not exist.
func (f *File) GetLine(line uint32) string {
	sp, ok := f.LineSpan(line)
	if !ok {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

// BaseName returns the last path element of the file.
func (f *File) BaseName() string {
	return filepath.Base(f.Path)
}

func normalizeContent(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
		flags |= FileHadBOM
	}
	if slices.Contains(content, '\r') {
		out := make([]byte, 0, len(content))
		for i := 0; i < len(content); i++ {
			// одиночный \r не трогаем
			if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
				continue
			}
			out = append(out, content[i])
		}
		if len(out) != len(content) {
			flags |= FileNormalizedCRLF
		}
		content = out
	}
	return content, flags
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) // #nosec G115 -- file sizes fit in uint32
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// количество переводов строки строго до off = номер строки - 1
	n, _ := slices.BinarySearch(lineIdx, off)
	var start uint32
	if n > 0 {
		start = lineIdx[n-1] + 1
	}
	return LineCol{Line: uint32(n + 1), Col: off - start + 1} // #nosec G115
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
