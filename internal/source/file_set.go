package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
)

// File captures content and a line index for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// FileSet maps FileIDs to file contents so spans can be rendered.
// Spans produced by the parser front end refer to ids handed out here.
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores content under path and returns its id. CRLF is normalized.
func (fs *FileSet) Add(path string, content []byte) FileID {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	path = filepath.ToSlash(filepath.Clean(path))
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
	})
	fs.index[path] = id
	return id
}

// Load reads a file from disk and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fs.Add(path, data), nil
}

// Get returns the file for id or nil.
func (fs *FileSet) Get(id FileID) *File {
	if fs == nil || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts a span into line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol, ok bool) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}, false
	}
	return f.Position(span.Start), f.Position(span.End), true
}

// Position maps a byte offset to line and column.
func (f *File) Position(off uint32) LineCol {
	// число переводов строк строго до off
	line := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	var start uint32
	if line > 0 {
		start = f.LineIdx[line-1] + 1
	}
	ln, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: ln, Col: off - start + 1}
}

// Line returns the text of the given 1-based line without its newline.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := uint32(len(f.Content)) //nolint:gosec // content is bounded by Add
	if int(n-1) < len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func buildLineIndex(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) //nolint:gosec // file size checked by caller
		}
	}
	return out
}
