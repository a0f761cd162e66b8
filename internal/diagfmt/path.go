package diagfmt

import (
	"path/filepath"

	"bramble/internal/source"
)

// location describes where a span points. File is empty for spans that
// do not belong to any loaded file.
type location struct {
	File       string
	Start, End source.LineCol
}

func locate(fs *source.FileSet, span source.Span, mode PathMode) (location, *source.File) {
	if fs == nil || span == (source.Span{}) {
		return location{}, nil
	}
	f := fs.Get(span.File)
	if f == nil {
		return location{}, nil
	}
	start, end, _ := fs.Resolve(span)
	return location{File: formatPath(f.Path, mode), Start: start, End: end}, f
}

func formatPath(p string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
	case PathModeBasename:
		return filepath.Base(p)
	}
	return p
}
