package types

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reserved path segments.
const (
	RootSeg  = "root"
	SelfSeg  = "self"
	SuperSeg = "super"
)

const pathSep = "::"

var (
	// ErrPathTooSuper is returned when super climbs past the root.
	ErrPathTooSuper = errors.New("path climbs above root")
	// ErrPathNotValid is returned when the root segment appears inside a path.
	ErrPathNotValid = errors.New("root may only appear at the start of a path")
	// ErrEmptyPath is returned for paths without segments.
	ErrEmptyPath = errors.New("empty path")
)

// Path is an ordered sequence of name segments. A canonical path starts
// with RootSeg and contains no self/super segments.
type Path []string

// NewPath builds a path from segments normalized to NFC, so that paths
// built from differently encoded sources compare equal as strings.
func NewPath(segs ...string) Path {
	p := make(Path, len(segs))
	for i, s := range segs {
		p[i] = norm.NFC.String(s)
	}
	return p
}

// ParsePath splits "a::b::c" into a Path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return NewPath(strings.Split(s, pathSep)...)
}

func (p Path) String() string {
	return strings.Join(p, pathSep)
}

func (p Path) Len() int { return len(p) }

func (p Path) IsCanonical() bool {
	return len(p) > 0 && p[0] == RootSeg
}

// Last returns the final segment ("" for the empty path).
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent drops the last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Append returns a new path with seg added; p is not modified.
func (p Path) Append(segs ...string) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, NewPath(segs...)...)
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Canonicalize resolves p against the canonical module path parent.
// self is dropped and super pops one segment off the current prefix. A path
// that already starts with root ignores parent, so canonicalizing a
// canonical path returns it unchanged.
func (p Path) Canonicalize(parent Path) (Path, error) {
	if len(p) == 0 {
		return nil, ErrEmptyPath
	}
	var out Path
	rest := p
	if p.IsCanonical() {
		out = Path{RootSeg}
		rest = p[1:]
	} else {
		if !parent.IsCanonical() {
			return nil, ErrPathNotValid
		}
		out = parent.Clone()
	}
	for _, s := range rest {
		switch s {
		case SelfSeg:
		case SuperSeg:
			if len(out) <= 1 {
				return nil, ErrPathTooSuper
			}
			out = out[:len(out)-1]
		case RootSeg:
			return nil, ErrPathNotValid
		default:
			out = append(out, s)
		}
	}
	return out, nil
}
