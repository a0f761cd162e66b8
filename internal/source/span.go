package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file.
type Span struct {
	File  FileID `msgpack:"f"`
	Start uint32 `msgpack:"s"` // в байтах включительно
	End   uint32 `msgpack:"e"` // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// ZeroideToEnd returns a zero-width span anchored at the end of s.
// Machine-inserted control flow (the goto closing an if arm, the implicit
// return of a routine) is tagged with it.
func (s Span) ZeroideToEnd() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

// ZeroideToStart returns a zero-width span anchored at the start of s.
func (s Span) ZeroideToStart() Span {
	return Span{File: s.File, Start: s.Start, End: s.Start}
}

// Contains reports whether off lies inside s.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}
