package ast

import (
	"bramble/internal/source"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

// NodeID is the parser-assigned identity of a node.
type NodeID uint32

// Annotation carries the per-node data. The parser fills ID and Span; the
// resolver adds Type, the scope table of scope-introducing nodes and the
// canonical path of modules and items.
type Annotation struct {
	ID   NodeID         `msgpack:"id"`
	Span source.Span    `msgpack:"sp"`
	Type types.Type     `msgpack:"ty"`
	Sym  *symbols.Table `msgpack:"sym,omitempty"`
	Path types.Path     `msgpack:"path,omitempty"`
}

func (a Annotation) Clone() Annotation {
	out := a
	out.Sym = a.Sym.Clone()
	out.Path = a.Path.Clone()
	out.Type = cloneType(a.Type)
	return out
}

func cloneType(t types.Type) types.Type {
	out, _ := t.Walk(func(p types.Path) (types.Path, error) { return p.Clone(), nil }, nil) //nolint:errcheck // callback never fails
	return out
}
