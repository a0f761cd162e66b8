package symbols

import (
	"bramble/internal/types"
)

// SymbolFlags encodes binding properties.
type SymbolFlags uint8

const (
	SymbolMutable SymbolFlags = 1 << iota
	SymbolExtern              // declared by an extern block, linked by bare name
)

// Symbol is the resolved record for one declared name.
type Symbol struct {
	Name  string      `msgpack:"n"`
	Type  types.Type  `msgpack:"t"`
	Flags SymbolFlags `msgpack:"f,omitempty"`
}

func (s Symbol) IsMutable() bool { return s.Flags&SymbolMutable != 0 }

func (s Symbol) IsExtern() bool { return s.Flags&SymbolExtern != 0 }

// IsVariable reports whether the symbol can be read as a value.
func (s Symbol) IsVariable() bool {
	switch s.Type.Kind {
	case types.KindFunctionDef, types.KindCoroutineDef, types.KindExternDecl,
		types.KindStructDef, types.KindUnknown:
		return false
	}
	return true
}

// IsRoutine reports whether the symbol can be called.
func (s Symbol) IsRoutine() bool {
	switch s.Type.Kind {
	case types.KindFunctionDef, types.KindCoroutineDef, types.KindExternDecl:
		return true
	}
	return false
}
