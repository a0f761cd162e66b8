package llvm

import (
	"fmt"
	"strings"

	lltypes "github.com/llir/llvm/ir/types"

	"bramble/internal/types"
)

var unitType = lltypes.NewStruct()

// Mangle turns a canonical path into a symbol name. Extern paths are bare
// names and stay unchanged.
func Mangle(p types.Path) string {
	if p.IsCanonical() {
		p = p[1:]
	}
	return strings.Join(p, ".")
}

func (g *Generator) llType(t types.Type) (lltypes.Type, error) {
	switch t.Kind {
	case types.KindInt, types.KindUint:
		switch t.Width {
		case types.Width8:
			return lltypes.I8, nil
		case types.Width16:
			return lltypes.I16, nil
		case types.Width32:
			return lltypes.I32, nil
		}
		return lltypes.I64, nil
	case types.KindBool:
		return lltypes.I1, nil
	case types.KindStringLiteral:
		return lltypes.I8Ptr, nil
	case types.KindUnit:
		return unitType, nil
	case types.KindArray:
		el, err := g.llType(t.ElemType())
		if err != nil {
			return nil, err
		}
		return lltypes.NewArray(uint64(t.Len), el), nil //nolint:gosec // sema rejects non-positive lengths
	case types.KindCustom:
		st, ok := g.structs[t.Path.String()]
		if !ok {
			return nil, fmt.Errorf("llvm: unknown struct %s", t.Path)
		}
		return st, nil
	case types.KindCoroutine:
		// дескриптор корутины непрозрачен для кодогенератора
		return lltypes.I8Ptr, nil
	}
	return nil, fmt.Errorf("llvm: type %s has no LLVM representation", t)
}

// retType maps unit returns to void.
func (g *Generator) retType(t types.Type) (lltypes.Type, error) {
	if t.IsUnit() {
		return lltypes.Void, nil
	}
	return g.llType(t)
}
