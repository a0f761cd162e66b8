package types

import (
	"fmt"
	"strings"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInt
	KindUint
	KindBool
	KindStringLiteral
	KindUnit
	KindArray
	KindCustom
	KindCoroutine
	KindFunctionDef
	KindCoroutineDef
	KindExternDecl
	KindStructDef
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindBool:
		return "bool"
	case KindStringLiteral:
		return "string"
	case KindUnit:
		return "unit"
	case KindArray:
		return "array"
	case KindCustom:
		return "custom"
	case KindCoroutine:
		return "coroutine"
	case KindFunctionDef:
		return "fn"
	case KindCoroutineDef:
		return "co"
	case KindExternDecl:
		return "extern"
	case KindStructDef:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Field is one named member of a struct definition.
type Field struct {
	Name string `msgpack:"n"`
	Type Type   `msgpack:"t"`
}

// Type is a closed tagged union. Only the fields used by Kind are set:
//
//	KindInt, KindUint           Width
//	KindArray                   Elem, Len
//	KindCustom                  Path
//	KindCoroutine               Elem
//	KindFunctionDef/CoroutineDef Params, Ret
//	KindExternDecl              Params, VarArgs, Ret
//	KindStructDef               Fields
type Type struct {
	Kind    Kind    `msgpack:"k"`
	Width   Width   `msgpack:"w,omitempty"`
	Elem    *Type   `msgpack:"el,omitempty"`
	Len     int64   `msgpack:"len,omitempty"`
	Path    Path    `msgpack:"p,omitempty"`
	Params  []Type  `msgpack:"ps,omitempty"`
	Ret     *Type   `msgpack:"r,omitempty"`
	VarArgs bool    `msgpack:"va,omitempty"`
	Fields  []Field `msgpack:"fs,omitempty"`
}

var (
	Unknown       = Type{Kind: KindUnknown}
	U8            = Type{Kind: KindUint, Width: Width8}
	U16           = Type{Kind: KindUint, Width: Width16}
	U32           = Type{Kind: KindUint, Width: Width32}
	U64           = Type{Kind: KindUint, Width: Width64}
	I8            = Type{Kind: KindInt, Width: Width8}
	I16           = Type{Kind: KindInt, Width: Width16}
	I32           = Type{Kind: KindInt, Width: Width32}
	I64           = Type{Kind: KindInt, Width: Width64}
	Bool          = Type{Kind: KindBool}
	StringLiteral = Type{Kind: KindStringLiteral}
	Unit          = Type{Kind: KindUnit}
)

func Array(elem Type, n int64) Type {
	return Type{Kind: KindArray, Elem: &elem, Len: n}
}

func Custom(p Path) Type {
	return Type{Kind: KindCustom, Path: p}
}

func Coroutine(ret Type) Type {
	return Type{Kind: KindCoroutine, Elem: &ret}
}

func FunctionDef(params []Type, ret Type) Type {
	return Type{Kind: KindFunctionDef, Params: params, Ret: &ret}
}

func CoroutineDef(params []Type, ret Type) Type {
	return Type{Kind: KindCoroutineDef, Params: params, Ret: &ret}
}

func ExternDecl(params []Type, varArgs bool, ret Type) Type {
	return Type{Kind: KindExternDecl, Params: params, VarArgs: varArgs, Ret: &ret}
}

func StructDef(fields []Field) Type {
	return Type{Kind: KindStructDef, Fields: fields}
}

func (t Type) IsIntegral() bool {
	return t.Kind == KindInt || t.Kind == KindUint
}

func (t Type) IsSigned() bool { return t.Kind == KindInt }

func (t Type) IsUnsigned() bool { return t.Kind == KindUint }

func (t Type) IsUnit() bool { return t.Kind == KindUnit }

func (t Type) IsUnknown() bool { return t.Kind == KindUnknown }

// Return yields the declared return type of a routine or extern signature.
func (t Type) Return() Type {
	if t.Ret == nil {
		return Unknown
	}
	return *t.Ret
}

// ElemType yields the element type of an array or coroutine value.
func (t Type) ElemType() Type {
	if t.Elem == nil {
		return Unknown
	}
	return *t.Elem
}

// Field looks up a struct definition member by name.
func (t Type) Field(name string) (Type, int, bool) {
	for i, f := range t.Fields {
		if f.Name == name {
			return f.Type, i, true
		}
	}
	return Unknown, -1, false
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindInt, KindUint:
		return t.Width == o.Width
	case KindArray:
		return t.Len == o.Len && t.ElemType().Equal(o.ElemType())
	case KindCustom:
		return t.Path.Equal(o.Path)
	case KindCoroutine:
		return t.ElemType().Equal(o.ElemType())
	case KindFunctionDef, KindCoroutineDef, KindExternDecl:
		if t.VarArgs != o.VarArgs || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return t.Return().Equal(o.Return())
	case KindStructDef:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	}
	return true
}

// Walk rebuilds t, passing every Custom path nested anywhere inside it
// through fn. Array lengths are handed to checkLen when it is non-nil.
func (t Type) Walk(fn func(Path) (Path, error), checkLen func(int64) error) (Type, error) {
	switch t.Kind {
	case KindCustom:
		p, err := fn(t.Path)
		if err != nil {
			return Unknown, err
		}
		return Custom(p), nil
	case KindArray:
		if checkLen != nil {
			if err := checkLen(t.Len); err != nil {
				return Unknown, err
			}
		}
		el, err := t.ElemType().Walk(fn, checkLen)
		if err != nil {
			return Unknown, err
		}
		return Array(el, t.Len), nil
	case KindCoroutine:
		el, err := t.ElemType().Walk(fn, checkLen)
		if err != nil {
			return Unknown, err
		}
		return Coroutine(el), nil
	case KindFunctionDef, KindCoroutineDef, KindExternDecl:
		var params []Type
		if t.Params != nil {
			params = make([]Type, len(t.Params))
		}
		for i, p := range t.Params {
			np, err := p.Walk(fn, checkLen)
			if err != nil {
				return Unknown, err
			}
			params[i] = np
		}
		ret, err := t.Return().Walk(fn, checkLen)
		if err != nil {
			return Unknown, err
		}
		out := t
		out.Params = params
		out.Ret = &ret
		return out, nil
	case KindStructDef:
		var fields []Field
		if t.Fields != nil {
			fields = make([]Field, len(t.Fields))
		}
		for i, f := range t.Fields {
			ft, err := f.Type.Walk(fn, checkLen)
			if err != nil {
				return Unknown, err
			}
			fields[i] = Field{Name: f.Name, Type: ft}
		}
		return StructDef(fields), nil
	}
	return t, nil
}

// Contains reports whether pred holds for t or any type nested in it.
func (t Type) Contains(pred func(Type) bool) bool {
	if pred(t) {
		return true
	}
	switch t.Kind {
	case KindArray, KindCoroutine:
		return t.ElemType().Contains(pred)
	case KindFunctionDef, KindCoroutineDef, KindExternDecl:
		for _, p := range t.Params {
			if p.Contains(pred) {
				return true
			}
		}
		return t.Return().Contains(pred)
	case KindStructDef:
		for _, f := range t.Fields {
			if f.Type.Contains(pred) {
				return true
			}
		}
	}
	return false
}

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("i%d", t.Width)
	case KindUint:
		return fmt.Sprintf("u%d", t.Width)
	case KindBool:
		return "bool"
	case KindStringLiteral:
		return "string"
	case KindUnit:
		return "unit"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.ElemType(), t.Len)
	case KindCustom:
		return t.Path.String()
	case KindCoroutine:
		return fmt.Sprintf("co<%s>", t.ElemType())
	case KindFunctionDef:
		return fmt.Sprintf("fn (%s) -> %s", joinTypes(t.Params), t.Return())
	case KindCoroutineDef:
		return fmt.Sprintf("co (%s) -> %s", joinTypes(t.Params), t.Return())
	case KindExternDecl:
		params := joinTypes(t.Params)
		if t.VarArgs {
			params += ", ..."
		}
		return fmt.Sprintf("extern fn (%s) -> %s", params, t.Return())
	case KindStructDef:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
		}
		return fmt.Sprintf("StructDef(%s)", strings.Join(parts, ","))
	}
	return "unknown"
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}
