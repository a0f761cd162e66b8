package ast

import (
	"bramble/internal/types"
)

type ExprKind uint8

const (
	ExprIntLit ExprKind = iota
	ExprBoolLit
	ExprStringLit
	ExprArray
	ExprArrayAt
	ExprIdent
	ExprMember
	ExprBinary
	ExprUnary
	ExprIf
	ExprWhile
	ExprYield
	ExprCall
	ExprBlock
	ExprStruct
)

func (k ExprKind) String() string {
	switch k {
	case ExprIntLit:
		return "integer literal"
	case ExprBoolLit:
		return "bool literal"
	case ExprStringLit:
		return "string literal"
	case ExprArray:
		return "array"
	case ExprArrayAt:
		return "array index"
	case ExprIdent:
		return "identifier"
	case ExprMember:
		return "member access"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprIf:
		return "if"
	case ExprWhile:
		return "while"
	case ExprYield:
		return "yield"
	case ExprCall:
		return "call"
	case ExprBlock:
		return "block"
	case ExprStruct:
		return "struct"
	}
	return "invalid"
}

// Expr is an expression node; exactly one payload matching Kind is set.
type Expr struct {
	Kind   ExprKind    `msgpack:"k"`
	Ann    Annotation  `msgpack:"ann"`
	Int    *IntLit     `msgpack:"int,omitempty"`
	Bool   bool        `msgpack:"bool,omitempty"`
	Str    string      `msgpack:"str,omitempty"`
	Array  *ArrayData  `msgpack:"arr,omitempty"`
	Index  *IndexData  `msgpack:"idx,omitempty"`
	Name   string      `msgpack:"name,omitempty"`
	Member *MemberData `msgpack:"mem,omitempty"`
	Binary *BinaryData `msgpack:"bin,omitempty"`
	Unary  *UnaryData  `msgpack:"un,omitempty"`
	If     *IfData     `msgpack:"if,omitempty"`
	While  *WhileData  `msgpack:"while,omitempty"`
	Yield  *Expr       `msgpack:"yield,omitempty"`
	Call   *CallData   `msgpack:"call,omitempty"`
	Block  *BlockData  `msgpack:"block,omitempty"`
	Struct *StructData `msgpack:"struct,omitempty"`
}

// IntLit is an integer literal of a fixed type. Value holds the two's
// complement bits.
type IntLit struct {
	Type  types.Type `msgpack:"t"`
	Value uint64     `msgpack:"v"`
}

func (l *IntLit) Int64() int64 { return int64(l.Value) } //nolint:gosec // two's complement by construction

type ArrayData struct {
	Elems []*Expr `msgpack:"e"`
}

type IndexData struct {
	Array *Expr `msgpack:"a"`
	Index *Expr `msgpack:"i"`
}

type MemberData struct {
	Base   *Expr  `msgpack:"b"`
	Member string `msgpack:"m"`
}

type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinAnd
	BinOr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

func (op BinaryOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	}
	return "?"
}

func (op BinaryOp) IsArithmetic() bool { return op <= BinDiv }

func (op BinaryOp) IsLogical() bool { return op == BinAnd || op == BinOr }

func (op BinaryOp) IsComparison() bool { return op >= BinEq }

type BinaryData struct {
	Op    BinaryOp `msgpack:"op"`
	Left  *Expr    `msgpack:"l"`
	Right *Expr    `msgpack:"r"`
}

type UnaryOp uint8

const (
	UnNegate UnaryOp = iota
	UnNot
)

func (op UnaryOp) String() string {
	if op == UnNot {
		return "!"
	}
	return "-"
}

type UnaryData struct {
	Op      UnaryOp `msgpack:"op"`
	Operand *Expr   `msgpack:"x"`
}

// IfData: Else is nil when the if has no else arm.
type IfData struct {
	Cond *Expr `msgpack:"c"`
	Then *Expr `msgpack:"t"`
	Else *Expr `msgpack:"e,omitempty"`
}

type WhileData struct {
	Cond *Expr `msgpack:"c"`
	Body *Expr `msgpack:"b"`
}

// CallKind is the syntactic form of a call.
type CallKind uint8

const (
	CallFunction CallKind = iota
	CallCoroutineInit
	CallExtern
)

func (k CallKind) String() string {
	switch k {
	case CallCoroutineInit:
		return "coroutine"
	case CallExtern:
		return "extern"
	}
	return "function"
}

type CallData struct {
	Call CallKind   `msgpack:"k"`
	Path types.Path `msgpack:"p"`
	Args []*Expr    `msgpack:"a,omitempty"`
}

// BlockData is an expression block. Final is nil for unit blocks.
type BlockData struct {
	Stmts []*Stmt `msgpack:"s,omitempty"`
	Final *Expr   `msgpack:"f,omitempty"`
}

type FieldInit struct {
	Name  string `msgpack:"n"`
	Value *Expr  `msgpack:"v"`
}

type StructData struct {
	Path   types.Path  `msgpack:"p"`
	Fields []FieldInit `msgpack:"f,omitempty"`
}
