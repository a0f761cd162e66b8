package mir

import (
	"bramble/internal/source"
	"bramble/internal/types"
)

type ConstKind uint8

const (
	ConstUnit ConstKind = iota
	ConstI8
	ConstI16
	ConstI32
	ConstI64
	ConstU8
	ConstU16
	ConstU32
	ConstU64
	ConstBool
	ConstStringLiteral
	ConstNull
	ConstSizeOf
)

// Constant is a literal value. Integer kinds keep their two's complement
// bits in Bits.
type Constant struct {
	Kind   ConstKind
	Bits   uint64
	Bool   bool
	Str    string
	SizeOf types.Type
}

func (c Constant) Int64() int64   { return int64(c.Bits) } //nolint:gosec // bit reinterpretation
func (c Constant) Uint64() uint64 { return c.Bits }

// Type reports the language type of the constant.
func (c Constant) Type() types.Type {
	switch c.Kind {
	case ConstI8:
		return types.I8
	case ConstI16:
		return types.I16
	case ConstI32:
		return types.I32
	case ConstI64:
		return types.I64
	case ConstU8:
		return types.U8
	case ConstU16:
		return types.U16
	case ConstU32:
		return types.U32
	case ConstU64, ConstSizeOf:
		return types.U64
	case ConstBool:
		return types.Bool
	case ConstStringLiteral:
		return types.StringLiteral
	}
	return types.Unit
}

// IntConst builds the integer constant of type t holding v.
func IntConst(t types.Type, v uint64) Constant {
	k := ConstI64
	switch {
	case t.Kind == types.KindInt && t.Width == types.Width8:
		k = ConstI8
	case t.Kind == types.KindInt && t.Width == types.Width16:
		k = ConstI16
	case t.Kind == types.KindInt && t.Width == types.Width32:
		k = ConstI32
	case t.Kind == types.KindUint && t.Width == types.Width8:
		k = ConstU8
	case t.Kind == types.KindUint && t.Width == types.Width16:
		k = ConstU16
	case t.Kind == types.KindUint && t.Width == types.Width32:
		k = ConstU32
	case t.Kind == types.KindUint:
		k = ConstU64
	}
	return Constant{Kind: k, Bits: v}
}

type LValueKind uint8

const (
	LVar LValueKind = iota
	LTemp
	LReturnPointer
	LStatic
	LAccess
)

// LValue is an addressable location.
type LValue struct {
	Kind   LValueKind
	Var    VarID
	Temp   TempID
	Static string
	Access *Access
}

// Access projects a field or element out of Base.
type Access struct {
	Base LValue
	Proj Projection
}

type ProjKind uint8

const (
	ProjField ProjKind = iota
	ProjIndex
)

type Projection struct {
	Kind ProjKind

	// ProjField
	Struct types.Path
	Field  string
	Idx    int

	// ProjIndex
	Index Operand
}

func VarLV(id VarID) LValue   { return LValue{Kind: LVar, Var: id} }
func TempLV(id TempID) LValue { return LValue{Kind: LTemp, Temp: id} }

func ReturnLV() LValue { return LValue{Kind: LReturnPointer} }

func FieldLV(base LValue, structPath types.Path, name string, idx int) LValue {
	return LValue{Kind: LAccess, Access: &Access{Base: base, Proj: Projection{Kind: ProjField, Struct: structPath, Field: name, Idx: idx}}}
}

func IndexLV(base LValue, index Operand) LValue {
	return LValue{Kind: LAccess, Access: &Access{Base: base, Proj: Projection{Kind: ProjIndex, Index: index}}}
}

// Root returns the variable, temp or return pointer under any projections.
func (lv LValue) Root() LValue {
	for lv.Kind == LAccess {
		lv = lv.Access.Base
	}
	return lv
}

type OperandKind uint8

const (
	OperandConst OperandKind = iota
	OperandLValue
)

type Operand struct {
	Kind   OperandKind
	Const  Constant
	LValue LValue
}

func ConstOp(c Constant) Operand { return Operand{Kind: OperandConst, Const: c} }
func LValueOp(lv LValue) Operand { return Operand{Kind: OperandLValue, LValue: lv} }

// UnitOp is the operand produced by expressions without a value.
func UnitOp() Operand { return ConstOp(Constant{Kind: ConstUnit}) }

type BinOp uint8

const (
	BinAdd BinOp = iota
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

var binOpNames = [...]string{"Add", "Sub", "Mul", "Div", "And", "Or", "Eq", "Ne", "Lt", "Le", "Gt", "Ge"}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "BinOp?"
}

// IsComparison reports whether op yields a bool from two operands of
// another type.
func (op BinOp) IsComparison() bool { return op >= BinEq }

type UnOp uint8

const (
	UnNegate UnOp = iota
	UnNot
)

func (op UnOp) String() string {
	if op == UnNot {
		return "Not"
	}
	return "Negate"
}

type RValueKind uint8

const (
	RUse RValueKind = iota
	RBinOp
	RUnOp
	RCast
	RAddressOf
)

// RValue is the right-hand side of an assignment. OperandType is the type
// of L (and R); backends need it to choose signed or unsigned forms.
type RValue struct {
	Kind        RValueKind
	BinOp       BinOp
	UnOp        UnOp
	L, R        Operand
	OperandType types.Type
	CastTo      types.Type
	Place       LValue
}

func Use(op Operand) RValue { return RValue{Kind: RUse, L: op} }

// Statement is an assignment; the MIR has no other statement kind.
type Statement struct {
	LValue LValue
	RValue RValue
	Span   source.Span
}

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoTo
	TermCondGoTo
	TermCallFn
)

type CalleeKind uint8

const (
	CalleeFunction CalleeKind = iota
	CalleeCoroutineInit
	CalleeExtern
)

func (k CalleeKind) String() string {
	switch k {
	case CalleeCoroutineInit:
		return "coroutine"
	case CalleeExtern:
		return "extern"
	}
	return "fn"
}

// CallFn transfers control to a routine and continues in Reentry.
type CallFn struct {
	Callee  types.Path
	Kind    CalleeKind
	Args    []Operand
	HasDest bool
	Dest    LValue
	Reentry BlockID
}

type Terminator struct {
	Kind TermKind
	Span source.Span

	Target BlockID // TermGoTo

	Cond        Operand // TermCondGoTo
	True, False BlockID

	Call *CallFn
}

// Successors lists the blocks control may flow to.
func (t *Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermGoTo:
		return []BlockID{t.Target}
	case TermCondGoTo:
		return []BlockID{t.True, t.False}
	case TermCallFn:
		return []BlockID{t.Call.Reentry}
	}
	return nil
}

type BasicBlock struct {
	ID    BlockID
	Stmts []Statement
	Term  Terminator
}

func (b *BasicBlock) Terminated() bool {
	return b.Term.Kind != TermNone
}
