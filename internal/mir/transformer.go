package mir

import (
	"bramble/internal/source"
	"bramble/internal/types"
)

// Transformer is implemented by code generators driven by a Traverser.
// L is the backend's representation of an addressable location and V of a
// loaded value. Methods are called in program order for one procedure at a
// time; a returned error aborts the traversal.
type Transformer[L, V any] interface {
	// BeginProcedure opens a procedure; EndProcedure closes it once every
	// block has been replayed.
	BeginProcedure(proc *Procedure) error
	EndProcedure() error

	// CreateBlock is called for every block before any is selected, so
	// forward branches can name their targets.
	CreateBlock(id BlockID) error
	SetBlock(id BlockID) error

	// Storage. AllocVar and AllocTemp run in the entry block.
	AllocVar(id VarID, decl VarDecl) (L, error)
	AllocTemp(id TempID, decl TempDecl) (L, error)
	// Param returns the incoming value of the index-th parameter.
	Param(index int, decl VarDecl) (V, error)

	ReturnPointer() (L, error)
	Static(name string) (L, error)
	Field(base L, layout StructLayout, index int) (L, error)
	Index(base L, index V) (L, error)

	Assign(span source.Span, dst L, v V) error
	Load(src L) (V, error)
	BinOp(op BinOp, operand types.Type, l, r V) (V, error)
	UnOp(op UnOp, operand types.Type, x V) (V, error)
	Cast(v V, from, to types.Type) (V, error)
	AddressOf(place L) (V, error)

	ConstUnit() V
	ConstI8(v int8) V
	ConstI16(v int16) V
	ConstI32(v int32) V
	ConstI64(v int64) V
	ConstU8(v uint8) V
	ConstU16(v uint16) V
	ConstU32(v uint32) V
	ConstU64(v uint64) V
	ConstBool(v bool) V
	ConstStringLiteral(s string) (V, error)
	ConstNull() V
	ConstSizeOf(t types.Type) (V, error)

	TermReturn(span source.Span) error
	TermGoTo(span source.Span, target BlockID) error
	TermCondGoTo(span source.Span, cond V, ifTrue, ifFalse BlockID) error
	// TermCall transfers to sig; dest is nil when the result is discarded.
	TermCall(span source.Span, sig Signature, args []V, dest *L, reentry BlockID) error
}
