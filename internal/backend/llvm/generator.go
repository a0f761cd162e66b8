package llvm

import (
	"fmt"
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"bramble/internal/diag"
	"bramble/internal/mir"
	"bramble/internal/source"
	"bramble/internal/types"
)

// Place is an addressable location: a pointer and the type it points to.
type Place struct {
	Ptr  value.Value
	Elem lltypes.Type
}

// Generator builds one LLVM module for a MIR project.
type Generator struct {
	proj    *mir.Project
	mod     *ir.Module
	structs map[string]*lltypes.StructType
	funcs   map[string]*ir.Func
	strs    map[string]*ir.Global

	proc    *mir.Procedure
	fn      *ir.Func
	blocks  []*ir.Block
	block   *ir.Block
	retSlot *Place
}

var _ mir.Transformer[Place, value.Value] = (*Generator)(nil)

// Generate lowers every procedure of proj into a fresh LLVM module.
func Generate(proj *mir.Project) (*ir.Module, error) {
	g, err := NewGenerator(proj)
	if err != nil {
		return nil, err
	}
	if err := mir.NewTraverser[Place, value.Value](proj, g).Map(); err != nil {
		return nil, err
	}
	return g.mod, nil
}

// NewGenerator declares the struct types and callees of proj.
func NewGenerator(proj *mir.Project) (*Generator, error) {
	g := &Generator{
		proj:    proj,
		mod:     ir.NewModule(),
		structs: make(map[string]*lltypes.StructType),
		funcs:   make(map[string]*ir.Func),
		strs:    make(map[string]*ir.Global),
	}
	// сначала имена, потом поля: структуры могут ссылаться друг на друга
	for _, path := range proj.StructList {
		st := lltypes.NewStruct()
		g.mod.NewTypeDef(Mangle(path), st)
		g.structs[path.String()] = st
	}
	for _, path := range proj.StructList {
		layout := proj.Structs[path.String()]
		st := g.structs[path.String()]
		for _, f := range layout.Fields {
			ft, err := g.llType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("struct %s: %w", path, err)
			}
			st.Fields = append(st.Fields, ft)
		}
	}

	keys := make([]string, 0, len(proj.Signatures))
	for k := range proj.Signatures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sig := proj.Signatures[k]
		if sig.Kind == mir.CalleeCoroutineInit {
			continue
		}
		if _, err := g.declare(sig); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Generator) Module() *ir.Module { return g.mod }

func (g *Generator) declare(sig mir.Signature) (*ir.Func, error) {
	key := sig.Path.String()
	if f, ok := g.funcs[key]; ok {
		return f, nil
	}
	ret, err := g.retType(sig.Ret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sig.Path, err)
	}
	params := make([]*ir.Param, len(sig.Params))
	for i, p := range sig.Params {
		pt, err := g.llType(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sig.Path, err)
		}
		params[i] = ir.NewParam(fmt.Sprintf("p%d", i), pt)
	}
	f := g.mod.NewFunc(Mangle(sig.Path), ret, params...)
	f.Sig.Variadic = sig.VarArgs
	g.funcs[key] = f
	return f, nil
}

func (g *Generator) unsupported(format string, args ...any) error {
	return diag.Newf(diag.MirUnsupported, "llvm: "+format, args...)
}

func (g *Generator) BeginProcedure(proc *mir.Procedure) error {
	fn, ok := g.funcs[proc.Path.String()]
	if !ok {
		return g.unsupported("no declaration for %s", proc.Path)
	}
	for i, id := range proc.Params {
		fn.Params[i].SetName(proc.Var(id).Name)
	}
	g.proc = proc
	g.fn = fn
	g.blocks = make([]*ir.Block, len(proc.Blocks))
	g.block = nil
	g.retSlot = nil
	return nil
}

func (g *Generator) EndProcedure() error {
	g.proc, g.fn, g.blocks, g.block, g.retSlot = nil, nil, nil, nil, nil
	return nil
}

func (g *Generator) CreateBlock(id mir.BlockID) error {
	g.blocks[id] = g.fn.NewBlock(id.String())
	return nil
}

func (g *Generator) SetBlock(id mir.BlockID) error {
	g.block = g.blocks[id]
	return nil
}

func (g *Generator) alloca(t types.Type, name string) (Place, error) {
	lt, err := g.llType(t)
	if err != nil {
		return Place{}, err
	}
	slot := g.blocks[mir.EntryBlock].NewAlloca(lt)
	slot.SetName(name)
	return Place{Ptr: slot, Elem: lt}, nil
}

func (g *Generator) AllocVar(id mir.VarID, decl mir.VarDecl) (Place, error) {
	return g.alloca(decl.Type, fmt.Sprintf("%s.%d", decl.Name, id))
}

func (g *Generator) AllocTemp(id mir.TempID, decl mir.TempDecl) (Place, error) {
	return g.alloca(decl.Type, id.String())
}

func (g *Generator) Param(index int, _ mir.VarDecl) (value.Value, error) {
	if index >= len(g.fn.Params) {
		return nil, g.unsupported("%s has no parameter %d", g.proc.Path, index)
	}
	return g.fn.Params[index], nil
}

// ReturnPointer allocates the return slot on first use.
func (g *Generator) ReturnPointer() (Place, error) {
	if g.retSlot == nil {
		p, err := g.alloca(g.proc.Ret, "ret")
		if err != nil {
			return Place{}, err
		}
		g.retSlot = &p
	}
	return *g.retSlot, nil
}

func (g *Generator) Static(name string) (Place, error) {
	return Place{}, g.unsupported("static %s", name)
}

func i32(v int) constant.Constant { return constant.NewInt(lltypes.I32, int64(v)) }

func (g *Generator) Field(base Place, layout mir.StructLayout, index int) (Place, error) {
	ft, err := g.llType(layout.Fields[index].Type)
	if err != nil {
		return Place{}, err
	}
	ptr := g.block.NewGetElementPtr(base.Elem, base.Ptr, i32(0), i32(index))
	return Place{Ptr: ptr, Elem: ft}, nil
}

func (g *Generator) Index(base Place, index value.Value) (Place, error) {
	arr, ok := base.Elem.(*lltypes.ArrayType)
	if !ok {
		return Place{}, g.unsupported("index into %s", base.Elem)
	}
	ptr := g.block.NewGetElementPtr(arr, base.Ptr, constant.NewInt(lltypes.I64, 0), index)
	return Place{Ptr: ptr, Elem: arr.ElemType}, nil
}

func (g *Generator) Assign(_ source.Span, dst Place, v value.Value) error {
	g.block.NewStore(v, dst.Ptr)
	return nil
}

func (g *Generator) Load(src Place) (value.Value, error) {
	return g.block.NewLoad(src.Elem, src.Ptr), nil
}

func (g *Generator) BinOp(op mir.BinOp, operand types.Type, l, r value.Value) (value.Value, error) {
	b := g.block
	signed := operand.IsSigned()
	switch op {
	case mir.BinAdd:
		return b.NewAdd(l, r), nil
	case mir.BinSub:
		return b.NewSub(l, r), nil
	case mir.BinMul:
		return b.NewMul(l, r), nil
	case mir.BinDiv:
		if signed {
			return b.NewSDiv(l, r), nil
		}
		return b.NewUDiv(l, r), nil
	case mir.BinAnd:
		return b.NewAnd(l, r), nil
	case mir.BinOr:
		return b.NewOr(l, r), nil
	}
	pred, ok := icmpPred(op, signed)
	if !ok {
		return nil, g.unsupported("binary operator %s", op)
	}
	return b.NewICmp(pred, l, r), nil
}

func icmpPred(op mir.BinOp, signed bool) (enum.IPred, bool) {
	switch op {
	case mir.BinEq:
		return enum.IPredEQ, true
	case mir.BinNe:
		return enum.IPredNE, true
	case mir.BinLt:
		if signed {
			return enum.IPredSLT, true
		}
		return enum.IPredULT, true
	case mir.BinLe:
		if signed {
			return enum.IPredSLE, true
		}
		return enum.IPredULE, true
	case mir.BinGt:
		if signed {
			return enum.IPredSGT, true
		}
		return enum.IPredUGT, true
	case mir.BinGe:
		if signed {
			return enum.IPredSGE, true
		}
		return enum.IPredUGE, true
	}
	return 0, false
}

func (g *Generator) UnOp(op mir.UnOp, operand types.Type, x value.Value) (value.Value, error) {
	lt, err := g.llType(operand)
	if err != nil {
		return nil, err
	}
	it, ok := lt.(*lltypes.IntType)
	if !ok {
		return nil, g.unsupported("unary %s on %s", op, operand)
	}
	if op == mir.UnNot {
		return g.block.NewXor(x, constant.NewInt(it, -1)), nil
	}
	return g.block.NewSub(constant.NewInt(it, 0), x), nil
}

func (g *Generator) Cast(v value.Value, from, to types.Type) (value.Value, error) {
	dst, err := g.llType(to)
	if err != nil {
		return nil, err
	}
	if !from.IsIntegral() || !to.IsIntegral() {
		return g.block.NewBitCast(v, dst), nil
	}
	switch {
	case to.Width < from.Width:
		return g.block.NewTrunc(v, dst), nil
	case to.Width == from.Width:
		return v, nil
	case from.IsSigned():
		return g.block.NewSExt(v, dst), nil
	}
	return g.block.NewZExt(v, dst), nil
}

func (g *Generator) AddressOf(place Place) (value.Value, error) {
	return place.Ptr, nil
}

func (g *Generator) ConstUnit() value.Value       { return constant.NewStruct(unitType) }
func (g *Generator) ConstI8(v int8) value.Value   { return constant.NewInt(lltypes.I8, int64(v)) }
func (g *Generator) ConstI16(v int16) value.Value { return constant.NewInt(lltypes.I16, int64(v)) }
func (g *Generator) ConstI32(v int32) value.Value { return constant.NewInt(lltypes.I32, int64(v)) }
func (g *Generator) ConstI64(v int64) value.Value { return constant.NewInt(lltypes.I64, v) }
func (g *Generator) ConstU8(v uint8) value.Value  { return constant.NewInt(lltypes.I8, int64(v)) }
func (g *Generator) ConstU16(v uint16) value.Value {
	return constant.NewInt(lltypes.I16, int64(v))
}
func (g *Generator) ConstU32(v uint32) value.Value {
	return constant.NewInt(lltypes.I32, int64(v))
}

// ConstU64 keeps the bit pattern; LLVM integers carry no sign.
func (g *Generator) ConstU64(v uint64) value.Value {
	return constant.NewInt(lltypes.I64, int64(v)) //nolint:gosec // bit reinterpretation
}

func (g *Generator) ConstBool(v bool) value.Value { return constant.NewBool(v) }

func (g *Generator) ConstNull() value.Value { return constant.NewNull(lltypes.I8Ptr) }

// ConstStringLiteral interns s as a NUL-terminated private global.
func (g *Generator) ConstStringLiteral(s string) (value.Value, error) {
	glob, ok := g.strs[s]
	if !ok {
		data := constant.NewCharArrayFromString(s + "\x00")
		glob = g.mod.NewGlobalDef(fmt.Sprintf("str.%d", len(g.strs)), data)
		glob.Immutable = true
		glob.Linkage = enum.LinkagePrivate
		g.strs[s] = glob
	}
	zero := constant.NewInt(lltypes.I64, 0)
	return constant.NewGetElementPtr(glob.ContentType, glob, zero, zero), nil
}

// ConstSizeOf is the classic gep-from-null idiom.
func (g *Generator) ConstSizeOf(t types.Type) (value.Value, error) {
	lt, err := g.llType(t)
	if err != nil {
		return nil, err
	}
	null := constant.NewNull(lltypes.NewPointer(lt))
	gep := constant.NewGetElementPtr(lt, null, constant.NewInt(lltypes.I32, 1))
	return constant.NewPtrToInt(gep, lltypes.I64), nil
}

func (g *Generator) TermReturn(source.Span) error {
	if g.proc.Ret.IsUnit() {
		g.block.NewRet(nil)
		return nil
	}
	slot, err := g.ReturnPointer()
	if err != nil {
		return err
	}
	g.block.NewRet(g.block.NewLoad(slot.Elem, slot.Ptr))
	return nil
}

func (g *Generator) TermGoTo(_ source.Span, target mir.BlockID) error {
	g.block.NewBr(g.blocks[target])
	return nil
}

func (g *Generator) TermCondGoTo(_ source.Span, cond value.Value, ifTrue, ifFalse mir.BlockID) error {
	g.block.NewCondBr(cond, g.blocks[ifTrue], g.blocks[ifFalse])
	return nil
}

func (g *Generator) TermCall(_ source.Span, sig mir.Signature, args []value.Value, dest *Place, reentry mir.BlockID) error {
	if sig.Kind == mir.CalleeCoroutineInit {
		return g.unsupported("coroutine call %s", sig.Path)
	}
	callee, ok := g.funcs[sig.Path.String()]
	if !ok {
		return g.unsupported("call to undeclared %s", sig.Path)
	}
	res := g.block.NewCall(callee, args...)
	if dest != nil {
		g.block.NewStore(res, dest.Ptr)
	}
	g.block.NewBr(g.blocks[reentry])
	return nil
}
