package mir

import (
	"fmt"

	"bramble/internal/diag"
)

// Traverser replays a Project against a Transformer. It owns no code
// generation logic of its own.
type Traverser[L, V any] struct {
	proj *Project
	xf   Transformer[L, V]

	proc  *Procedure
	vars  []L
	temps []L
}

func NewTraverser[L, V any](proj *Project, xf Transformer[L, V]) *Traverser[L, V] {
	return &Traverser[L, V]{proj: proj, xf: xf}
}

// Map visits every procedure of the project in order.
func (t *Traverser[L, V]) Map() error {
	if t.proj == nil {
		return nil
	}
	for _, proc := range t.proj.Procs {
		if err := t.MapProcedure(proc); err != nil {
			return fmt.Errorf("%s: %w", proc.Path, err)
		}
	}
	return nil
}

func (t *Traverser[L, V]) MapProcedure(proc *Procedure) error {
	t.proc = proc
	t.vars = make([]L, len(proc.Vars))
	t.temps = make([]L, len(proc.Temps))
	defer func() { t.proc = nil }()

	if err := t.xf.BeginProcedure(proc); err != nil {
		return err
	}
	for i := range proc.Blocks {
		if err := t.xf.CreateBlock(proc.Blocks[i].ID); err != nil {
			return err
		}
	}
	if err := t.xf.SetBlock(EntryBlock); err != nil {
		return err
	}
	for i, decl := range proc.Vars {
		loc, err := t.xf.AllocVar(VarID(i), decl) //nolint:gosec // bounded by AddVar
		if err != nil {
			return err
		}
		t.vars[i] = loc
	}
	for i, decl := range proc.Temps {
		loc, err := t.xf.AllocTemp(TempID(i), decl) //nolint:gosec // bounded by AddTemp
		if err != nil {
			return err
		}
		t.temps[i] = loc
	}
	for i, id := range proc.Params {
		decl := proc.Var(id)
		v, err := t.xf.Param(i, decl)
		if err != nil {
			return err
		}
		if err := t.xf.Assign(decl.Span, t.vars[id], v); err != nil {
			return err
		}
	}

	for i := range proc.Blocks {
		bb := &proc.Blocks[i]
		if err := t.xf.SetBlock(bb.ID); err != nil {
			return err
		}
		for j := range bb.Stmts {
			if err := t.statement(&bb.Stmts[j]); err != nil {
				return err
			}
		}
		if err := t.terminator(&bb.Term); err != nil {
			return err
		}
	}
	return t.xf.EndProcedure()
}

func (t *Traverser[L, V]) statement(st *Statement) error {
	dst, err := t.lvalue(st.LValue)
	if err != nil {
		return err
	}
	v, err := t.rvalue(st.RValue)
	if err != nil {
		return err
	}
	return t.xf.Assign(st.Span, dst, v)
}

func (t *Traverser[L, V]) lvalue(lv LValue) (L, error) {
	var zero L
	switch lv.Kind {
	case LVar:
		if lv.Var < 0 || int(lv.Var) >= len(t.vars) {
			return zero, diag.Newf(diag.MirInvalid, "mir: %s: unknown variable %s", t.proc.Name, lv.Var)
		}
		return t.vars[lv.Var], nil
	case LTemp:
		if lv.Temp < 0 || int(lv.Temp) >= len(t.temps) {
			return zero, diag.Newf(diag.MirInvalid, "mir: %s: unknown temp %s", t.proc.Name, lv.Temp)
		}
		return t.temps[lv.Temp], nil
	case LReturnPointer:
		return t.xf.ReturnPointer()
	case LStatic:
		return t.xf.Static(lv.Static)
	case LAccess:
		base, err := t.lvalue(lv.Access.Base)
		if err != nil {
			return zero, err
		}
		proj := lv.Access.Proj
		if proj.Kind == ProjField {
			layout, ok := t.proj.Struct(proj.Struct)
			if !ok {
				return zero, diag.Newf(diag.MirInvalid, "mir: no layout for struct %s", proj.Struct)
			}
			return t.xf.Field(base, layout, proj.Idx)
		}
		idx, err := t.operand(proj.Index)
		if err != nil {
			return zero, err
		}
		return t.xf.Index(base, idx)
	}
	return zero, diag.Newf(diag.MirInvalid, "mir: unknown lvalue kind %d", lv.Kind)
}

func (t *Traverser[L, V]) operand(op Operand) (V, error) {
	if op.Kind == OperandConst {
		return t.constant(op.Const)
	}
	loc, err := t.lvalue(op.LValue)
	if err != nil {
		var zero V
		return zero, err
	}
	return t.xf.Load(loc)
}

func (t *Traverser[L, V]) rvalue(rv RValue) (V, error) {
	var zero V
	switch rv.Kind {
	case RUse:
		return t.operand(rv.L)
	case RBinOp:
		l, err := t.operand(rv.L)
		if err != nil {
			return zero, err
		}
		r, err := t.operand(rv.R)
		if err != nil {
			return zero, err
		}
		return t.xf.BinOp(rv.BinOp, rv.OperandType, l, r)
	case RUnOp:
		x, err := t.operand(rv.L)
		if err != nil {
			return zero, err
		}
		return t.xf.UnOp(rv.UnOp, rv.OperandType, x)
	case RCast:
		x, err := t.operand(rv.L)
		if err != nil {
			return zero, err
		}
		return t.xf.Cast(x, rv.OperandType, rv.CastTo)
	case RAddressOf:
		loc, err := t.lvalue(rv.Place)
		if err != nil {
			return zero, err
		}
		return t.xf.AddressOf(loc)
	}
	return zero, diag.Newf(diag.MirInvalid, "mir: unknown rvalue kind %d", rv.Kind)
}

func (t *Traverser[L, V]) constant(c Constant) (V, error) {
	x := t.xf
	switch c.Kind {
	case ConstUnit:
		return x.ConstUnit(), nil
	case ConstI8:
		return x.ConstI8(int8(c.Bits)), nil //nolint:gosec // truncation to declared width
	case ConstI16:
		return x.ConstI16(int16(c.Bits)), nil //nolint:gosec // truncation to declared width
	case ConstI32:
		return x.ConstI32(int32(c.Bits)), nil //nolint:gosec // truncation to declared width
	case ConstI64:
		return x.ConstI64(c.Int64()), nil
	case ConstU8:
		return x.ConstU8(uint8(c.Bits)), nil //nolint:gosec // truncation to declared width
	case ConstU16:
		return x.ConstU16(uint16(c.Bits)), nil //nolint:gosec // truncation to declared width
	case ConstU32:
		return x.ConstU32(uint32(c.Bits)), nil //nolint:gosec // truncation to declared width
	case ConstU64:
		return x.ConstU64(c.Bits), nil
	case ConstBool:
		return x.ConstBool(c.Bool), nil
	case ConstStringLiteral:
		return x.ConstStringLiteral(c.Str)
	case ConstNull:
		return x.ConstNull(), nil
	case ConstSizeOf:
		return x.ConstSizeOf(c.SizeOf)
	}
	var zero V
	return zero, diag.Newf(diag.MirInvalid, "mir: unknown constant kind %d", c.Kind)
}

func (t *Traverser[L, V]) terminator(term *Terminator) error {
	switch term.Kind {
	case TermReturn:
		return t.xf.TermReturn(term.Span)
	case TermGoTo:
		return t.xf.TermGoTo(term.Span, term.Target)
	case TermCondGoTo:
		cond, err := t.operand(term.Cond)
		if err != nil {
			return err
		}
		return t.xf.TermCondGoTo(term.Span, cond, term.True, term.False)
	case TermCallFn:
		return t.call(term)
	}
	return diag.Errorf(diag.MirInvalid, term.Span, "mir: %s: unterminated block", t.proc.Name)
}

func (t *Traverser[L, V]) call(term *Terminator) error {
	c := term.Call
	sig, ok := t.proj.Signature(c.Callee)
	if !ok {
		// вызов без известной сигнатуры: собираем её из пути и аргументов
		sig = Signature{Path: c.Callee, Kind: c.Kind}
	}
	args := make([]V, 0, len(c.Args))
	for _, a := range c.Args {
		v, err := t.operand(a)
		if err != nil {
			return err
		}
		args = append(args, v)
	}
	var dest *L
	if c.HasDest {
		loc, err := t.lvalue(c.Dest)
		if err != nil {
			return err
		}
		dest = &loc
	}
	return t.xf.TermCall(term.Span, sig, args, dest, c.Reentry)
}
