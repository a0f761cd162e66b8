package mir

import (
	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/types"
)

var binOps = [...]BinOp{
	ast.BinAdd: BinAdd,
	ast.BinSub: BinSub,
	ast.BinMul: BinMul,
	ast.BinDiv: BinDiv,
	ast.BinAnd: BinAnd,
	ast.BinOr:  BinOr,
	ast.BinEq:  BinEq,
	ast.BinNe:  BinNe,
	ast.BinLt:  BinLt,
	ast.BinLe:  BinLe,
	ast.BinGt:  BinGt,
	ast.BinGe:  BinGe,
}

func (l *funcLowerer) lowerExpr(e *ast.Expr) (Operand, error) {
	if l.curBlock().Terminated() {
		return UnitOp(), nil
	}
	switch e.Kind {
	case ast.ExprIntLit:
		return ConstOp(IntConst(e.Int.Type, e.Int.Value)), nil
	case ast.ExprBoolLit:
		return ConstOp(Constant{Kind: ConstBool, Bool: e.Bool}), nil
	case ast.ExprStringLit:
		return ConstOp(Constant{Kind: ConstStringLiteral, Str: e.Str}), nil
	case ast.ExprIdent:
		return LValueOp(VarLV(l.lookupVar(e.Name))), nil
	case ast.ExprArray:
		return l.lowerArray(e)
	case ast.ExprArrayAt:
		return l.lowerArrayAt(e)
	case ast.ExprMember:
		return l.lowerMember(e)
	case ast.ExprBinary:
		return l.lowerBinary(e)
	case ast.ExprUnary:
		return l.lowerUnary(e)
	case ast.ExprIf:
		return l.lowerIf(e)
	case ast.ExprWhile:
		return l.lowerWhile(e)
	case ast.ExprCall:
		return l.lowerCall(e)
	case ast.ExprBlock:
		return l.lowerBlock(e)
	case ast.ExprStruct:
		return l.lowerStruct(e)
	case ast.ExprYield:
		return Operand{}, diag.Errorf(diag.MirUnsupported, e.Ann.Span, "yield in %s cannot be lowered to MIR", l.proc.Path)
	}
	return Operand{}, diag.Errorf(diag.MirInvalid, e.Ann.Span, "mir: unexpected expression kind %s", e.Kind)
}

// lowerPlace lowers e and returns it as a location, spilling constants
// into a temporary.
func (l *funcLowerer) lowerPlace(e *ast.Expr) (LValue, error) {
	op, err := l.lowerExpr(e)
	if err != nil {
		return LValue{}, err
	}
	if op.Kind == OperandLValue {
		return op.LValue, nil
	}
	return l.tempStore(Use(op), e.Ann.Type, e.Ann.Span).LValue, nil
}

func (l *funcLowerer) lowerBinary(e *ast.Expr) (Operand, error) {
	bin := e.Binary
	left, err := l.lowerExpr(bin.Left)
	if err != nil {
		return Operand{}, err
	}
	right, err := l.lowerExpr(bin.Right)
	if err != nil {
		return Operand{}, err
	}
	rv := RValue{Kind: RBinOp, BinOp: binOps[bin.Op], L: left, R: right, OperandType: bin.Left.Ann.Type}
	return l.tempStore(rv, e.Ann.Type, e.Ann.Span), nil
}

func (l *funcLowerer) lowerUnary(e *ast.Expr) (Operand, error) {
	un := e.Unary
	x, err := l.lowerExpr(un.Operand)
	if err != nil {
		return Operand{}, err
	}
	op := UnNegate
	if un.Op == ast.UnNot {
		op = UnNot
	}
	rv := RValue{Kind: RUnOp, UnOp: op, L: x, OperandType: un.Operand.Ann.Type}
	return l.tempStore(rv, e.Ann.Type, e.Ann.Span), nil
}

// lowerIf builds then/else/merge blocks. A value-producing if writes both
// arms into one shared temporary that the merge block reads.
func (l *funcLowerer) lowerIf(e *ast.Expr) (Operand, error) {
	data := e.If
	thenBB := l.newBlock()
	elseBB := NoBlockID
	if data.Else != nil {
		elseBB = l.newBlock()
	}
	mergeBB := l.newBlock()

	cond, err := l.lowerExpr(data.Cond)
	if err != nil {
		return Operand{}, err
	}
	falseBB := mergeBB
	if elseBB != NoBlockID {
		falseBB = elseBB
	}
	l.setTerm(Terminator{Kind: TermCondGoTo, Span: data.Cond.Ann.Span, Cond: cond, True: thenBB, False: falseBB})

	hasValue := data.Else != nil && !data.Then.Ann.Type.IsUnit()
	result := TempID(-1)
	if hasValue {
		result = l.newTemp(e.Ann.Type)
	}

	arm := func(bb BlockID, body *ast.Expr) error {
		l.startBlock(bb)
		v, err := l.lowerExpr(body)
		if err != nil {
			return err
		}
		if hasValue {
			l.emit(TempLV(result), Use(v), body.Ann.Span)
		}
		l.setTerm(Terminator{Kind: TermGoTo, Span: body.Ann.Span.ZeroideToEnd(), Target: mergeBB})
		return nil
	}
	if err := arm(thenBB, data.Then); err != nil {
		return Operand{}, err
	}
	if data.Else != nil {
		if err := arm(elseBB, data.Else); err != nil {
			return Operand{}, err
		}
	}

	l.startBlock(mergeBB)
	if !hasValue {
		return UnitOp(), nil
	}
	return LValueOp(TempLV(result)), nil
}

func (l *funcLowerer) lowerWhile(e *ast.Expr) (Operand, error) {
	data := e.While
	header := l.newBlock()
	body := l.newBlock()
	exit := l.newBlock()

	l.setTerm(Terminator{Kind: TermGoTo, Span: e.Ann.Span.ZeroideToStart(), Target: header})

	l.startBlock(header)
	cond, err := l.lowerExpr(data.Cond)
	if err != nil {
		return Operand{}, err
	}
	l.setTerm(Terminator{Kind: TermCondGoTo, Span: data.Cond.Ann.Span, Cond: cond, True: body, False: exit})

	l.startBlock(body)
	if _, err := l.lowerExpr(data.Body); err != nil {
		return Operand{}, err
	}
	l.setTerm(Terminator{Kind: TermGoTo, Span: data.Body.Ann.Span.ZeroideToEnd(), Target: header})

	l.startBlock(exit)
	return UnitOp(), nil
}

func (l *funcLowerer) lowerBlock(e *ast.Expr) (Operand, error) {
	data := e.Block
	l.pushScope()
	defer l.popScope()
	for _, st := range data.Stmts {
		if err := l.lowerStmt(st); err != nil {
			return Operand{}, err
		}
	}
	if data.Final == nil {
		return UnitOp(), nil
	}
	return l.lowerExpr(data.Final)
}

func calleeKind(k ast.CallKind) CalleeKind {
	switch k {
	case ast.CallCoroutineInit:
		return CalleeCoroutineInit
	case ast.CallExtern:
		return CalleeExtern
	}
	return CalleeFunction
}

// lowerCall ends the current block with a CallFn terminator and continues
// in a fresh reentry block. Unit results get no destination.
func (l *funcLowerer) lowerCall(e *ast.Expr) (Operand, error) {
	data := e.Call
	var args []Operand
	if len(data.Args) > 0 {
		args = make([]Operand, 0, len(data.Args))
	}
	for _, a := range data.Args {
		v, err := l.lowerExpr(a)
		if err != nil {
			return Operand{}, err
		}
		args = append(args, v)
	}
	call := &CallFn{Callee: data.Path.Clone(), Kind: calleeKind(data.Call), Args: args}
	result := UnitOp()
	if !e.Ann.Type.IsUnit() {
		t := l.newTemp(e.Ann.Type)
		call.HasDest = true
		call.Dest = TempLV(t)
		result = LValueOp(call.Dest)
	}
	call.Reentry = l.newBlock()
	l.setTerm(Terminator{Kind: TermCallFn, Span: e.Ann.Span, Call: call})
	l.startBlock(call.Reentry)
	return result, nil
}

func (l *funcLowerer) layout(path types.Path, e *ast.Expr) (StructLayout, error) {
	st, ok := l.proj.Struct(path)
	if !ok {
		return StructLayout{}, diag.Errorf(diag.MirInvalid, e.Ann.Span, "mir: no layout for struct %s", path)
	}
	return st, nil
}

func (l *funcLowerer) fieldLV(base LValue, st StructLayout, name string, e *ast.Expr) (LValue, error) {
	idx, ok := st.FieldIndex(name)
	if !ok {
		return LValue{}, diag.Errorf(diag.MirInvalid, e.Ann.Span, "mir: struct %s has no field %s", st.Path, name)
	}
	return FieldLV(base, st.Path, name, idx), nil
}

func (l *funcLowerer) lowerStruct(e *ast.Expr) (Operand, error) {
	st, err := l.layout(e.Ann.Type.Path, e)
	if err != nil {
		return Operand{}, err
	}
	t := l.newTemp(e.Ann.Type)
	for _, f := range e.Struct.Fields {
		v, err := l.lowerExpr(f.Value)
		if err != nil {
			return Operand{}, err
		}
		dst, err := l.fieldLV(TempLV(t), st, f.Name, e)
		if err != nil {
			return Operand{}, err
		}
		l.emit(dst, Use(v), f.Value.Ann.Span)
	}
	return LValueOp(TempLV(t)), nil
}

func (l *funcLowerer) lowerMember(e *ast.Expr) (Operand, error) {
	data := e.Member
	base, err := l.lowerPlace(data.Base)
	if err != nil {
		return Operand{}, err
	}
	st, err := l.layout(data.Base.Ann.Type.Path, e)
	if err != nil {
		return Operand{}, err
	}
	lv, err := l.fieldLV(base, st, data.Member, e)
	if err != nil {
		return Operand{}, err
	}
	return LValueOp(lv), nil
}

func (l *funcLowerer) lowerArray(e *ast.Expr) (Operand, error) {
	t := l.newTemp(e.Ann.Type)
	for i, el := range e.Array.Elems {
		v, err := l.lowerExpr(el)
		if err != nil {
			return Operand{}, err
		}
		l.emit(IndexLV(TempLV(t), ConstOp(i64Const(i))), Use(v), el.Ann.Span)
	}
	return LValueOp(TempLV(t)), nil
}

func (l *funcLowerer) lowerArrayAt(e *ast.Expr) (Operand, error) {
	data := e.Index
	base, err := l.lowerPlace(data.Array)
	if err != nil {
		return Operand{}, err
	}
	idx, err := l.lowerExpr(data.Index)
	if err != nil {
		return Operand{}, err
	}
	return LValueOp(IndexLV(base, idx)), nil
}
