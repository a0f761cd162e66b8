package sema

import (
	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

func (r *resolver) exprs(in []*ast.Expr) ([]*ast.Expr, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]*ast.Expr, len(in))
	for i, e := range in {
		res, err := r.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// expr returns a resolved copy of e with Ann.Type set.
func (r *resolver) expr(e *ast.Expr) (*ast.Expr, error) {
	out := &ast.Expr{Kind: e.Kind, Ann: e.Ann}
	span := e.Ann.Span

	var (
		ty  types.Type
		err error
	)
	switch e.Kind {
	case ast.ExprIntLit:
		lit := *e.Int
		if !lit.Type.IsIntegral() {
			return nil, diag.Errorf(diag.SemaInfo, span, "integer literal %d has non-integral type %s", lit.Value, lit.Type)
		}
		out.Int = &lit
		ty = lit.Type
	case ast.ExprBoolLit:
		out.Bool = e.Bool
		ty = types.Bool
	case ast.ExprStringLit:
		out.Str = e.Str
		ty = types.StringLiteral
	case ast.ExprArray:
		ty, err = r.array(e, out)
	case ast.ExprArrayAt:
		ty, err = r.arrayAt(e, out)
	case ast.ExprIdent:
		var sym symbols.Symbol
		sym, err = r.scopes.LookupVar(e.Name)
		out.Name = e.Name
		ty = sym.Type
	case ast.ExprMember:
		ty, err = r.member(e, out)
	case ast.ExprBinary:
		ty, err = r.binary(e, out)
	case ast.ExprUnary:
		ty, err = r.unary(e, out)
	case ast.ExprIf:
		ty, err = r.ifExpr(e, out)
	case ast.ExprWhile:
		ty, err = r.while(e, out)
	case ast.ExprYield:
		var co *ast.Expr
		if co, err = r.expr(e.Yield); err != nil {
			return nil, err
		}
		out.Yield = co
		if co.Ann.Type.Kind != types.KindCoroutine {
			return nil, diag.Errorf(diag.SemaYieldInvalidType, span, "Yield expects co<_> but got %s", co.Ann.Type)
		}
		ty = co.Ann.Type.ElemType()
	case ast.ExprCall:
		ty, err = r.call(e, out)
	case ast.ExprBlock:
		ty, err = r.block(e, out)
	case ast.ExprStruct:
		ty, err = r.structExpr(e, out)
	default:
		return nil, diag.Errorf(diag.SemaInfo, span, "unsupported expression kind %s", e.Kind)
	}
	if err != nil {
		return nil, diag.Attach(err, span)
	}
	out.Ann.Type = ty
	return out, nil
}

func (r *resolver) array(e, out *ast.Expr) (types.Type, error) {
	elems, err := r.exprs(e.Array.Elems)
	if err != nil {
		return types.Unknown, err
	}
	out.Array = &ast.ArrayData{Elems: elems}
	if len(elems) == 0 {
		return types.Unknown, errArrayInvalidSize(0)
	}
	el := elems[0].Ann.Type
	for _, x := range elems[1:] {
		if !x.Ann.Type.Equal(el) {
			return types.Unknown, diag.Errorf(diag.SemaArrayInconsistentElementTypes, x.Ann.Span,
				"Inconsistent types in array value: expected %s but found %s", el, x.Ann.Type)
		}
	}
	return types.Array(el, int64(len(elems))), nil
}

func (r *resolver) arrayAt(e, out *ast.Expr) (types.Type, error) {
	arr, err := r.expr(e.Index.Array)
	if err != nil {
		return types.Unknown, err
	}
	if arr.Ann.Type.Kind != types.KindArray {
		return types.Unknown, diag.Errorf(diag.SemaArrayIndexingInvalidType, arr.Ann.Span,
			"Expected array type on LHS of [] but found %s", arr.Ann.Type)
	}
	idx, err := r.expr(e.Index.Index)
	if err != nil {
		return types.Unknown, err
	}
	if !idx.Ann.Type.IsIntegral() {
		return types.Unknown, diag.Errorf(diag.SemaArrayIndexingInvalidIndexType, idx.Ann.Span,
			"Expected integral type for index but found %s", idx.Ann.Type)
	}
	out.Index = &ast.IndexData{Array: arr, Index: idx}
	return arr.Ann.Type.ElemType(), nil
}

func (r *resolver) member(e, out *ast.Expr) (types.Type, error) {
	base, err := r.expr(e.Member.Base)
	if err != nil {
		return types.Unknown, err
	}
	out.Member = &ast.MemberData{Base: base, Member: e.Member.Member}
	bt := base.Ann.Type
	if bt.Kind != types.KindCustom {
		return types.Unknown, diag.Newf(diag.SemaMemberAccessInvalidRootType,
			"Member access invalid root type: %s is not a structure", bt)
	}
	sym, _, err := r.scopes.LookupSymbolByPath(bt.Path)
	if err != nil {
		return types.Unknown, err
	}
	ft, _, ok := sym.Type.Field(e.Member.Member)
	if sym.Type.Kind != types.KindStructDef || !ok {
		return types.Unknown, diag.Newf(diag.SemaMemberAccessMemberNotFound,
			"%s does not have member %s", bt.Path, e.Member.Member)
	}
	return ft, nil
}

func (r *resolver) binary(e, out *ast.Expr) (types.Type, error) {
	op := e.Binary.Op
	l, err := r.expr(e.Binary.Left)
	if err != nil {
		return types.Unknown, err
	}
	rr, err := r.expr(e.Binary.Right)
	if err != nil {
		return types.Unknown, err
	}
	out.Binary = &ast.BinaryData{Op: op, Left: l, Right: rr}
	lt, rt := l.Ann.Type, rr.Ann.Type

	opExpected := func(want types.Type) error {
		return diag.Newf(diag.SemaOpExpected, "%s expected %s but found %s and %s", op, want, lt, rt)
	}
	switch {
	case op.IsArithmetic():
		if !lt.IsIntegral() || !rt.IsIntegral() || !lt.Equal(rt) {
			want := types.I64
			if lt.IsIntegral() {
				want = lt
			}
			return types.Unknown, opExpected(want)
		}
		return lt, nil
	case op.IsLogical():
		if !lt.Equal(types.Bool) || !rt.Equal(types.Bool) {
			return types.Unknown, opExpected(types.Bool)
		}
		return types.Bool, nil
	default:
		if !lt.Equal(rt) {
			return types.Unknown, opExpected(lt)
		}
		return types.Bool, nil
	}
}

func (r *resolver) unary(e, out *ast.Expr) (types.Type, error) {
	op := e.Unary.Op
	x, err := r.expr(e.Unary.Operand)
	if err != nil {
		return types.Unknown, err
	}
	out.Unary = &ast.UnaryData{Op: op, Operand: x}
	xt := x.Ann.Type
	switch op {
	case ast.UnNegate:
		if !xt.IsSigned() {
			return types.Unknown, diag.Newf(diag.SemaExpectedSignedInteger, "%s expected a signed integer but found %s", op, xt)
		}
	case ast.UnNot:
		if !xt.Equal(types.Bool) {
			return types.Unknown, diag.Newf(diag.SemaExpectedBool, "%s expected bool but found %s", op, xt)
		}
	}
	return xt, nil
}

func (r *resolver) ifExpr(e, out *ast.Expr) (types.Type, error) {
	cond, err := r.expr(e.If.Cond)
	if err != nil {
		return types.Unknown, err
	}
	if !cond.Ann.Type.Equal(types.Bool) {
		return types.Unknown, diag.Errorf(diag.SemaCondExpectedBool, cond.Ann.Span,
			"Expected boolean expression in if conditional, got: %s", cond.Ann.Type)
	}
	then, err := r.expr(e.If.Then)
	if err != nil {
		return types.Unknown, err
	}
	elseTy := types.Unit
	var els *ast.Expr
	if e.If.Else != nil {
		if els, err = r.expr(e.If.Else); err != nil {
			return types.Unknown, err
		}
		elseTy = els.Ann.Type
	}
	out.If = &ast.IfData{Cond: cond, Then: then, Else: els}
	if !then.Ann.Type.Equal(elseTy) {
		return types.Unknown, diag.Newf(diag.SemaIfExprMismatchArms,
			"If expression has mismatching arms: expected %s got %s", then.Ann.Type, elseTy)
	}
	return then.Ann.Type, nil
}

func (r *resolver) while(e, out *ast.Expr) (types.Type, error) {
	cond, err := r.expr(e.While.Cond)
	if err != nil {
		return types.Unknown, err
	}
	if !cond.Ann.Type.Equal(types.Bool) {
		return types.Unknown, diag.Errorf(diag.SemaWhileCondInvalidType, cond.Ann.Span,
			"The condition of a while expression must resolve to the bool type, but got: %s", cond.Ann.Type)
	}
	body, err := r.expr(e.While.Body)
	if err != nil {
		return types.Unknown, err
	}
	if !body.Ann.Type.IsUnit() {
		return types.Unknown, diag.Errorf(diag.SemaWhileInvalidType, body.Ann.Span,
			"The body of a while expression must resolve to the unit type, but got: %s", body.Ann.Type)
	}
	out.While = &ast.WhileData{Cond: cond, Body: body}
	return types.Unit, nil
}

func (r *resolver) block(e, out *ast.Expr) (types.Type, error) {
	r.scopes.EnterScope(symbols.NewBlockTable())
	stmts, err := r.stmts(e.Block.Stmts)
	if err != nil {
		r.scopes.LeaveScope()
		return types.Unknown, err
	}
	ty := types.Unit
	var final *ast.Expr
	if e.Block.Final != nil {
		if final, err = r.expr(e.Block.Final); err != nil {
			r.scopes.LeaveScope()
			return types.Unknown, err
		}
		ty = final.Ann.Type
	}
	out.Ann.Sym = r.scopes.LeaveScope()
	out.Block = &ast.BlockData{Stmts: stmts, Final: final}
	return ty, nil
}

func (r *resolver) structExpr(e, out *ast.Expr) (types.Type, error) {
	sd := e.Struct
	sym, canon, err := r.scopes.LookupSymbolByPath(sd.Path)
	if err != nil {
		return types.Unknown, err
	}
	if sym.Type.Kind != types.KindStructDef {
		return types.Unknown, diag.Newf(diag.SemaInvalidStructure, "Not a valid structure definition: %s", sd.Path)
	}
	if len(sd.Fields) != len(sym.Type.Fields) {
		return types.Unknown, diag.Newf(diag.SemaStructExprWrongNumParams,
			"Struct expected %d parameters but found %d", len(sym.Type.Fields), len(sd.Fields))
	}
	fields := make([]ast.FieldInit, len(sd.Fields))
	for i, f := range sd.Fields {
		expected, _, ok := sym.Type.Field(f.Name)
		if !ok {
			return types.Unknown, diag.Newf(diag.SemaStructExprMemberNotFound, "member %s not found on %s", f.Name, canon)
		}
		val, err := r.expr(f.Value)
		if err != nil {
			return types.Unknown, err
		}
		if !val.Ann.Type.Equal(expected) {
			return types.Unknown, diag.Errorf(diag.SemaStructExprFieldTypeMismatch, val.Ann.Span,
				"%s.%s expects %s but got %s", canon, f.Name, expected, val.Ann.Type)
		}
		fields[i] = ast.FieldInit{Name: f.Name, Value: val}
	}
	out.Struct = &ast.StructData{Path: canon, Fields: fields}
	return types.Custom(canon), nil
}
