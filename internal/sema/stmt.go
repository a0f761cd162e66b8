package sema

import (
	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

func (r *resolver) stmts(in []*ast.Stmt) ([]*ast.Stmt, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]*ast.Stmt, 0, len(in))
	for _, s := range in {
		res, err := r.stmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *resolver) stmt(s *ast.Stmt) (*ast.Stmt, error) {
	out := &ast.Stmt{Kind: s.Kind, Ann: s.Ann}
	span := s.Ann.Span

	switch s.Kind {
	case ast.StmtBind:
		b := s.Bind
		declared, err := r.scopes.CanonizeLocalTypeRef(b.Type)
		if err != nil {
			return nil, diag.Attach(err, span)
		}
		if err := r.validType(declared, span); err != nil {
			return nil, err
		}
		val, err := r.expr(b.Value)
		if err != nil {
			return nil, err
		}
		if !declared.Equal(val.Ann.Type) {
			return nil, diag.Errorf(diag.SemaBindExpected, span, "Bind expected %s but got %s", declared, val.Ann.Type)
		}
		var flags symbols.SymbolFlags
		if b.Mutable {
			flags |= symbols.SymbolMutable
		}
		if err := r.scopes.Add(b.Name, declared, flags); err != nil {
			return nil, diag.Attach(err, span)
		}
		out.Bind = &ast.BindStmt{Name: b.Name, Mutable: b.Mutable, Type: declared, Value: val}
		out.Ann.Type = declared

	case ast.StmtMutate:
		m := s.Mutate
		val, err := r.expr(m.Value)
		if err != nil {
			return nil, err
		}
		sym, err := r.scopes.LookupVar(m.Name)
		if err != nil {
			return nil, diag.Attach(err, span)
		}
		if !sym.IsMutable() {
			return nil, diag.Errorf(diag.SemaVariableNotMutable, span, "Variable %s is not mutable", m.Name)
		}
		if !sym.Type.Equal(val.Ann.Type) {
			return nil, diag.Errorf(diag.SemaBindMismatch, span, "%s is of type %s but is assigned %s", m.Name, sym.Type, val.Ann.Type)
		}
		out.Mutate = &ast.MutateStmt{Name: m.Name, Value: val}
		out.Ann.Type = sym.Type

	case ast.StmtReturn, ast.StmtYieldReturn:
		ret, err := r.returnStmt(s)
		if err != nil {
			return nil, err
		}
		out.Return = ret
		out.Ann.Type = types.Unit
		if ret.Value != nil {
			out.Ann.Type = ret.Value.Ann.Type
		}

	case ast.StmtExpr:
		e, err := r.expr(s.Expr)
		if err != nil {
			return nil, err
		}
		out.Expr = e
		out.Ann.Type = e.Ann.Type

	default:
		return nil, diag.Errorf(diag.SemaInfo, span, "unsupported statement kind %s", s.Kind)
	}
	return out, nil
}

func (r *resolver) returnStmt(s *ast.Stmt) (*ast.ReturnStmt, error) {
	span := s.Ann.Span
	out := &ast.ReturnStmt{}
	actual := types.Unit
	if s.Return != nil && s.Return.Value != nil {
		val, err := r.expr(s.Return.Value)
		if err != nil {
			return nil, err
		}
		out.Value = val
		actual = val.Ann.Type
	}

	yield := s.Kind == ast.StmtYieldReturn
	name, ok := r.scopes.CurrentRoutine()
	if !ok {
		if yield {
			return nil, diag.Errorf(diag.SemaYieldInvalidLocation, span, "yield return must be inside a coroutine")
		}
		return nil, diag.Errorf(diag.SemaReturnInvalidLocation, span, "return must be inside a routine")
	}

	var (
		sym symbols.Symbol
		err error
	)
	if yield {
		sym, err = r.scopes.LookupCoroutine(name)
	} else {
		sym, err = r.scopes.LookupFuncOrCor(name)
	}
	if err != nil {
		return nil, diag.Attach(err, span)
	}

	expected := sym.Type.Return()
	if !expected.Equal(actual) {
		if yield {
			return nil, diag.Errorf(diag.SemaYieldExpected, span, "Yield return expected %s but got %s", expected, actual)
		}
		return nil, diag.Errorf(diag.SemaReturnExpected, span, "Return expected %s but got %s", expected, actual)
	}
	return out, nil
}
