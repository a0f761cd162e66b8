package sema

import (
	"errors"
	"fmt"

	"bramble/internal/ast"
	"bramble/internal/types"
)

// CheckResolved verifies that a tree came out of Resolve: every module and
// item has a canonical path, scope nodes carry tables and no statement or
// expression is left with an Unknown type. All violations are joined.
func CheckResolved(root *ast.Module) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	root.Walk(func(m *ast.Module) {
		if !m.Ann.Path.IsCanonical() || m.Ann.Sym == nil {
			bad("module %s is not resolved", m.Name)
		}
		for _, rt := range m.Routines() {
			if !rt.Ann.Path.IsCanonical() || rt.Ann.Sym == nil {
				bad("routine %s is not resolved", rt.Name)
			}
			for _, s := range rt.Body {
				checkStmt(s, rt.Ann.Path, bad)
			}
		}
		for _, st := range m.Structs {
			if !st.Ann.Path.IsCanonical() {
				bad("struct %s has no canonical path", st.Name)
			}
		}
		for _, ex := range m.Externs {
			if ex.Ann.Type.IsUnknown() {
				bad("extern %s has no type", ex.Name)
			}
		}
	})
	return errors.Join(errs...)
}

func relativeCustom(t types.Type) bool {
	return t.Kind == types.KindCustom && !t.Path.IsCanonical()
}

func checkStmt(s *ast.Stmt, owner types.Path, bad func(string, ...any)) {
	if s.Ann.Type.IsUnknown() {
		bad("%s: %s statement at %s has unknown type", owner, s.Kind, s.Ann.Span)
	}
	switch s.Kind {
	case ast.StmtBind:
		checkExpr(s.Bind.Value, owner, bad)
	case ast.StmtMutate:
		checkExpr(s.Mutate.Value, owner, bad)
	case ast.StmtReturn, ast.StmtYieldReturn:
		if s.Return != nil && s.Return.Value != nil {
			checkExpr(s.Return.Value, owner, bad)
		}
	case ast.StmtExpr:
		checkExpr(s.Expr, owner, bad)
	}
}

func checkExpr(e *ast.Expr, owner types.Path, bad func(string, ...any)) {
	if e == nil {
		return
	}
	if e.Ann.Type.IsUnknown() {
		bad("%s: %s expression at %s has unknown type", owner, e.Kind, e.Ann.Span)
	}
	if e.Ann.Type.Contains(relativeCustom) {
		bad("%s: %s expression at %s has non-canonical type %s", owner, e.Kind, e.Ann.Span, e.Ann.Type)
	}
	switch e.Kind {
	case ast.ExprArray:
		for _, x := range e.Array.Elems {
			checkExpr(x, owner, bad)
		}
	case ast.ExprArrayAt:
		checkExpr(e.Index.Array, owner, bad)
		checkExpr(e.Index.Index, owner, bad)
	case ast.ExprMember:
		checkExpr(e.Member.Base, owner, bad)
	case ast.ExprBinary:
		checkExpr(e.Binary.Left, owner, bad)
		checkExpr(e.Binary.Right, owner, bad)
	case ast.ExprUnary:
		checkExpr(e.Unary.Operand, owner, bad)
	case ast.ExprIf:
		checkExpr(e.If.Cond, owner, bad)
		checkExpr(e.If.Then, owner, bad)
		checkExpr(e.If.Else, owner, bad)
	case ast.ExprWhile:
		checkExpr(e.While.Cond, owner, bad)
		checkExpr(e.While.Body, owner, bad)
	case ast.ExprYield:
		checkExpr(e.Yield, owner, bad)
	case ast.ExprCall:
		if !e.Call.Path.IsCanonical() && e.Call.Call != ast.CallExtern {
			bad("%s: call to %s is not canonical", owner, e.Call.Path)
		}
		for _, x := range e.Call.Args {
			checkExpr(x, owner, bad)
		}
	case ast.ExprBlock:
		if e.Ann.Sym == nil {
			bad("%s: block at %s has no scope table", owner, e.Ann.Span)
		}
		for _, s := range e.Block.Stmts {
			checkStmt(s, owner, bad)
		}
		checkExpr(e.Block.Final, owner, bad)
	case ast.ExprStruct:
		for _, f := range e.Struct.Fields {
			checkExpr(f.Value, owner, bad)
		}
	}
}
