package mir

import (
	"bramble/internal/ast"
	"bramble/internal/diag"
)

func (l *funcLowerer) lowerStmt(st *ast.Stmt) error {
	if l.curBlock().Terminated() {
		// мёртвый код после return не попадает в MIR
		return nil
	}
	switch st.Kind {
	case ast.StmtBind:
		b := st.Bind
		// слот выделяется до правой части, имя становится видимым после
		id := l.allocVar(VarDecl{Name: b.Name, Mutable: b.Mutable, Type: b.Type, Span: st.Ann.Span})
		v, err := l.lowerExpr(b.Value)
		if err != nil {
			return err
		}
		l.emit(VarLV(id), Use(v), st.Ann.Span)
		l.bindVar(b.Name, id)
		return nil

	case ast.StmtMutate:
		m := st.Mutate
		v, err := l.lowerExpr(m.Value)
		if err != nil {
			return err
		}
		l.emit(VarLV(l.lookupVar(m.Name)), Use(v), st.Ann.Span)
		return nil

	case ast.StmtReturn:
		if val := st.Return.Value; val != nil {
			v, err := l.lowerExpr(val)
			if err != nil {
				return err
			}
			l.emit(ReturnLV(), Use(v), val.Ann.Span)
		}
		l.setTerm(Terminator{Kind: TermReturn, Span: st.Ann.Span})
		return nil

	case ast.StmtYieldReturn:
		return diag.Errorf(diag.MirUnsupported, st.Ann.Span, "yield return in %s cannot be lowered to MIR", l.proc.Path)

	case ast.StmtExpr:
		_, err := l.lowerExpr(st.Expr)
		return err
	}
	return diag.Errorf(diag.MirInvalid, st.Ann.Span, "mir: unexpected statement kind %s", st.Kind)
}
