package ast

// Clone returns a deep copy of the module tree.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	out := &Module{Name: m.Name, Ann: m.Ann.Clone()}
	for _, sub := range m.Modules {
		out.Modules = append(out.Modules, sub.Clone())
	}
	for _, f := range m.Functions {
		out.Functions = append(out.Functions, f.Clone())
	}
	for _, c := range m.Coroutines {
		out.Coroutines = append(out.Coroutines, c.Clone())
	}
	for _, s := range m.Structs {
		out.Structs = append(out.Structs, s.Clone())
	}
	for _, e := range m.Externs {
		out.Externs = append(out.Externs, e.Clone())
	}
	return out
}

func cloneParams(ps []Param) []Param {
	if ps == nil {
		return nil
	}
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = Param{Name: p.Name, Type: cloneType(p.Type), Span: p.Span}
	}
	return out
}

func (r *Routine) Clone() *Routine {
	if r == nil {
		return nil
	}
	return &Routine{
		Def:    r.Def,
		Name:   r.Name,
		Params: cloneParams(r.Params),
		Ret:    cloneType(r.Ret),
		Body:   cloneStmts(r.Body),
		Ann:    r.Ann.Clone(),
	}
}

func (s *Struct) Clone() *Struct {
	if s == nil {
		return nil
	}
	return &Struct{Name: s.Name, Fields: cloneParams(s.Fields), Ann: s.Ann.Clone()}
}

func (e *Extern) Clone() *Extern {
	if e == nil {
		return nil
	}
	return &Extern{
		Name:    e.Name,
		Params:  cloneParams(e.Params),
		VarArgs: e.VarArgs,
		Ret:     cloneType(e.Ret),
		Ann:     e.Ann.Clone(),
	}
}

func cloneStmts(ss []*Stmt) []*Stmt {
	if ss == nil {
		return nil
	}
	out := make([]*Stmt, len(ss))
	for i, s := range ss {
		out[i] = s.Clone()
	}
	return out
}

func (s *Stmt) Clone() *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Ann: s.Ann.Clone()}
	switch s.Kind {
	case StmtBind:
		b := *s.Bind
		b.Type = cloneType(b.Type)
		b.Value = b.Value.Clone()
		out.Bind = &b
	case StmtMutate:
		m := *s.Mutate
		m.Value = m.Value.Clone()
		out.Mutate = &m
	case StmtReturn, StmtYieldReturn:
		out.Return = &ReturnStmt{Value: s.Return.Value.Clone()}
	case StmtExpr:
		out.Expr = s.Expr.Clone()
	}
	return out
}

func cloneExprs(es []*Expr) []*Expr {
	if es == nil {
		return nil
	}
	out := make([]*Expr, len(es))
	for i, e := range es {
		out[i] = e.Clone()
	}
	return out
}

func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Ann: e.Ann.Clone(), Bool: e.Bool, Str: e.Str, Name: e.Name}
	switch e.Kind {
	case ExprIntLit:
		out.Int = &IntLit{Type: e.Int.Type, Value: e.Int.Value}
	case ExprArray:
		out.Array = &ArrayData{Elems: cloneExprs(e.Array.Elems)}
	case ExprArrayAt:
		out.Index = &IndexData{Array: e.Index.Array.Clone(), Index: e.Index.Index.Clone()}
	case ExprMember:
		out.Member = &MemberData{Base: e.Member.Base.Clone(), Member: e.Member.Member}
	case ExprBinary:
		out.Binary = &BinaryData{Op: e.Binary.Op, Left: e.Binary.Left.Clone(), Right: e.Binary.Right.Clone()}
	case ExprUnary:
		out.Unary = &UnaryData{Op: e.Unary.Op, Operand: e.Unary.Operand.Clone()}
	case ExprIf:
		out.If = &IfData{Cond: e.If.Cond.Clone(), Then: e.If.Then.Clone(), Else: e.If.Else.Clone()}
	case ExprWhile:
		out.While = &WhileData{Cond: e.While.Cond.Clone(), Body: e.While.Body.Clone()}
	case ExprYield:
		out.Yield = e.Yield.Clone()
	case ExprCall:
		out.Call = &CallData{Call: e.Call.Call, Path: e.Call.Path.Clone(), Args: cloneExprs(e.Call.Args)}
	case ExprBlock:
		out.Block = &BlockData{Stmts: cloneStmts(e.Block.Stmts), Final: e.Block.Final.Clone()}
	case ExprStruct:
		var fields []FieldInit
		if e.Struct.Fields != nil {
			fields = make([]FieldInit, len(e.Struct.Fields))
		}
		for i, f := range e.Struct.Fields {
			fields[i] = FieldInit{Name: f.Name, Value: f.Value.Clone()}
		}
		out.Struct = &StructData{Path: e.Struct.Path.Clone(), Fields: fields}
	}
	return out
}
