package ast

import (
	"fmt"

	"bramble/internal/source"
	"bramble/internal/types"
)

// Builder constructs trees the way the parser front end does: every node
// receives a fresh id, leaves get consecutive one-byte spans and composite
// nodes cover their children. Tests and tools use it in place of parsing.
type Builder struct {
	file   source.FileID
	nextID NodeID
	pos    uint32
}

func NewBuilder(file source.FileID) *Builder {
	return &Builder{file: file, nextID: 1}
}

func (b *Builder) leaf() Annotation {
	a := Annotation{ID: b.nextID, Span: source.Span{File: b.file, Start: b.pos, End: b.pos + 1}}
	b.nextID++
	b.pos += 2
	return a
}

// cover builds an annotation spanning from the earliest child to the
// current position.
func (b *Builder) cover(children ...source.Span) Annotation {
	start := b.pos
	for _, sp := range children {
		if sp.Start < start {
			start = sp.Start
		}
	}
	a := Annotation{ID: b.nextID, Span: source.Span{File: b.file, Start: start, End: b.pos + 1}}
	b.nextID++
	b.pos += 2
	return a
}

func spansOf(es ...*Expr) []source.Span {
	out := make([]source.Span, 0, len(es))
	for _, e := range es {
		if e != nil {
			out = append(out, e.Ann.Span)
		}
	}
	return out
}

func stmtSpans(ss []*Stmt) []source.Span {
	out := make([]source.Span, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Ann.Span)
	}
	return out
}

// Expressions

func (b *Builder) Int(t types.Type, v int64) *Expr {
	return &Expr{Kind: ExprIntLit, Ann: b.leaf(), Int: &IntLit{Type: t, Value: uint64(v)}} //nolint:gosec // two's complement
}

func (b *Builder) I64(v int64) *Expr { return b.Int(types.I64, v) }

func (b *Builder) I32(v int64) *Expr { return b.Int(types.I32, v) }

func (b *Builder) Bool(v bool) *Expr {
	return &Expr{Kind: ExprBoolLit, Ann: b.leaf(), Bool: v}
}

func (b *Builder) Str(s string) *Expr {
	return &Expr{Kind: ExprStringLit, Ann: b.leaf(), Str: s}
}

func (b *Builder) Ident(name string) *Expr {
	return &Expr{Kind: ExprIdent, Ann: b.leaf(), Name: name}
}

func (b *Builder) Array(elems ...*Expr) *Expr {
	if elems == nil {
		elems = []*Expr{}
	}
	return &Expr{Kind: ExprArray, Ann: b.cover(spansOf(elems...)...), Array: &ArrayData{Elems: elems}}
}

func (b *Builder) At(arr, idx *Expr) *Expr {
	return &Expr{Kind: ExprArrayAt, Ann: b.cover(spansOf(arr, idx)...), Index: &IndexData{Array: arr, Index: idx}}
}

func (b *Builder) Member(base *Expr, name string) *Expr {
	return &Expr{Kind: ExprMember, Ann: b.cover(spansOf(base)...), Member: &MemberData{Base: base, Member: name}}
}

func (b *Builder) Bin(op BinaryOp, l, r *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Ann: b.cover(spansOf(l, r)...), Binary: &BinaryData{Op: op, Left: l, Right: r}}
}

func (b *Builder) Unary(op UnaryOp, x *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Ann: b.cover(spansOf(x)...), Unary: &UnaryData{Op: op, Operand: x}}
}

// If builds an if expression; els may be nil.
func (b *Builder) If(cond, then, els *Expr) *Expr {
	return &Expr{Kind: ExprIf, Ann: b.cover(spansOf(cond, then, els)...), If: &IfData{Cond: cond, Then: then, Else: els}}
}

func (b *Builder) While(cond, body *Expr) *Expr {
	return &Expr{Kind: ExprWhile, Ann: b.cover(spansOf(cond, body)...), While: &WhileData{Cond: cond, Body: body}}
}

func (b *Builder) Yield(x *Expr) *Expr {
	return &Expr{Kind: ExprYield, Ann: b.cover(spansOf(x)...), Yield: x}
}

// Call builds a routine call; path uses "::" separators.
func (b *Builder) Call(kind CallKind, path string, args ...*Expr) *Expr {
	return &Expr{
		Kind: ExprCall,
		Ann:  b.cover(spansOf(args...)...),
		Call: &CallData{Call: kind, Path: types.ParsePath(path), Args: args},
	}
}

// Block builds an expression block; final may be nil.
func (b *Builder) Block(final *Expr, stmts ...*Stmt) *Expr {
	spans := append(stmtSpans(stmts), spansOf(final)...)
	return &Expr{Kind: ExprBlock, Ann: b.cover(spans...), Block: &BlockData{Stmts: stmts, Final: final}}
}

func (b *Builder) StructLit(path string, fields ...FieldInit) *Expr {
	var spans []source.Span
	for _, f := range fields {
		spans = append(spans, f.Value.Ann.Span)
	}
	return &Expr{Kind: ExprStruct, Ann: b.cover(spans...), Struct: &StructData{Path: types.ParsePath(path), Fields: fields}}
}

func Field(name string, v *Expr) FieldInit {
	return FieldInit{Name: name, Value: v}
}

// Statements

func (b *Builder) Let(name string, ty types.Type, v *Expr) *Stmt {
	return &Stmt{Kind: StmtBind, Ann: b.cover(spansOf(v)...), Bind: &BindStmt{Name: name, Type: ty, Value: v}}
}

func (b *Builder) LetMut(name string, ty types.Type, v *Expr) *Stmt {
	s := b.Let(name, ty, v)
	s.Bind.Mutable = true
	return s
}

func (b *Builder) Assign(name string, v *Expr) *Stmt {
	return &Stmt{Kind: StmtMutate, Ann: b.cover(spansOf(v)...), Mutate: &MutateStmt{Name: name, Value: v}}
}

// Return builds a return statement; v may be nil.
func (b *Builder) Return(v *Expr) *Stmt {
	return &Stmt{Kind: StmtReturn, Ann: b.cover(spansOf(v)...), Return: &ReturnStmt{Value: v}}
}

func (b *Builder) YieldReturn(v *Expr) *Stmt {
	return &Stmt{Kind: StmtYieldReturn, Ann: b.cover(spansOf(v)...), Return: &ReturnStmt{Value: v}}
}

func (b *Builder) ExprStmt(e *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Ann: b.cover(spansOf(e)...), Expr: e}
}

// Items

func (b *Builder) Param(name string, ty types.Type) Param {
	a := b.leaf()
	return Param{Name: name, Type: ty, Span: a.Span}
}

func (b *Builder) Func(name string, params []Param, ret types.Type, body ...*Stmt) *Routine {
	return &Routine{Def: RoutineFunction, Name: name, Params: params, Ret: ret, Body: body, Ann: b.cover(stmtSpans(body)...)}
}

func (b *Builder) Coroutine(name string, params []Param, ret types.Type, body ...*Stmt) *Routine {
	r := b.Func(name, params, ret, body...)
	r.Def = RoutineCoroutine
	return r
}

func (b *Builder) Struct(name string, fields ...Param) *Struct {
	return &Struct{Name: name, Fields: fields, Ann: b.leaf()}
}

func (b *Builder) Extern(name string, params []Param, varArgs bool, ret types.Type) *Extern {
	return &Extern{Name: name, Params: params, VarArgs: varArgs, Ret: ret, Ann: b.leaf()}
}

// Module collects items of any kind into a module, keeping their relative
// order within each category.
func (b *Builder) Module(name string, items ...any) *Module {
	m := &Module{Name: name}
	var spans []source.Span
	for _, it := range items {
		switch v := it.(type) {
		case *Module:
			m.Modules = append(m.Modules, v)
			spans = append(spans, v.Ann.Span)
		case *Routine:
			if v.Def == RoutineCoroutine {
				m.Coroutines = append(m.Coroutines, v)
			} else {
				m.Functions = append(m.Functions, v)
			}
			spans = append(spans, v.Ann.Span)
		case *Struct:
			m.Structs = append(m.Structs, v)
			spans = append(spans, v.Ann.Span)
		case *Extern:
			m.Externs = append(m.Externs, v)
			spans = append(spans, v.Ann.Span)
		default:
			panic(fmt.Sprintf("ast: unexpected module item %T", it))
		}
	}
	m.Ann = b.cover(spans...)
	return m
}
