package mir

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/source"
	"bramble/internal/symbols"
	"bramble/internal/trace"
	"bramble/internal/types"
)

// Options tune lowering. The zero value lowers silently.
type Options struct {
	Tracer trace.Tracer
	// Parent is the trace span lowering events are attached to.
	Parent uint64
}

// LowerModule lowers every function of a resolved tree into one Project.
// Coroutine bodies are not lowered; calls to them stay CoroutineInit
// terminators.
func LowerModule(ctx context.Context, root *ast.Module, imports *symbols.Imports, opts Options) (*Project, error) {
	proj := CollectProject(root, imports)
	for _, rt := range Functions(root) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		proc, err := LowerRoutine(rt, proj, opts)
		if err != nil {
			return nil, err
		}
		proj.Add(proc)
	}
	return proj, nil
}

// LowerRoutine builds the CFG of one resolved function. proj supplies struct
// layouts and callee signatures and is not modified, so routines of one
// project may be lowered concurrently.
func LowerRoutine(rt *ast.Routine, proj *Project, opts Options) (*Procedure, error) {
	if rt == nil {
		return nil, diag.Newf(diag.MirInvalid, "mir: nil routine")
	}
	if rt.Def != ast.RoutineFunction {
		return nil, diag.Errorf(diag.MirUnsupported, rt.Ann.Span, "coroutine %s cannot be lowered to MIR", rt.Ann.Path)
	}
	if proj == nil {
		proj = NewProject()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	l := &funcLowerer{
		proj:   proj,
		proc:   NewProcedure(rt.Ann.Path, rt.Ret, rt.Ann.Span),
		tracer: tracer,
		parent: opts.Parent,
	}
	return l.lowerFunc(rt)
}

type funcLowerer struct {
	proj *Project
	proc *Procedure
	cur  BlockID

	// видимые имена; последний элемент - самый внутренний блок
	scopes    []varScope
	nextScope ScopeID

	tracer trace.Tracer
	parent uint64
}

type varScope struct {
	id    ScopeID
	names map[string]VarID
}

func (l *funcLowerer) lowerFunc(rt *ast.Routine) (*Procedure, error) {
	l.cur = l.newBlock()
	l.pushScope()
	for _, p := range rt.Params {
		id := l.declareVar(VarDecl{Name: p.Name, Param: true, Type: p.Type, Span: p.Span})
		l.proc.Params = append(l.proc.Params, id)
	}
	for _, st := range rt.Body {
		if err := l.lowerStmt(st); err != nil {
			return nil, err
		}
	}
	l.popScope()
	if !l.curBlock().Terminated() {
		l.setTerm(Terminator{Kind: TermReturn, Span: rt.Ann.Span.ZeroideToEnd()})
	}
	pruneUnreachable(l.proc)
	return l.proc, nil
}

func (l *funcLowerer) curBlock() *BasicBlock {
	return l.proc.Block(l.cur)
}

func (l *funcLowerer) newBlock() BlockID {
	return l.proc.NewBlock()
}

func (l *funcLowerer) startBlock(id BlockID) {
	l.cur = id
	l.point("bb", id.String())
}

func (l *funcLowerer) setTerm(t Terminator) {
	b := l.curBlock()
	if b.Terminated() {
		return
	}
	b.Term = t
	if l.tracer.Enabled() {
		l.point("term", b.ID.String()+" "+termName(t.Kind))
	}
}

func (l *funcLowerer) emit(lv LValue, rv RValue, span source.Span) {
	b := l.curBlock()
	if b.Terminated() {
		return
	}
	b.Stmts = append(b.Stmts, Statement{LValue: lv, RValue: rv, Span: span})
}

func (l *funcLowerer) newTemp(ty types.Type) TempID {
	return l.proc.AddTemp(ty)
}

// tempStore materializes rv into a fresh temporary and returns a reference
// to it.
func (l *funcLowerer) tempStore(rv RValue, ty types.Type, span source.Span) Operand {
	t := l.newTemp(ty)
	l.emit(TempLV(t), rv, span)
	l.point("temp_store", t.String())
	return LValueOp(TempLV(t))
}

func (l *funcLowerer) pushScope() {
	id := l.nextScope
	l.nextScope++
	l.scopes = append(l.scopes, varScope{id: id, names: make(map[string]VarID)})
}

func (l *funcLowerer) popScope() {
	if len(l.scopes) == 0 {
		panic("mir: pop of empty variable scope")
	}
	l.scopes = l.scopes[:len(l.scopes)-1]
}

// allocVar reserves a slot for a variable of the innermost scope without
// making the name visible yet. Redeclaring a name in the same scope is an
// internal error: sema already rejected it.
func (l *funcLowerer) allocVar(decl VarDecl) VarID {
	top := &l.scopes[len(l.scopes)-1]
	if _, ok := top.names[decl.Name]; ok {
		panic(fmt.Sprintf("mir: %s: variable %q already allocated in scope %d", l.proc.Name, decl.Name, top.id))
	}
	decl.Scope = top.id
	return l.proc.AddVar(decl)
}

func (l *funcLowerer) bindVar(name string, id VarID) {
	l.scopes[len(l.scopes)-1].names[name] = id
}

func (l *funcLowerer) declareVar(decl VarDecl) VarID {
	id := l.allocVar(decl)
	l.bindVar(decl.Name, id)
	return id
}

func (l *funcLowerer) lookupVar(name string) VarID {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if id, ok := l.scopes[i].names[name]; ok {
			return id
		}
	}
	panic(fmt.Sprintf("mir: %s: unknown variable %q", l.proc.Name, name))
}

func (l *funcLowerer) point(name, detail string) {
	if !l.tracer.Enabled() {
		return
	}
	trace.Point(l.tracer, trace.ScopeNode, name, detail, l.parent)
}

func termName(k TermKind) string {
	switch k {
	case TermReturn:
		return "return"
	case TermGoTo:
		return "goto"
	case TermCondGoTo:
		return "condgoto"
	case TermCallFn:
		return "call"
	}
	return "none"
}

func i64Const(v int) Constant {
	bits, err := safecast.Conv[uint64](v)
	if err != nil {
		panic(fmt.Errorf("mir: negative index: %w", err))
	}
	return Constant{Kind: ConstI64, Bits: bits}
}
