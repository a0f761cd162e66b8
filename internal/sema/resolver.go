package sema

import (
	"context"
	"strconv"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/source"
	"bramble/internal/symbols"
	"bramble/internal/trace"
	"bramble/internal/types"
)

type resolver struct {
	scopes    *ScopeStack
	policy    Policy
	entryPath types.Path
	tracer    trace.Tracer
	parent    uint64
}

// Resolve returns a resolved copy of root. On failure the returned error
// is a *diag.Error carrying the offending span.
func Resolve(ctx context.Context, root *ast.Module, opts Options) (*ast.Module, error) {
	if root == nil {
		return nil, diag.Newf(diag.SemaEmptyPath, "Empty path")
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(tracer, trace.ScopePass, "resolve", trace.ParentFrom(ctx))
	defer span.End("")

	policy := opts.Policy
	if policy.EntryFn == "" {
		policy.EntryFn = DefaultEntryFn
	}
	entryModule := policy.EntryModule
	if entryModule == "" {
		entryModule = root.Name
	}

	tree := root.Clone()
	if err := prepare(tree, types.Path{types.RootSeg}); err != nil {
		span.WithExtra("error", err.Error())
		return nil, err
	}

	r := &resolver{
		scopes:    NewScopeStack(tree, opts.Imports),
		policy:    policy,
		entryPath: types.Path{types.RootSeg, entryModule, policy.EntryFn},
		tracer:    tracer,
		parent:    span.ID(),
	}
	out, err := r.module(ctx, tree)
	if err != nil {
		span.WithExtra("error", err.Error())
		return nil, err
	}
	return out, nil
}

func (r *resolver) module(ctx context.Context, m *ast.Module) (*ast.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	span := trace.Begin(r.tracer, trace.ScopeModule, "module:"+m.Ann.Path.String(), r.parent)
	defer span.End("")

	out := &ast.Module{Name: m.Name, Ann: m.Ann}
	r.scopes.EnterScope(m.Ann.Sym)
	defer r.scopes.LeaveScope()

	// порядок: подмодули, функции, корутины, структуры, extern
	for _, sub := range m.Modules {
		res, err := r.module(ctx, sub)
		if err != nil {
			return nil, err
		}
		out.Modules = append(out.Modules, res)
	}
	for _, fn := range m.Functions {
		res, err := r.routine(fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, res)
	}
	for _, co := range m.Coroutines {
		res, err := r.routine(co)
		if err != nil {
			return nil, err
		}
		out.Coroutines = append(out.Coroutines, res)
	}
	for _, st := range m.Structs {
		res, err := r.structDef(st)
		if err != nil {
			return nil, err
		}
		out.Structs = append(out.Structs, res)
	}
	for _, ex := range m.Externs {
		res, err := r.extern(ex)
		if err != nil {
			return nil, err
		}
		out.Externs = append(out.Externs, res)
	}
	span.WithExtra("items", strconv.Itoa(len(out.Functions)+len(out.Coroutines)+len(out.Structs)+len(out.Externs)))
	return out, nil
}

func (r *resolver) routine(rt *ast.Routine) (*ast.Routine, error) {
	trace.Point(r.tracer, trace.ScopeNode, "routine", rt.Ann.Path.String(), r.parent)

	if r.policy.ValidateEntry && rt.Ann.Path.Equal(r.entryPath) {
		if err := r.validateEntry(rt); err != nil {
			return nil, err
		}
	}

	tbl := symbols.NewRoutineTable(rt.Name)
	for _, p := range rt.Params {
		if err := r.validType(p.Type, p.Span); err != nil {
			return nil, err
		}
		if err := tbl.Add(p.Name, p.Type, 0); err != nil {
			return nil, errAlreadyDeclared(p.Name).At(p.Span)
		}
	}

	out := &ast.Routine{Def: rt.Def, Name: rt.Name, Params: rt.Params, Ret: rt.Ret, Ann: rt.Ann}
	r.scopes.EnterScope(tbl)
	body, err := r.stmts(rt.Body)
	sym := r.scopes.LeaveScope()
	if err != nil {
		return nil, err
	}
	out.Body = body
	out.Ann.Type = rt.Ret
	out.Ann.Sym = sym
	return out, nil
}

func (r *resolver) validateEntry(rt *ast.Routine) error {
	name := r.policy.EntryFn
	sig := types.FunctionDef(nil, types.I64)
	switch {
	case rt.Def != ast.RoutineFunction:
		return diag.Errorf(diag.SemaMainFnInvalidType, rt.Ann.Span,
			"%s must be a function of type %s", name, displaySig(sig))
	case len(rt.Params) > 0:
		return diag.Errorf(diag.SemaMainFnInvalidParams, rt.Ann.Span,
			"%s must take no parameters. It must be of type %s", name, displaySig(sig))
	case !rt.Ret.Equal(types.I64):
		return diag.Errorf(diag.SemaMainFnInvalidType, rt.Ann.Span,
			"%s must be a function of type %s", name, displaySig(sig))
	}
	return nil
}

func displaySig(t types.Type) string {
	return "() -> " + t.Return().String()
}

func (r *resolver) structDef(st *ast.Struct) (*ast.Struct, error) {
	for _, f := range st.Fields {
		if err := r.validType(f.Type, f.Span); err != nil {
			return nil, err
		}
	}
	out := &ast.Struct{Name: st.Name, Fields: st.Fields, Ann: st.Ann}
	out.Ann.Type = types.Unit
	return out, nil
}

func (r *resolver) extern(ex *ast.Extern) (*ast.Extern, error) {
	for _, p := range ex.Params {
		if p.Type.Contains(func(t types.Type) bool { return t.Kind == types.KindCustom }) {
			if !r.policy.AllowExternStructParams {
				return nil, diag.Errorf(diag.SemaExternInvalidParamType, p.Span,
					"extern %s cannot take structure parameter %s of type %s", ex.Name, p.Name, p.Type)
			}
			if err := r.validType(p.Type, p.Span); err != nil {
				return nil, err
			}
		}
	}
	out := &ast.Extern{Name: ex.Name, Params: ex.Params, VarArgs: ex.VarArgs, Ret: ex.Ret, Ann: ex.Ann}
	out.Ann.Type = ex.Ret
	return out, nil
}

// validType checks that every Custom path inside ty names a structure.
func (r *resolver) validType(ty types.Type, span source.Span) error {
	var bad error
	ty.Contains(func(t types.Type) bool {
		if t.Kind != types.KindCustom {
			return false
		}
		sym, _, err := r.scopes.LookupSymbolByPath(t.Path)
		if err != nil {
			bad = err
			return true
		}
		if sym.Type.Kind != types.KindStructDef {
			bad = diag.Newf(diag.SemaInvalidIdentifierType, "%s is not a structure type", t.Path)
			return true
		}
		return false
	})
	return diag.Attach(bad, span)
}
