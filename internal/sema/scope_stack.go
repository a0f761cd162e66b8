package sema

import (
	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

// ScopeStack is the lexical environment used while resolving. The head is
// the innermost scope; stack holds the enclosing ones, outermost first.
type ScopeStack struct {
	root    *ast.Module
	stack   []*symbols.Table
	head    *symbols.Table
	imports *symbols.Imports
}

// NewScopeStack creates a stack for resolving inside root. root must
// already carry module tables (see prepare).
func NewScopeStack(root *ast.Module, imports *symbols.Imports) *ScopeStack {
	if imports == nil {
		imports = symbols.NewImports()
	}
	return &ScopeStack{root: root, head: symbols.NewBlockTable(), imports: imports}
}

// EnterScope pushes a copy of tbl; the caller's table is never written.
func (s *ScopeStack) EnterScope(tbl *symbols.Table) {
	s.stack = append(s.stack, s.head)
	s.head = tbl.Clone()
}

// LeaveScope pops the head and returns it with everything added to it.
func (s *ScopeStack) LeaveScope() *symbols.Table {
	if len(s.stack) == 0 {
		panic("sema: leave scope on empty stack")
	}
	out := s.head
	s.head = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return out
}

// Depth is the number of entered scopes.
func (s *ScopeStack) Depth() int { return len(s.stack) }

// Add declares name in the innermost scope.
func (s *ScopeStack) Add(name string, ty types.Type, flags symbols.SymbolFlags) error {
	if err := s.head.Add(name, ty, flags); err != nil {
		return errAlreadyDeclared(name)
	}
	return nil
}

// scopes returns all tables, outermost first, head last.
func (s *ScopeStack) scopes() []*symbols.Table {
	out := make([]*symbols.Table, 0, len(s.stack)+1)
	out = append(out, s.stack...)
	return append(out, s.head)
}

// ToPath is the canonical path of the innermost module scope.
func (s *ScopeStack) ToPath() types.Path {
	return modulePath(s.scopes(), -1)
}

// modulePath builds root::<modules...> from the module scopes in
// tables[:upto+1]; upto < 0 means all of them.
func modulePath(tables []*symbols.Table, upto int) types.Path {
	if upto < 0 {
		upto = len(tables) - 1
	}
	p := types.Path{types.RootSeg}
	for _, t := range tables[:upto+1] {
		if t.Kind == symbols.ScopeModule {
			p = append(p, t.Name)
		}
	}
	return p
}

// ToCanonical resolves p relative to the current module.
func (s *ScopeStack) ToCanonical(p types.Path) (types.Path, error) {
	out, err := p.Canonicalize(s.ToPath())
	if err != nil {
		return nil, pathError(err, p)
	}
	return out, nil
}

// LookupSymbolByPath resolves a possibly qualified name to its symbol and
// canonical path. Extern symbols always report their bare name as path.
func (s *ScopeStack) LookupSymbolByPath(p types.Path) (symbols.Symbol, types.Path, error) {
	var (
		sym   symbols.Symbol
		canon types.Path
	)
	switch len(p) {
	case 0:
		return symbols.Symbol{}, nil, diag.Newf(diag.SemaEmptyPath, "Empty path")
	case 1:
		var err error
		sym, canon, err = s.lookupName(p[0])
		if err != nil {
			return symbols.Symbol{}, nil, err
		}
	default:
		var err error
		canon, err = s.ToCanonical(p)
		if err != nil {
			return symbols.Symbol{}, nil, err
		}
		local, inTree := s.item(canon)
		imported, inImports := s.imports.Get(canon)
		switch {
		case inTree && inImports:
			return symbols.Symbol{}, nil, diag.Newf(diag.SemaMultipleDefs, "%s is defined multiple times", canon)
		case inTree:
			sym = local
		case inImports:
			sym = imported
		default:
			return symbols.Symbol{}, nil, diag.Newf(diag.SemaPathNotFound,
				"Could not find item with the given path: %s (%s)", p, canon)
		}
	}
	if sym.IsExtern() {
		canon = types.Path{sym.Name}
	}
	return sym, canon, nil
}

// lookupName searches a bare name from the innermost scope outward. Once a
// routine boundary has been crossed only module scopes are consulted, so
// locals of an enclosing routine never leak into a nested one.
func (s *ScopeStack) lookupName(name string) (symbols.Symbol, types.Path, error) {
	tables := s.scopes()
	crossed := false
	for i := len(tables) - 1; i >= 0; i-- {
		t := tables[i]
		if crossed && t.Kind != symbols.ScopeModule {
			continue
		}
		if sym, ok := t.Get(name); ok {
			return sym, modulePath(tables, i).Append(name), nil
		}
		if t.Kind == symbols.ScopeRoutine {
			crossed = true
		}
	}
	return symbols.Symbol{}, nil, errNotDefined(name)
}

// item finds a module-level symbol in the unit tree by canonical path:
// root::<root module>::<submodules...>::<name>.
func (s *ScopeStack) item(canon types.Path) (symbols.Symbol, bool) {
	if s.root == nil || len(canon) < 3 || canon[1] != s.root.Name {
		return symbols.Symbol{}, false
	}
	cur := s.root
	for _, seg := range canon[2 : len(canon)-1] {
		if cur = cur.Submodule(seg); cur == nil {
			return symbols.Symbol{}, false
		}
	}
	return cur.Ann.Sym.Get(canon.Last())
}

// LookupVar finds a variable visible from the current scope.
func (s *ScopeStack) LookupVar(name string) (symbols.Symbol, error) {
	sym, _, err := s.lookupName(name)
	if err != nil {
		return symbols.Symbol{}, err
	}
	if !sym.IsVariable() {
		return symbols.Symbol{}, errNotVariable(name)
	}
	return sym, nil
}

// LookupFuncOrCor finds a function or coroutine by bare name.
func (s *ScopeStack) LookupFuncOrCor(name string) (symbols.Symbol, error) {
	sym, _, err := s.lookupName(name)
	if err != nil {
		return symbols.Symbol{}, err
	}
	switch sym.Type.Kind {
	case types.KindFunctionDef, types.KindCoroutineDef:
		return sym, nil
	}
	return symbols.Symbol{}, errNotRoutine(name)
}

// LookupCoroutine finds a coroutine by bare name.
func (s *ScopeStack) LookupCoroutine(name string) (symbols.Symbol, error) {
	sym, _, err := s.lookupName(name)
	if err != nil {
		return symbols.Symbol{}, err
	}
	if sym.Type.Kind != types.KindCoroutineDef {
		return symbols.Symbol{}, errNotCoroutine(name)
	}
	return sym, nil
}

// CurrentRoutine returns the name of the nearest enclosing routine scope.
func (s *ScopeStack) CurrentRoutine() (string, bool) {
	tables := s.scopes()
	for i := len(tables) - 1; i >= 0; i-- {
		if tables[i].Kind == symbols.ScopeRoutine {
			return tables[i].Name, true
		}
	}
	return "", false
}

// CanonizeLocalTypeRef makes every path inside ty canonical relative to
// the current module.
func (s *ScopeStack) CanonizeLocalTypeRef(ty types.Type) (types.Type, error) {
	return canonizeTypeRef(s.ToPath(), ty)
}

// CanonizeNonlocalTypeRef is CanonizeLocalTypeRef for an explicit module.
func (s *ScopeStack) CanonizeNonlocalTypeRef(module types.Path, ty types.Type) (types.Type, error) {
	return canonizeTypeRef(module, ty)
}

func canonizeTypeRef(module types.Path, ty types.Type) (types.Type, error) {
	return ty.Walk(func(p types.Path) (types.Path, error) {
		out, err := p.Canonicalize(module)
		if err != nil {
			return nil, pathError(err, p)
		}
		return out, nil
	}, func(n int64) error {
		if n <= 0 {
			return errArrayInvalidSize(n)
		}
		return nil
	})
}
