package sema

import (
	"testing"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

func preparedTree(t *testing.T) *ast.Module {
	t.Helper()
	b := ast.NewBuilder(0)
	m := b.Module("main",
		b.Func("f", nil, types.Unit),
		b.Extern("puts", []ast.Param{b.Param("s", types.StringLiteral)}, false, types.I32),
		b.Module("inner", b.Struct("S", b.Param("v", types.I64))),
	)
	if err := prepare(m, types.Path{types.RootSeg}); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return m
}

func TestScopeStackPaths(t *testing.T) {
	root := preparedTree(t)
	s := NewScopeStack(root, nil)
	s.EnterScope(root.Ann.Sym)
	s.EnterScope(root.Modules[0].Ann.Sym)
	if got := s.ToPath().String(); got != "root::main::inner" {
		t.Fatalf("ToPath = %s", got)
	}
	s.EnterScope(symbols.NewRoutineTable("g"))
	s.EnterScope(symbols.NewBlockTable())
	if got := s.ToPath().String(); got != "root::main::inner" {
		t.Fatalf("ToPath inside routine = %s", got)
	}
	canon, err := s.ToCanonical(types.ParsePath("super::f"))
	if err != nil || canon.String() != "root::main::f" {
		t.Fatalf("ToCanonical = %s, %v", canon, err)
	}
	if name, ok := s.CurrentRoutine(); !ok || name != "g" {
		t.Fatalf("CurrentRoutine = %q, %v", name, ok)
	}
	for s.Depth() > 0 {
		s.LeaveScope()
	}
	if _, ok := s.CurrentRoutine(); ok {
		t.Fatal("no routine expected at top level")
	}
}

func TestScopeStackLookup(t *testing.T) {
	root := preparedTree(t)
	s := NewScopeStack(root, nil)
	s.EnterScope(root.Ann.Sym)

	outer := symbols.NewRoutineTable("f")
	if err := outer.Add("local", types.I64, 0); err != nil {
		t.Fatal(err)
	}
	s.EnterScope(outer)
	s.EnterScope(symbols.NewRoutineTable("nested"))

	if _, err := s.LookupVar("local"); err == nil {
		t.Fatal("routine local leaked through a routine boundary")
	}
	sym, path, err := s.LookupSymbolByPath(types.Path{"f"})
	if err != nil || path.String() != "root::main::f" || sym.Type.Kind != types.KindFunctionDef {
		t.Fatalf("lookup f = %+v %s %v", sym, path, err)
	}
	_, path, err = s.LookupSymbolByPath(types.ParsePath("self::puts"))
	if err != nil || path.String() != "puts" {
		t.Fatalf("extern path = %s, %v", path, err)
	}
	sym, path, err = s.LookupSymbolByPath(types.ParsePath("inner::S"))
	if err != nil || path.String() != "root::main::inner::S" || sym.Type.Kind != types.KindStructDef {
		t.Fatalf("lookup inner::S = %+v %s %v", sym, path, err)
	}
	if _, err := s.LookupFuncOrCor("puts"); err == nil {
		t.Fatal("extern is not a function or coroutine")
	}
	if _, _, err := s.LookupSymbolByPath(nil); err == nil {
		t.Fatal("empty path must fail")
	}

	if err := s.Add("v", types.Bool, symbols.SymbolMutable); err != nil {
		t.Fatal(err)
	}
	err = s.Add("v", types.Bool, 0)
	if de, ok := diag.AsError(err); !ok || de.Code != diag.SemaAlreadyDeclared {
		t.Fatalf("redeclare = %v", err)
	}
	left := s.LeaveScope()
	if _, ok := left.Get("v"); !ok {
		t.Fatal("LeaveScope must return the table with added symbols")
	}
}

func TestCanonizeTypeRefs(t *testing.T) {
	root := preparedTree(t)
	s := NewScopeStack(root, nil)
	s.EnterScope(root.Ann.Sym)

	co := types.Coroutine(types.Array(types.Custom(types.ParsePath("inner::S")), 3))
	got, err := s.CanonizeLocalTypeRef(co)
	if err != nil {
		t.Fatal(err)
	}
	want := types.Coroutine(types.Array(types.Custom(types.ParsePath("root::main::inner::S")), 3))
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}

	_, err = s.CanonizeNonlocalTypeRef(types.ParsePath("root::main"), types.Array(types.I64, 0))
	if de, ok := diag.AsError(err); !ok || de.Code != diag.SemaArrayInvalidSize {
		t.Fatalf("zero length array = %v", err)
	}
	_, err = s.CanonizeLocalTypeRef(types.Custom(types.ParsePath("super::super::X")))
	if de, ok := diag.AsError(err); !ok || de.Code != diag.SemaPathTooSuper {
		t.Fatalf("super above root = %v", err)
	}
}
