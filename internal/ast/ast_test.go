package ast

import (
	"reflect"
	"testing"

	"bramble/internal/types"
)

func sample(b *Builder) *Module {
	body := []*Stmt{
		b.Let("x", types.I64, b.I64(5)),
		b.Let("y", types.I64, b.If(b.Bool(true), b.Block(b.I64(13)), b.Block(b.I64(29)))),
		b.Return(b.Bin(BinAdd, b.Ident("x"), b.Ident("y"))),
	}
	return b.Module("main",
		b.Struct("Point", b.Param("x", types.I64), b.Param("y", types.I64)),
		b.Func("test", nil, types.I64, body...),
		b.Extern("printf", []Param{b.Param("fmt", types.StringLiteral)}, true, types.I32),
		b.Module("inner", b.Coroutine("gen", nil, types.I64, b.YieldReturn(b.I64(1)))),
	)
}

func TestCloneIsDeepAndEqual(t *testing.T) {
	m := sample(NewBuilder(0))
	cp := m.Clone()
	if !reflect.DeepEqual(m, cp) {
		t.Fatal("clone differs from original")
	}
	cp.Functions[0].Body[0].Bind.Name = "changed"
	cp.Modules[0].Coroutines[0].Name = "other"
	cp.Structs[0].Fields[0].Type = types.Bool
	if m.Functions[0].Body[0].Bind.Name != "x" || m.Modules[0].Coroutines[0].Name != "gen" {
		t.Fatal("clone shares nodes with original")
	}
	if !m.Structs[0].Fields[0].Type.Equal(types.I64) {
		t.Fatal("clone shares params with original")
	}
}

func TestBuilderSpansNest(t *testing.T) {
	b := NewBuilder(3)
	l := b.I64(1)
	r := b.I64(2)
	sum := b.Bin(BinAdd, l, r)
	if sum.Ann.Span.Start != l.Ann.Span.Start || sum.Ann.Span.End <= r.Ann.Span.End {
		t.Fatalf("binary span %v does not cover %v and %v", sum.Ann.Span, l.Ann.Span, r.Ann.Span)
	}
	if sum.Ann.Span.File != 3 {
		t.Fatalf("file id not propagated: %v", sum.Ann.Span)
	}
	if l.Ann.ID == r.Ann.ID || r.Ann.ID == sum.Ann.ID {
		t.Fatal("node ids must be unique")
	}
}

func TestModuleHelpers(t *testing.T) {
	m := sample(NewBuilder(0))
	if m.Submodule("inner") == nil || m.Submodule("missing") != nil {
		t.Fatal("Submodule lookup broken")
	}
	var names []string
	m.Walk(func(mod *Module) { names = append(names, mod.Name) })
	if !reflect.DeepEqual(names, []string{"main", "inner"}) {
		t.Fatalf("walk order %v", names)
	}
	if got := m.Functions[0].Signature().String(); got != "fn () -> i64" {
		t.Fatalf("signature %s", got)
	}
	if got := m.Externs[0].Signature().String(); got != "extern fn (string, ...) -> i32" {
		t.Fatalf("extern signature %s", got)
	}
	if got := m.Structs[0].Definition().String(); got != "StructDef(x: i64,y: i64)" {
		t.Fatalf("struct definition %s", got)
	}
}

func TestBinaryOpClasses(t *testing.T) {
	for _, op := range []BinaryOp{BinAdd, BinSub, BinMul, BinDiv} {
		if !op.IsArithmetic() || op.IsLogical() || op.IsComparison() {
			t.Errorf("%s misclassified", op)
		}
	}
	for _, op := range []BinaryOp{BinEq, BinNe, BinLt, BinLe, BinGt, BinGe} {
		if !op.IsComparison() || op.IsArithmetic() {
			t.Errorf("%s misclassified", op)
		}
	}
	if !BinAnd.IsLogical() || !BinOr.IsLogical() {
		t.Error("logical ops misclassified")
	}
}
