package sema

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

func resolveModule(m *ast.Module) (*ast.Module, error) {
	return Resolve(context.Background(), m, Options{Policy: DefaultPolicy()})
}

func mustResolve(t *testing.T, m *ast.Module) *ast.Module {
	t.Helper()
	out, err := resolveModule(m)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if err := CheckResolved(out); err != nil {
		t.Fatalf("tree not fully resolved: %v", err)
	}
	return out
}

func testRoutine(b *ast.Builder) *ast.Module {
	return b.Module("main",
		b.Func("test", nil, types.I64,
			b.Let("x", types.I64, b.I64(5)),
			b.Let("y", types.I64, b.If(b.Bool(true), b.Block(b.I64(13)), b.Block(b.I64(29)))),
			b.Return(b.Bin(ast.BinAdd,
				b.Bin(ast.BinAdd, b.Bin(ast.BinAdd, b.Bin(ast.BinAdd, b.I64(1), b.I64(2)), b.I64(3)), b.Ident("x")),
				b.Ident("y"))),
		),
	)
}

func TestResolveAnnotatesTypes(t *testing.T) {
	in := testRoutine(ast.NewBuilder(0))
	out := mustResolve(t, in)

	if got := out.Ann.Path.String(); got != "root::main" {
		t.Fatalf("module path = %s", got)
	}
	fn := out.Functions[0]
	if got := fn.Ann.Path.String(); got != "root::main::test" {
		t.Fatalf("routine path = %s", got)
	}
	if !fn.Ann.Type.Equal(types.I64) {
		t.Fatalf("routine type = %s", fn.Ann.Type)
	}
	ifExpr := fn.Body[1].Bind.Value
	if !ifExpr.Ann.Type.Equal(types.I64) || !ifExpr.If.Then.Ann.Type.Equal(types.I64) {
		t.Fatalf("if typed as %s", ifExpr.Ann.Type)
	}
	if _, ok := fn.Ann.Sym.Get("y"); !ok {
		t.Fatal("routine table lost bind y")
	}
	if in.Functions[0].Body[1].Bind.Value.Ann.Type.Kind != types.KindUnknown {
		t.Fatal("input tree was modified")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	in := testRoutine(ast.NewBuilder(0))
	snapshot := in.Clone()
	a := mustResolve(t, in)
	b := mustResolve(t, in)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two resolutions of the same tree differ")
	}
	if !reflect.DeepEqual(in, snapshot) {
		t.Fatal("resolution mutated its input")
	}
}

func TestShadowingInBlock(t *testing.T) {
	b := ast.NewBuilder(0)
	m := b.Module("main",
		b.Func("f", nil, types.I64,
			b.Let("x", types.I64, b.I64(5)),
			b.Let("y", types.Bool, b.Block(b.Ident("x"), b.Let("x", types.Bool, b.Bool(true)))),
			b.Return(b.Ident("x")),
		),
	)
	out := mustResolve(t, m)
	block := out.Functions[0].Body[1].Bind.Value
	sym, ok := block.Ann.Sym.Get("x")
	if !ok || !sym.Type.Equal(types.Bool) {
		t.Fatalf("block table = %+v", block.Ann.Sym)
	}
	if !out.Functions[0].Body[2].Return.Value.Ann.Type.Equal(types.I64) {
		t.Fatal("outer x should be i64 after the block")
	}
}

func TestForwardReferenceAndCrossModule(t *testing.T) {
	b := ast.NewBuilder(0)
	point := types.Custom(types.ParsePath("util::Point"))
	m := b.Module("main",
		b.Func("f", nil, types.I64,
			b.Let("p", point, b.Call(ast.CallFunction, "util::origin")),
			b.Return(b.Call(ast.CallFunction, "g", b.Member(b.Ident("p"), "x"))),
		),
		b.Func("g", []ast.Param{b.Param("v", types.I64)}, types.I64, b.Return(b.Ident("v"))),
		b.Module("util",
			b.Struct("Point", b.Param("x", types.I64)),
			b.Func("origin", nil, types.Custom(types.ParsePath("Point")),
				b.Return(b.StructLit("Point", ast.Field("x", b.I64(0))))),
		),
	)
	out := mustResolve(t, m)

	want := types.Custom(types.ParsePath("root::main::util::Point"))
	if got := out.Functions[0].Body[0].Bind.Type; !got.Equal(want) {
		t.Fatalf("bind type = %s, want %s", got, want)
	}
	call := out.Functions[0].Body[1].Return.Value
	if got := call.Call.Path.String(); got != "root::main::g" {
		t.Fatalf("call path = %s", got)
	}
	origin := out.Modules[0].Functions[0]
	if !origin.Ret.Equal(want) {
		t.Fatalf("origin ret = %s", origin.Ret)
	}
	lit := origin.Body[0].Return.Value
	if !lit.Ann.Type.Equal(want) || lit.Struct.Path.String() != "root::main::util::Point" {
		t.Fatalf("struct literal typed %s path %s", lit.Ann.Type, lit.Struct.Path)
	}
}

func TestExternCalls(t *testing.T) {
	b := ast.NewBuilder(0)
	m := b.Module("main",
		b.Extern("printf", []ast.Param{b.Param("fmt", types.StringLiteral)}, true, types.I32),
		b.Func("f", nil, types.I32,
			b.Return(b.Call(ast.CallFunction, "printf", b.Str("%d %d"), b.I64(1), b.Bool(true))),
		),
	)
	out := mustResolve(t, m)
	call := out.Functions[0].Body[0].Return.Value.Call
	if call.Call != ast.CallExtern {
		t.Fatalf("call kind = %s, want extern", call.Call)
	}
	if call.Path.String() != "printf" {
		t.Fatalf("extern path = %s", call.Path)
	}
}

func TestCoroutines(t *testing.T) {
	b := ast.NewBuilder(0)
	m := b.Module("main",
		b.Coroutine("gen", nil, types.I64, b.YieldReturn(b.I64(1)), b.Return(b.I64(2))),
		b.Func("f", nil, types.I64,
			b.Let("c", types.Coroutine(types.I64), b.Call(ast.CallCoroutineInit, "gen")),
			b.Return(b.Yield(b.Ident("c"))),
		),
	)
	out := mustResolve(t, m)
	y := out.Functions[0].Body[1].Return.Value
	if !y.Ann.Type.Equal(types.I64) {
		t.Fatalf("yield typed %s", y.Ann.Type)
	}
	if got := out.Functions[0].Body[0].Bind.Value.Ann.Type; !got.Equal(types.Coroutine(types.I64)) {
		t.Fatalf("coroutine init typed %s", got)
	}
}

func TestImports(t *testing.T) {
	b := ast.NewBuilder(0)
	imports := symbols.NewImports()
	if err := imports.ImportFunction(types.ParsePath("root::std::abs"), []types.Type{types.I64}, types.I64); err != nil {
		t.Fatal(err)
	}
	m := b.Module("main",
		b.Func("f", nil, types.I64, b.Return(b.Call(ast.CallFunction, "root::std::abs", b.I64(-3)))),
	)
	out, err := Resolve(context.Background(), m, Options{Policy: DefaultPolicy(), Imports: imports})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := out.Functions[0].Body[0].Return.Value.Call.Path.String(); got != "root::std::abs" {
		t.Fatalf("call path = %s", got)
	}

	dup := symbols.NewImports()
	if err := dup.ImportFunction(types.ParsePath("root::main::f"), nil, types.I64); err != nil {
		t.Fatal(err)
	}
	m = b.Module("main",
		b.Func("f", nil, types.I64, b.Return(b.Call(ast.CallFunction, "self::f"))),
	)
	_, err = Resolve(context.Background(), m, Options{Policy: DefaultPolicy(), Imports: dup})
	requireCode(t, err, diag.SemaMultipleDefs)
}

func requireCode(t *testing.T, err error, code diag.Code) *diag.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got success", code.ID())
	}
	de, ok := diag.AsError(err)
	if !ok {
		t.Fatalf("expected *diag.Error, got %T: %v", err, err)
	}
	if de.Code != code {
		t.Fatalf("expected %s, got %s: %s", code.ID(), de.Code.ID(), de.Msg)
	}
	if !de.HasSpan {
		t.Fatalf("%s error has no span: %s", code.ID(), de.Msg)
	}
	return de
}

func fn(b *ast.Builder, ret types.Type, body ...*ast.Stmt) *ast.Routine {
	return b.Func("f", nil, ret, body...)
}

func TestResolveErrors(t *testing.T) {
	point := func(b *ast.Builder) *ast.Struct {
		return b.Struct("Point", b.Param("x", types.I64), b.Param("y", types.I64))
	}
	add := func(b *ast.Builder) *ast.Routine {
		return b.Func("add", []ast.Param{b.Param("a", types.I64), b.Param("b", types.I64)}, types.I64,
			b.Return(b.Bin(ast.BinAdd, b.Ident("a"), b.Ident("b"))))
	}

	tests := []struct {
		name  string
		build func(b *ast.Builder) *ast.Module
		code  diag.Code
		msg   string
	}{
		{
			name: "bind mismatch",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.Let("x", types.I32, b.Bool(true))))
			},
			code: diag.SemaBindExpected,
			msg:  "Bind expected i32 but got bool",
		},
		{
			name: "int literal typed bool",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.ExprStmt(b.Int(types.Bool, 1))))
			},
			code: diag.SemaInfo,
			msg:  "integer literal 1 has non-integral type bool",
		},
		{
			name: "int literal without type",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.Let("x", types.I64, b.Int(types.Unknown, 7))))
			},
			code: diag.SemaInfo,
			msg:  "integer literal 7 has non-integral type",
		},
		{
			name: "if arms differ",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit,
					b.Let("x", types.I32, b.If(b.Bool(true), b.Block(b.I32(1)), b.Block(b.Bool(false))))))
			},
			code: diag.SemaIfExprMismatchArms,
			msg:  "expected i32 got bool",
		},
		{
			name: "if without else",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit,
					b.ExprStmt(b.If(b.Bool(true), b.Block(b.I32(1)), nil))))
			},
			code: diag.SemaIfExprMismatchArms,
			msg:  "expected i32 got unit",
		},
		{
			name: "if condition",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.ExprStmt(b.If(b.I64(1), b.Block(nil), nil))))
			},
			code: diag.SemaCondExpectedBool,
		},
		{
			name: "assign immutable",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.Let("x", types.I64, b.I64(1)), b.Assign("x", b.I64(2))))
			},
			code: diag.SemaVariableNotMutable,
			msg:  "Variable x is not mutable",
		},
		{
			name: "assign wrong type",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.LetMut("x", types.I64, b.I64(1)), b.Assign("x", b.Bool(true))))
			},
			code: diag.SemaBindMismatch,
			msg:  "x is of type i64 but is assigned bool",
		},
		{
			name: "assign to routine",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", add(b), fn(b, types.Unit, b.Assign("add", b.I64(2))))
			},
			code: diag.SemaNotVariable,
		},
		{
			name: "arity",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", add(b), fn(b, types.I64, b.Return(b.Call(ast.CallFunction, "add", b.I64(1)))))
			},
			code: diag.SemaRoutineCallWrongNumParams,
			msg:  "Expected 2 but got 1",
		},
		{
			name: "every mismatching parameter",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", add(b),
					fn(b, types.I64, b.Return(b.Call(ast.CallFunction, "add", b.Bool(true), b.I32(2)))))
			},
			code: diag.SemaRoutineParamTypeMismatch,
			msg:  "parameter 1 expected i64 but got bool, parameter 2 expected i64 but got i32",
		},
		{
			name: "varargs too few",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main",
					b.Extern("printf", []ast.Param{b.Param("fmt", types.StringLiteral)}, true, types.I32),
					fn(b, types.I32, b.Return(b.Call(ast.CallExtern, "printf"))))
			},
			code: diag.SemaFunctionParamsNotEnough,
		},
		{
			name: "coroutine called as function",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main",
					b.Coroutine("gen", nil, types.I64, b.YieldReturn(b.I64(1))),
					fn(b, types.I64, b.Return(b.Call(ast.CallFunction, "gen"))))
			},
			code: diag.SemaRoutineCallInvalidTarget,
		},
		{
			name: "undefined name",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.Ident("y"))))
			},
			code: diag.SemaNotDefined,
			msg:  "y is not defined",
		},
		{
			name: "locals do not leak between routines",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main",
					b.Func("g", nil, types.Unit, b.Let("x", types.I64, b.I64(1))),
					fn(b, types.I64, b.Return(b.Ident("x"))))
			},
			code: diag.SemaNotDefined,
		},
		{
			name: "path not found",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.Call(ast.CallFunction, "other::g"))))
			},
			code: diag.SemaPathNotFound,
		},
		{
			name: "path too super",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.Call(ast.CallFunction, "super::super::f"))))
			},
			code: diag.SemaPathTooSuper,
		},
		{
			name: "empty array",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.ExprStmt(b.Array())))
			},
			code: diag.SemaArrayInvalidSize,
		},
		{
			name: "mixed array",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.ExprStmt(b.Array(b.I64(1), b.Bool(true)))))
			},
			code: diag.SemaArrayInconsistentElementTypes,
		},
		{
			name: "index non-array",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.At(b.I64(1), b.I64(0)))))
			},
			code: diag.SemaArrayIndexingInvalidType,
		},
		{
			name: "bool index",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.At(b.Array(b.I64(1)), b.Bool(true)))))
			},
			code: diag.SemaArrayIndexingInvalidIndexType,
		},
		{
			name: "member of integer",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.Member(b.I64(1), "x"))))
			},
			code: diag.SemaMemberAccessInvalidRootType,
		},
		{
			name: "missing member",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", point(b), fn(b, types.I64,
					b.Let("p", types.Custom(types.ParsePath("Point")),
						b.StructLit("Point", ast.Field("x", b.I64(1)), ast.Field("y", b.I64(2)))),
					b.Return(b.Member(b.Ident("p"), "z"))))
			},
			code: diag.SemaMemberAccessMemberNotFound,
			msg:  "root::main::Point does not have member z",
		},
		{
			name: "struct literal field count",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", point(b), fn(b, types.Unit,
					b.ExprStmt(b.StructLit("Point", ast.Field("x", b.I64(1))))))
			},
			code: diag.SemaStructExprWrongNumParams,
			msg:  "Struct expected 2 parameters but found 1",
		},
		{
			name: "struct literal unknown field",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", point(b), fn(b, types.Unit,
					b.ExprStmt(b.StructLit("Point", ast.Field("x", b.I64(1)), ast.Field("q", b.I64(2))))))
			},
			code: diag.SemaStructExprMemberNotFound,
		},
		{
			name: "struct literal field type",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", point(b), fn(b, types.Unit,
					b.ExprStmt(b.StructLit("Point", ast.Field("x", b.I64(1)), ast.Field("y", b.Bool(true))))))
			},
			code: diag.SemaStructExprFieldTypeMismatch,
			msg:  "root::main::Point.y expects i64 but got bool",
		},
		{
			name: "struct literal of a function",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", add(b), fn(b, types.Unit, b.ExprStmt(b.StructLit("add"))))
			},
			code: diag.SemaInvalidStructure,
		},
		{
			name: "mixed width arithmetic",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.Bin(ast.BinAdd, b.I64(1), b.I32(1)))))
			},
			code: diag.SemaOpExpected,
			msg:  "+ expected i64 but found i64 and i32",
		},
		{
			name: "logical on integers",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Bool, b.Return(b.Bin(ast.BinAnd, b.Bool(true), b.I64(1)))))
			},
			code: diag.SemaOpExpected,
			msg:  "&& expected bool but found bool and i64",
		},
		{
			name: "comparison of different types",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Bool, b.Return(b.Bin(ast.BinLt, b.I64(1), b.Bool(true)))))
			},
			code: diag.SemaOpExpected,
		},
		{
			name: "negate unsigned",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.U8, b.Return(b.Unary(ast.UnNegate, b.Int(types.U8, 1)))))
			},
			code: diag.SemaExpectedSignedInteger,
		},
		{
			name: "not on integer",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Bool, b.Return(b.Unary(ast.UnNot, b.I64(1)))))
			},
			code: diag.SemaExpectedBool,
		},
		{
			name: "while condition",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.ExprStmt(b.While(b.I64(1), b.Block(nil)))))
			},
			code: diag.SemaWhileCondInvalidType,
		},
		{
			name: "while body",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit, b.ExprStmt(b.While(b.Bool(false), b.Block(b.I64(1))))))
			},
			code: diag.SemaWhileInvalidType,
		},
		{
			name: "return type",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.Bool(true))))
			},
			code: diag.SemaReturnExpected,
			msg:  "Return expected i64 but got bool",
		},
		{
			name: "bare return in i64 routine",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(nil)))
			},
			code: diag.SemaReturnExpected,
			msg:  "Return expected i64 but got unit",
		},
		{
			name: "yield return type",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", b.Coroutine("gen", nil, types.I64, b.YieldReturn(b.Bool(true))))
			},
			code: diag.SemaYieldExpected,
		},
		{
			name: "yield return in function",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.YieldReturn(b.I64(1))))
			},
			code: diag.SemaNotCoroutine,
		},
		{
			name: "yield non-coroutine",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.I64, b.Return(b.Yield(b.I64(1)))))
			},
			code: diag.SemaYieldInvalidType,
		},
		{
			name: "duplicate bind",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit,
					b.Let("x", types.I64, b.I64(1)), b.Let("x", types.I64, b.I64(2))))
			},
			code: diag.SemaAlreadyDeclared,
			msg:  "x already declared",
		},
		{
			name: "duplicate parameter",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", b.Func("f", []ast.Param{b.Param("a", types.I64), b.Param("a", types.I64)}, types.Unit))
			},
			code: diag.SemaAlreadyDeclared,
		},
		{
			name: "duplicate item",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", fn(b, types.Unit), point(b), b.Struct("f"))
			},
			code: diag.SemaAlreadyDeclared,
		},
		{
			name: "parameter of routine type",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", add(b),
					b.Func("f", []ast.Param{b.Param("p", types.Custom(types.ParsePath("add")))}, types.Unit))
			},
			code: diag.SemaInvalidIdentifierType,
		},
		{
			name: "struct field of unknown type",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", b.Struct("S", b.Param("p", types.Custom(types.ParsePath("Nope")))))
			},
			code: diag.SemaPathNotFound,
		},
		{
			name: "extern with struct parameter",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", point(b),
					b.Extern("draw", []ast.Param{b.Param("p", types.Custom(types.ParsePath("Point")))}, false, types.Unit))
			},
			code: diag.SemaExternInvalidParamType,
		},
		{
			name: "entry with parameters",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", b.Func("my_main", []ast.Param{b.Param("a", types.I64)}, types.I64, b.Return(b.Ident("a"))))
			},
			code: diag.SemaMainFnInvalidParams,
		},
		{
			name: "entry returning i32",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", b.Func("my_main", nil, types.I32, b.Return(b.I32(0))))
			},
			code: diag.SemaMainFnInvalidType,
			msg:  "my_main must be a function of type () -> i64",
		},
		{
			name: "entry as coroutine",
			build: func(b *ast.Builder) *ast.Module {
				return b.Module("main", b.Coroutine("my_main", nil, types.I64, b.Return(b.I64(0))))
			},
			code: diag.SemaMainFnInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveModule(tt.build(ast.NewBuilder(0)))
			de := requireCode(t, err, tt.code)
			if tt.msg != "" && !strings.Contains(de.Msg, tt.msg) {
				t.Fatalf("message %q does not contain %q", de.Msg, tt.msg)
			}
		})
	}
}

func TestPolicyToggles(t *testing.T) {
	b := ast.NewBuilder(0)
	m := b.Module("main",
		b.Struct("Point", b.Param("x", types.I64)),
		b.Extern("draw", []ast.Param{b.Param("p", types.Custom(types.ParsePath("Point")))}, false, types.Unit),
		b.Func("my_main", nil, types.I32, b.Return(b.I32(0))),
	)
	policy := Policy{AllowExternStructParams: true}
	out, err := Resolve(context.Background(), m, Options{Policy: policy})
	if err != nil {
		t.Fatalf("relaxed policy should accept: %v", err)
	}
	if got := out.Externs[0].Params[0].Type.Path.String(); got != "root::main::Point" {
		t.Fatalf("extern param not canonical: %s", got)
	}

	policy = DefaultPolicy()
	policy.EntryFn = "start"
	if _, err := Resolve(context.Background(), m, Options{Policy: policy}); err == nil {
		t.Fatal("default extern policy should reject struct params")
	}
}

func TestCheckResolvedRejectsRawTree(t *testing.T) {
	m := testRoutine(ast.NewBuilder(0))
	if err := CheckResolved(m); err == nil {
		t.Fatal("unresolved tree passed CheckResolved")
	}
}
