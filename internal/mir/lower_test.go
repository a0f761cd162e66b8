package mir

import (
	"context"
	"strings"
	"testing"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/sema"
	"bramble/internal/source"
	"bramble/internal/types"
)

func resolve(t *testing.T, m *ast.Module) *ast.Module {
	t.Helper()
	out, err := sema.Resolve(context.Background(), m, sema.Options{Policy: sema.DefaultPolicy()})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	return out
}

func lower(t *testing.T, m *ast.Module) *Project {
	t.Helper()
	proj, err := LowerModule(context.Background(), resolve(t, m), nil, Options{})
	if err != nil {
		t.Fatalf("lower failed: %v", err)
	}
	if err := Validate(proj); err != nil {
		t.Fatalf("invalid MIR: %v", err)
	}
	return proj
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

func isZeroWidthAt(sp source.Span, off uint32) bool {
	return sp.Start == off && sp.End == off
}

func TestLowerIfExpressionShape(t *testing.T) {
	tree := resolve(t, testRoutine(ast.NewBuilder(0)))
	proc, err := LowerRoutine(tree.Functions[0], CollectProject(tree, nil), Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if len(proc.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(proc.Blocks))
	}
	ifExpr := tree.Functions[0].Body[1].Bind.Value

	entry := proc.Blocks[0]
	if len(entry.Stmts) != 1 || entry.Stmts[0].LValue != VarLV(0) {
		t.Fatalf("entry should only bind x, got %d stmts", len(entry.Stmts))
	}
	if entry.Term.Kind != TermCondGoTo || entry.Term.True != 1 || entry.Term.False != 2 {
		t.Fatalf("entry terminator = %s", FormatTerm(&entry.Term))
	}
	if entry.Term.Cond.Kind != OperandConst || !entry.Term.Cond.Const.Bool {
		t.Fatalf("cond operand = %s", FormatOperand(entry.Term.Cond))
	}
	if entry.Term.Span != ifExpr.If.Cond.Ann.Span {
		t.Fatalf("cond goto span = %s, want %s", entry.Term.Span, ifExpr.If.Cond.Ann.Span)
	}

	arms := []struct {
		bb    BlockID
		value int64
		body  *ast.Expr
	}{
		{1, 13, ifExpr.If.Then},
		{2, 29, ifExpr.If.Else},
	}
	for _, arm := range arms {
		bb := proc.Blocks[arm.bb]
		if len(bb.Stmts) != 1 {
			t.Fatalf("%s: expected 1 stmt, got %d", arm.bb, len(bb.Stmts))
		}
		st := bb.Stmts[0]
		if st.LValue != TempLV(0) {
			t.Fatalf("%s: arm writes %s, want shared temp _t0", arm.bb, FormatLValue(st.LValue))
		}
		if st.RValue.Kind != RUse || st.RValue.L.Const.Int64() != arm.value {
			t.Fatalf("%s: arm value = %s", arm.bb, FormatRValue(st.RValue))
		}
		if bb.Term.Kind != TermGoTo || bb.Term.Target != 3 {
			t.Fatalf("%s: terminator = %s", arm.bb, FormatTerm(&bb.Term))
		}
		if !isZeroWidthAt(bb.Term.Span, arm.body.Ann.Span.End) {
			t.Fatalf("%s: goto span %s is not anchored at the arm end", arm.bb, bb.Term.Span)
		}
	}

	merge := proc.Blocks[3]
	if len(merge.Stmts) == 0 {
		t.Fatal("merge block is empty")
	}
	first := merge.Stmts[0]
	if first.LValue != VarLV(1) || first.RValue.Kind != RUse || first.RValue.L.LValue != TempLV(0) {
		t.Fatalf("merge should bind y from the shared temp, got %s = %s", FormatLValue(first.LValue), FormatRValue(first.RValue))
	}
	last := merge.Stmts[len(merge.Stmts)-1]
	if last.LValue.Kind != LReturnPointer {
		t.Fatalf("last merge stmt writes %s", FormatLValue(last.LValue))
	}
	if merge.Term.Kind != TermReturn {
		t.Fatalf("merge terminator = %s", FormatTerm(&merge.Term))
	}
	// 1+2, +3, +x, +y
	binops := 0
	for _, st := range merge.Stmts {
		if st.RValue.Kind == RBinOp {
			binops++
			if st.LValue.Kind != LTemp {
				t.Fatalf("binop stored into %s", FormatLValue(st.LValue))
			}
		}
	}
	if binops != 4 || len(proc.Temps) != 5 {
		t.Fatalf("binops=%d temps=%d", binops, len(proc.Temps))
	}
}

func TestLowerConstants(t *testing.T) {
	b := ast.NewBuilder(0)
	m := b.Module("main",
		b.Func("consts", nil, types.Unit,
			b.Let("a", types.I8, b.Int(types.I8, -3)),
			b.Let("b", types.U32, b.Int(types.U32, 7)),
			b.Let("c", types.Bool, b.Bool(true)),
			b.Let("d", types.StringLiteral, b.Str("hi")),
			b.Let("e", types.I64, b.I64(42)),
		),
	)
	proc := lower(t, m).Procs[0]
	want := []struct {
		kind ConstKind
		show string
	}{
		{ConstI8, "-3_i8"},
		{ConstU32, "7_u32"},
		{ConstBool, "true"},
		{ConstStringLiteral, `"hi"`},
		{ConstI64, "42_i64"},
	}
	stmts := proc.Blocks[0].Stmts
	if len(stmts) != len(want) {
		t.Fatalf("expected %d stmts, got %d", len(want), len(stmts))
	}
	for i, w := range want {
		rv := stmts[i].RValue
		if rv.Kind != RUse || rv.L.Kind != OperandConst {
			t.Fatalf("stmt %d: rvalue is not a constant use: %s", i, FormatRValue(rv))
		}
		if rv.L.Const.Kind != w.kind || FormatConst(rv.L.Const) != w.show {
			t.Fatalf("stmt %d: got %s", i, FormatConst(rv.L.Const))
		}
	}
	if term := proc.Blocks[0].Term; term.Kind != TermReturn || !term.Span.Empty() {
		t.Fatalf("implicit return missing or not zero-width: %s %s", FormatTerm(&term), term.Span)
	}
}

func TestLowerWhile(t *testing.T) {
	b := ast.NewBuilder(0)
	body := b.Block(nil, b.Assign("i", b.Bin(ast.BinAdd, b.Ident("i"), b.I64(1))))
	m := b.Module("main",
		b.Func("count", nil, types.I64,
			b.LetMut("i", types.I64, b.I64(0)),
			b.ExprStmt(b.While(b.Bin(ast.BinLt, b.Ident("i"), b.I64(10)), body)),
			b.Return(b.Ident("i")),
		),
	)
	proc := lower(t, m).Procs[0]
	if len(proc.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(proc.Blocks))
	}
	if term := proc.Blocks[0].Term; term.Kind != TermGoTo || term.Target != 1 {
		t.Fatalf("entry should jump to header: %s", FormatTerm(&term))
	}
	header := proc.Blocks[1]
	if header.Term.Kind != TermCondGoTo || header.Term.True != 2 || header.Term.False != 3 {
		t.Fatalf("header terminator = %s", FormatTerm(&header.Term))
	}
	if len(header.Stmts) != 1 || header.Stmts[0].RValue.BinOp != BinLt {
		t.Fatal("header should compute the condition")
	}
	loop := proc.Blocks[2]
	if loop.Term.Kind != TermGoTo || loop.Term.Target != 1 {
		t.Fatalf("body should jump back: %s", FormatTerm(&loop.Term))
	}
	if !loop.Term.Span.Empty() {
		t.Fatalf("back edge span should be zero-width, got %s", loop.Term.Span)
	}
	last := loop.Stmts[len(loop.Stmts)-1]
	if last.LValue != VarLV(0) {
		t.Fatalf("body should assign i, got %s", FormatLValue(last.LValue))
	}
	if !proc.Vars[0].Mutable {
		t.Fatal("i should be mutable")
	}
	if exit := proc.Blocks[3]; exit.Term.Kind != TermReturn {
		t.Fatalf("exit terminator = %s", FormatTerm(&exit.Term))
	}
}

func pointModule(b *ast.Builder) *ast.Module {
	point := types.Custom(types.ParsePath("Point"))
	return b.Module("main",
		b.Struct("Point", b.Param("x", types.I64), b.Param("y", types.I64)),
		b.Extern("puts", []ast.Param{b.Param("s", types.StringLiteral)}, false, types.I32),
		b.Func("mk", []ast.Param{b.Param("a", types.I64)}, point,
			b.Return(b.StructLit("Point", ast.Field("y", b.I64(2)), ast.Field("x", b.Ident("a")))),
		),
		b.Func("use", nil, types.I64,
			b.Let("p", point, b.Call(ast.CallFunction, "mk", b.I64(1))),
			b.ExprStmt(b.Call(ast.CallExtern, "puts", b.Str("hi"))),
			b.Let("arr", types.Array(types.I64, 2), b.Array(b.I64(4), b.Member(b.Ident("p"), "y"))),
			b.Return(b.At(b.Ident("arr"), b.I64(1))),
		),
	)
}

func TestLowerStructsCallsArrays(t *testing.T) {
	proj := lower(t, pointModule(ast.NewBuilder(0)))
	if len(proj.Procs) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(proj.Procs))
	}
	if _, ok := proj.Struct(types.ParsePath("root::main::Point")); !ok {
		t.Fatal("struct layout missing")
	}

	mk := proj.Procedure(types.ParsePath("root::main::mk"))
	if mk == nil || len(mk.Params) != 1 || !mk.Vars[0].Param {
		t.Fatal("mk should have one parameter variable")
	}
	stmts := mk.Blocks[0].Stmts
	// y is listed first in the literal but keeps its declared index
	if stmts[0].LValue.Kind != LAccess || stmts[0].LValue.Access.Proj.Field != "y" || stmts[0].LValue.Access.Proj.Idx != 1 {
		t.Fatalf("first field store = %s", FormatLValue(stmts[0].LValue))
	}

	use := proj.Procedure(types.ParsePath("root::main::use"))
	entry := use.Blocks[0]
	if entry.Term.Kind != TermCallFn {
		t.Fatalf("entry should end with a call, got %s", FormatTerm(&entry.Term))
	}
	call := entry.Term.Call
	if call.Callee.String() != "root::main::mk" || call.Kind != CalleeFunction || !call.HasDest || call.Reentry != 1 {
		t.Fatalf("call = %s", FormatTerm(&entry.Term))
	}
	reentry := use.Blocks[1]
	if reentry.Stmts[0].RValue.L.LValue != call.Dest {
		t.Fatal("p should be bound from the call destination")
	}
	ext := reentry.Term
	if ext.Kind != TermCallFn || ext.Call.Kind != CalleeExtern || ext.Call.Callee.String() != "puts" {
		t.Fatalf("extern call = %s", FormatTerm(&ext))
	}
	if !ext.Call.HasDest {
		t.Fatal("i32 result should get a destination")
	}

	dump := FormatTerm(&use.Blocks[2].Term)
	if dump != "return" {
		t.Fatalf("last block terminator = %s", dump)
	}
	var sawIndex, sawMember bool
	for _, st := range use.Blocks[2].Stmts {
		if st.LValue.Kind == LAccess && st.LValue.Access.Proj.Kind == ProjIndex {
			sawIndex = true
		}
		if st.RValue.L.Kind == OperandLValue && st.RValue.L.LValue.Kind == LAccess &&
			st.RValue.L.LValue.Access.Proj.Kind == ProjField {
			sawMember = true
		}
	}
	if !sawIndex || !sawMember {
		t.Fatalf("array literal or member read not lowered: index=%v member=%v", sawIndex, sawMember)
	}
}

func TestLowerBlockShadowing(t *testing.T) {
	b := ast.NewBuilder(0)
	m := b.Module("main",
		b.Func("shadow", nil, types.I64,
			b.Let("x", types.I64, b.I64(1)),
			b.Let("y", types.I64, b.Block(b.I64(5), b.Let("x", types.Bool, b.Bool(true)))),
			b.Return(b.Ident("x")),
		),
	)
	proc := lower(t, m).Procs[0]
	if len(proc.Vars) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(proc.Vars))
	}
	if proc.Vars[2].Name != "x" || proc.Vars[2].Scope == proc.Vars[0].Scope {
		t.Fatal("inner x should live in its own scope")
	}
	stmts := proc.Blocks[0].Stmts
	ret := stmts[len(stmts)-1]
	if ret.LValue.Kind != LReturnPointer || ret.RValue.L.LValue != VarLV(0) {
		t.Fatalf("return should read the outer x, got %s", FormatRValue(ret.RValue))
	}
}

func TestLowerCodeAfterReturn(t *testing.T) {
	b := ast.NewBuilder(0)
	arms := b.If(b.Bool(true), b.Block(nil, b.Return(b.I64(1))), b.Block(nil, b.Return(b.I64(2))))
	tests := []struct {
		name   string
		body   []*ast.Stmt
		blocks int
	}{
		{"statements after return", []*ast.Stmt{
			b.Return(b.I64(1)),
			b.Let("dead", types.I64, b.I64(2)),
			b.ExprStmt(b.Ident("dead")),
		}, 1},
		{"every arm returns", []*ast.Stmt{
			b.ExprStmt(arms),
			b.Let("dead", types.I64, b.I64(3)),
		}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := b.Module("main", b.Func("early", nil, types.I64, tt.body...))
			proc := lower(t, m).Procs[0]
			if len(proc.Blocks) != tt.blocks {
				t.Fatalf("expected %d blocks, got %d", tt.blocks, len(proc.Blocks))
			}
			if err := validatePredecessors(proc); err != nil {
				t.Fatalf("orphan blocks left: %v", err)
			}
			for i := range proc.Blocks {
				for _, st := range proc.Blocks[i].Stmts {
					if st.LValue.Kind == LVar && proc.Vars[st.LValue.Var].Name == "dead" {
						t.Fatalf("bb%d stores to dead", i)
					}
				}
			}
		})
	}
}

func TestLowerUnsupported(t *testing.T) {
	b := ast.NewBuilder(0)
	co := types.Coroutine(types.I64)
	m := b.Module("main",
		b.Coroutine("gen", nil, types.I64, b.YieldReturn(b.I64(1))),
		b.Func("drive", nil, types.I64,
			b.Let("c", co, b.Call(ast.CallCoroutineInit, "gen")),
			b.Return(b.Yield(b.Ident("c"))),
		),
	)
	tree := resolve(t, m)
	_, err := LowerModule(context.Background(), tree, nil, Options{})
	de, ok := diag.AsError(err)
	if !ok || de.Code != diag.MirUnsupported {
		t.Fatalf("expected MirUnsupported, got %v", err)
	}

	_, err = LowerRoutine(tree.Coroutines[0], nil, Options{})
	if de, ok := diag.AsError(err); !ok || de.Code != diag.MirUnsupported || !strings.Contains(de.Msg, "coroutine") {
		t.Fatalf("coroutine lowering should be rejected, got %v", err)
	}
}
