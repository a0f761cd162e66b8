package driver

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/sema"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

func sampleUnit(name string) *Unit {
	b := ast.NewBuilder(0)
	tree := b.Module("main",
		b.Func("double", []ast.Param{b.Param("a", types.I64)}, types.I64,
			b.Return(b.Bin(ast.BinMul, b.Ident("a"), b.I64(2))),
		),
		b.Func("my_main", nil, types.I64,
			b.Let("x", types.I64, b.Call(ast.CallFunction, "double", b.I64(21))),
			b.Return(b.If(b.Bool(true), b.Block(b.Ident("x")), b.Block(b.I64(0)))),
		),
	)
	return &Unit{Name: name, Tree: tree, Imports: symbols.NewImports()}
}

func writeUnit(t *testing.T, dir string, u *Unit) string {
	t.Helper()
	path := filepath.Join(dir, u.Name+UnitExt)
	if err := WriteUnit(path, u); err != nil {
		t.Fatalf("write unit: %v", err)
	}
	return path
}

func testOptions() Options {
	return Options{Policy: sema.DefaultPolicy(), Jobs: 4, Validate: true, Simplify: true, CheckResolved: true}
}

func TestReadUnitNamesFromFile(t *testing.T) {
	dir := t.TempDir()
	u := sampleUnit("")
	path := filepath.Join(dir, "calc"+UnitExt)
	if err := WriteUnit(path, u); err != nil {
		t.Fatalf("write unit: %v", err)
	}
	got, err := ReadUnit(path)
	if err != nil {
		t.Fatalf("read unit: %v", err)
	}
	if got.Name != "calc" {
		t.Fatalf("unit name = %q, want calc", got.Name)
	}
	if len(got.Tree.Functions) != 2 {
		t.Fatalf("decoded %d functions, want 2", len(got.Tree.Functions))
	}
}

func TestReadUnitErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadUnit(filepath.Join(dir, "missing"+UnitExt))
	if de, ok := diag.AsError(err); !ok || de.Code != diag.DrvReadUnit {
		t.Fatalf("missing file: got %v", err)
	}
}

func TestRunStages(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, sampleUnit("calc"))

	tests := []struct {
		stage Stage
		want  []string
	}{
		{StageCheck, []string{"calc: ok"}},
		{StageMIR, []string{"procs=2", "fn root::main::double -> i64:", "call fn root::main::double(const 21_i64)"}},
		{StageLLVM, []string{"define i64 @main.double(i64 %a)", "mul i64", "call i64 @main.double(i64 21)"}},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			res, err := Run(context.Background(), []string{path}, tt.stage, testOptions())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(res) != 1 || res[0].HasErrors() {
				t.Fatalf("unexpected diagnostics: %+v", res[0].Bag.Items())
			}
			for _, w := range tt.want {
				if !strings.Contains(res[0].Output, w) {
					t.Fatalf("output missing %q:\n%s", w, res[0].Output)
				}
			}
		})
	}
}

func TestRunReportsPerUnit(t *testing.T) {
	dir := t.TempDir()
	good := writeUnit(t, dir, sampleUnit("good"))

	b := ast.NewBuilder(0)
	broken := &Unit{Name: "bad", Tree: b.Module("main",
		b.Func("my_main", nil, types.I64, b.Return(b.Ident("nope"))),
	)}
	bad := writeUnit(t, dir, broken)
	missing := filepath.Join(dir, "gone"+UnitExt)

	var mu sync.Mutex
	phases := map[string]int{}
	opts := testOptions()
	opts.Observer = func(ev PhaseEvent) {
		if ev.Status != PhaseEnd {
			return
		}
		mu.Lock()
		phases[ev.Name]++
		mu.Unlock()
	}

	res, err := Run(context.Background(), []string{good, bad, missing}, StageMIR, opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res[0].HasErrors() {
		t.Fatalf("good unit failed: %+v", res[0].Bag.Items())
	}
	if !res[1].HasErrors() || res[1].Bag.Items()[0].Unit != "bad" {
		t.Fatalf("bad unit: %+v", res[1].Bag.Items())
	}
	if !strings.Contains(res[1].Bag.Items()[0].Message, "nope") {
		t.Fatalf("message = %q", res[1].Bag.Items()[0].Message)
	}
	if got := res[2].Bag.Items(); len(got) != 1 || got[0].Code != diag.DrvReadUnit {
		t.Fatalf("missing unit: %+v", got)
	}
	if phases["read"] != 3 || phases["resolve"] != 2 || phases["lower"] != 1 {
		t.Fatalf("phase counts = %v", phases)
	}
}

func TestRunKeepsPolicyFlags(t *testing.T) {
	dir := t.TempDir()
	b := ast.NewBuilder(0)
	odd := &Unit{Name: "odd", Tree: b.Module("main",
		b.Func("my_main", []ast.Param{b.Param("n", types.I64)}, types.I64, b.Return(b.Ident("n"))),
	)}
	path := writeUnit(t, dir, odd)

	tests := []struct {
		name    string
		policy  sema.Policy
		wantErr bool
	}{
		{"entry check off", sema.Policy{}, false},
		{"entry check on", sema.Policy{ValidateEntry: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.Policy = tt.policy
			res, err := Run(context.Background(), []string{path}, StageMIR, opts)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := res[0].HasErrors(); got != tt.wantErr {
				t.Fatalf("HasErrors = %v, want %v: %+v", got, tt.wantErr, res[0].Bag.Items())
			}
		})
	}
}

func TestRunUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, sampleUnit("calc"))
	cache, err := NewDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	opts := testOptions()
	opts.Cache = cache

	first, err := Run(context.Background(), []string{path}, StageMIR, opts)
	if err != nil || first[0].Cached {
		t.Fatalf("first run: cached=%v err=%v", first[0].Cached, err)
	}
	second, err := Run(context.Background(), []string{path}, StageMIR, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second[0].Cached || second[0].Output != first[0].Output {
		t.Fatalf("second run should replay the cached dump")
	}

	// другой stage - другой ключ
	third, err := Run(context.Background(), []string{path}, StageCheck, opts)
	if err != nil || third[0].Cached {
		t.Fatalf("check run: cached=%v err=%v", third[0].Cached, err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	fourth, err := Run(context.Background(), []string{path}, StageMIR, opts)
	if err != nil || fourth[0].Cached {
		t.Fatalf("after drop: cached=%v err=%v", fourth[0].Cached, err)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, sampleUnit("calc"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, []string{path}, StageMIR, testOptions()); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestLowerProjectKeepsOrder(t *testing.T) {
	u := sampleUnit("calc")
	tree, err := sema.Resolve(context.Background(), u.Tree, sema.Options{Policy: sema.DefaultPolicy()})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, jobs := range []int{1, 8} {
		proj, err := LowerProject(context.Background(), tree, nil, LowerOptions{Jobs: jobs, Validate: true})
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		if len(proj.Procs) != 2 || proj.Procs[0].Name != "double" || proj.Procs[1].Name != "my_main" {
			t.Fatalf("jobs=%d: unexpected procedure order", jobs)
		}
	}
}
