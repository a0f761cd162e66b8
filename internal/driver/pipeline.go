package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"bramble/internal/ast"
	"bramble/internal/backend/llvm"
	"bramble/internal/diag"
	"bramble/internal/mir"
	"bramble/internal/sema"
	"bramble/internal/trace"
)

// Stage is the last pipeline step Run performs.
type Stage uint8

const (
	StageCheck Stage = iota + 1 // resolve only
	StageMIR                    // resolve and lower
	StageLLVM                   // resolve, lower and emit IR
)

func (s Stage) String() string {
	switch s {
	case StageCheck:
		return "check"
	case StageMIR:
		return "mir"
	case StageLLVM:
		return "llvm"
	default:
		return "unknown"
	}
}

// ParseStage converts a command name to Stage.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(s) {
	case "check":
		return StageCheck, nil
	case "mir":
		return StageMIR, nil
	case "llvm":
		return StageLLVM, nil
	}
	return 0, fmt.Errorf("unknown stage %q (expected: check|mir|llvm)", s)
}

// Options configure Run. The zero value checks one unit at a time; an
// empty Policy.EntryFn falls back to sema.DefaultEntryFn, the other policy
// flags are taken as given.
type Options struct {
	Policy sema.Policy
	// Jobs bounds both the units processed at once and the routines of
	// one unit lowered at once.
	Jobs     int
	Validate bool
	Simplify bool
	// CheckResolved re-walks the resolved tree and fails on any leftover
	// relative path.
	CheckResolved  bool
	MaxDiagnostics int

	Tracer   trace.Tracer
	Cache    *DiskCache
	Observer PhaseObserver
}

// Result is the outcome for one unit. Tree and Project are nil when the
// output came from the cache.
type Result struct {
	Path    string
	Unit    *Unit
	Tree    *ast.Module
	Project *mir.Project
	Output  string
	Bag     *diag.Bag
	Cached  bool
}

func (r *Result) HasErrors() bool { return r.Bag != nil && r.Bag.HasErrors() }

// Run reads every unit in paths and drives it through stage. Failures are
// reported per unit in Result.Bag; the returned error is reserved for
// cancellation.
func Run(ctx context.Context, paths []string, stage Stage, opts Options) ([]*Result, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	if opts.Policy.EntryFn == "" {
		opts.Policy.EntryFn = sema.DefaultEntryFn
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	jobs := max(1, opts.Jobs)

	root := trace.Begin(tracer, trace.ScopeDriver, "run", trace.ParentFrom(ctx)).
		WithExtra("stage", stage.String())
	defer root.End("")

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runUnit(gctx, path, stage, opts, tracer, root.ID(), i%jobs+1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func runUnit(ctx context.Context, path string, stage Stage, opts Options, tracer trace.Tracer, parent uint64, worker int) *Result {
	res := &Result{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	sp := trace.BeginWorker(tracer, trace.ScopeDriver, "unit", parent, worker).WithExtra("path", path)
	defer func() {
		detail := "ok"
		switch {
		case res.Cached:
			detail = "cached"
		case res.HasErrors():
			detail = "failed"
		}
		sp.End(detail)
	}()

	ph := startPhase(opts.Observer, path, "read")
	u, err := ReadUnit(path)
	ph.end(err)
	if err != nil {
		report(res.Bag, path, err)
		return res
	}
	res.Unit = u

	key, keyed := cacheKey(u, stage, opts)
	if keyed && opts.Cache != nil {
		var payload DiskPayload
		ok, err := opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			trace.Point(tracer, trace.ScopeDriver, "cache_error", err.Error(), sp.ID())
		case ok && payload.Stage == stage.String():
			res.Output = payload.Output
			res.Cached = true
			return res
		}
	}

	if err := process(ctx, res, stage, opts, tracer, sp.ID()); err != nil {
		report(res.Bag, u.Name, err)
		return res
	}

	if keyed && opts.Cache != nil {
		payload := &DiskPayload{Unit: u.Name, Stage: stage.String(), Output: res.Output}
		if err := opts.Cache.Put(key, payload); err != nil {
			res.Bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.DrvCacheFailure,
				Message:  fmt.Sprintf("cache write failed: %v", err),
				Unit:     u.Name,
			})
		}
	}
	return res
}

func process(ctx context.Context, res *Result, stage Stage, opts Options, tracer trace.Tracer, parent uint64) error {
	u := res.Unit

	ph := startPhase(opts.Observer, u.Name, "resolve")
	sp := trace.Begin(tracer, trace.ScopePass, "resolve", parent)
	tree, err := sema.Resolve(trace.WithTracer(ctx, tracer), u.Tree, sema.Options{
		Policy:  opts.Policy,
		Imports: u.Imports,
		Tracer:  tracer,
	})
	if err == nil && opts.CheckResolved {
		err = sema.CheckResolved(tree)
	}
	sp.End("")
	ph.end(err)
	if err != nil {
		return err
	}
	res.Tree = tree
	if stage == StageCheck {
		res.Output = fmt.Sprintf("%s: ok\n", u.Name)
		return nil
	}

	ph = startPhase(opts.Observer, u.Name, "lower")
	sp = trace.Begin(tracer, trace.ScopePass, "lower", parent)
	proj, err := LowerProject(ctx, tree, u.Imports, LowerOptions{
		Jobs:     opts.Jobs,
		Validate: opts.Validate,
		Simplify: opts.Simplify,
		Tracer:   tracer,
		Parent:   sp.ID(),
	})
	sp.End("")
	ph.end(err)
	if err != nil {
		return err
	}
	res.Project = proj
	if stage == StageMIR {
		var buf bytes.Buffer
		if err := mir.Dump(&buf, proj); err != nil {
			return err
		}
		res.Output = buf.String()
		return nil
	}

	ph = startPhase(opts.Observer, u.Name, "codegen")
	sp = trace.Begin(tracer, trace.ScopePass, "codegen", parent)
	mod, err := llvm.Generate(proj)
	sp.End("")
	ph.end(err)
	if err != nil {
		return err
	}
	res.Output = mod.String()
	return nil
}

func cacheKey(u *Unit, stage Stage, opts Options) (Digest, bool) {
	data, err := u.bytes()
	if err != nil {
		return Digest{}, false
	}
	return CacheKey(data,
		"stage="+stage.String(),
		fmt.Sprintf("policy=%+v", opts.Policy),
		fmt.Sprintf("validate=%t simplify=%t checked=%t", opts.Validate, opts.Simplify, opts.CheckResolved),
	), true
}

// report adds err to bag; joined errors become one diagnostic each.
func report(bag *diag.Bag, unit string, err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		if _, coded := diag.AsError(err); !coded {
			for _, e := range joined.Unwrap() {
				report(bag, unit, e)
			}
			return
		}
	}
	r := &diag.BagReporter{Bag: bag, Unit: unit}
	diag.ReportErr(r, err)
}
