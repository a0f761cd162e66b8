package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bramble/internal/ast"
	"bramble/internal/mir"
	"bramble/internal/symbols"
	"bramble/internal/trace"
)

// LowerOptions control LowerProject.
type LowerOptions struct {
	Jobs     int
	Validate bool
	Simplify bool
	Tracer   trace.Tracer
	Parent   uint64
}

// LowerProject lowers every function of a resolved tree. Routines are
// independent once the project skeleton is collected, so they are lowered
// on up to opts.Jobs workers. Procedure order matches mir.Functions.
func LowerProject(ctx context.Context, root *ast.Module, imports *symbols.Imports, opts LowerOptions) (*mir.Project, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	proj := mir.CollectProject(root, imports)
	fns := mir.Functions(root)
	procs := make([]*mir.Procedure, len(fns))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(fns))))
	for i, rt := range fns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sp := trace.BeginWorker(tracer, trace.ScopeModule, "lower_routine", opts.Parent, i%jobs+1).
				WithExtra("routine", rt.Ann.Path.String())
			proc, err := mir.LowerRoutine(rt, proj, mir.Options{Tracer: tracer, Parent: sp.ID()})
			if err != nil {
				sp.End("error")
				return err
			}
			if opts.Simplify {
				mir.SimplifyCFG(proc)
			}
			sp.End(fmt.Sprintf("blocks=%d", len(proc.Blocks)))
			procs[i] = proc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, p := range procs {
		proj.Add(p)
	}
	if opts.Validate {
		if err := mir.Validate(proj); err != nil {
			return nil, err
		}
	}
	return proj, nil
}
