package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bramble/internal/diag"
	"bramble/internal/diagfmt"
	"bramble/internal/driver"
	"bramble/internal/observ"
	"bramble/internal/prof"
	"bramble/internal/source"
)

const cacheApp = "bramble"

var (
	checkCmd = newStageCmd(driver.StageCheck, "check [units...]", "Resolve units and report diagnostics")
	mirCmd   = newStageCmd(driver.StageMIR, "mir [units...]", "Lower units to MIR and print it")
	llvmCmd  = newStageCmd(driver.StageLLVM, "llvm [units...]", "Emit LLVM IR for units")
)

// errFailed is returned after diagnostics were printed; main only needs the
// exit code.
var errFailed = errors.New("compilation failed")

func newStageCmd(stage driver.Stage, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, stage, args)
		},
	}
	cmd.Flags().String("main", "", "entry routine name")
	cmd.Flags().StringP("output", "o", "", "write output to file (stage mir|llvm with a single unit), - for stdout")
	cmd.Flags().String("source", "", "source file the unit spans refer to, for diagnostics")
	if stage != driver.StageCheck {
		cmd.Flags().Bool("no-validate", false, "skip MIR validation")
		cmd.Flags().Bool("simplify", false, "run the CFG simplifier")
	}
	return cmd
}

func runStage(cmd *cobra.Command, stage driver.Stage, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	tracer, cleanup, err := setupTracing(cmd, s.cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	session, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}()

	paths, err := expandUnits(args)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Policy:         s.cfg.Policy(),
		Jobs:           s.cfg.Jobs(),
		Validate:       s.cfg.MIR.Validate,
		Simplify:       s.cfg.MIR.Simplify,
		CheckResolved:  true,
		MaxDiagnostics: s.maxDiagnostics,
		Tracer:         tracer,
	}
	if s.cfg.Build.Cache {
		cache, err := driver.OpenDiskCache(cacheApp)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}

	var timings *observ.Timings
	if on, _ := cmd.Root().PersistentFlags().GetBool("timings"); on {
		timings = observ.NewTimings()
		opts.Observer = func(ev driver.PhaseEvent) {
			if ev.Status == driver.PhaseEnd {
				timings.Record(ev.Name, ev.Elapsed)
			}
		}
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), timings.Summary()) }()
	}

	var results []*driver.Result
	if s.tui {
		results, err = runWithUI(cmd.Context(), paths, stage, opts)
	} else {
		results, err = driver.Run(cmd.Context(), paths, stage, opts)
	}
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	if src, _ := cmd.Flags().GetString("source"); src != "" {
		if _, err := fs.Load(src); err != nil {
			return err
		}
	}
	for _, r := range results {
		if r.Unit != nil && r.Unit.Source != "" {
			if _, ok := fs.Lookup(r.Unit.Source); !ok {
				_, _ = fs.Load(r.Unit.Source)
			}
		}
	}

	failed, err := report(cmd.ErrOrStderr(), results, fs, s)
	if err != nil {
		return err
	}
	if failed {
		dumpRing(cmd, tracer)
		return errFailed
	}
	if stage == driver.StageCheck && s.quiet {
		return nil
	}
	return writeOutputs(cmd, stage, results)
}

// expandUnits replaces directories with the encoded units they contain.
func expandUnits(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil || !info.IsDir() {
			out = append(out, a)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(a, "*"+driver.UnitExt))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no %s units", a, driver.UnitExt)
		}
		out = append(out, matches...)
	}
	return out, nil
}

func report(w io.Writer, results []*driver.Result, fs *source.FileSet, s *settings) (bool, error) {
	bag := diag.NewBag(1)
	failed := false
	for _, r := range results {
		bag.Merge(r.Bag)
		failed = failed || r.HasErrors()
	}
	bag.Sort()
	bag.Dedup()
	if s.jsonDiags {
		return failed, diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
	}
	if bag.Len() == 0 {
		return failed, nil
	}
	return failed, diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{Color: s.color, ShowNotes: true, Context: 1})
}

func writeOutputs(cmd *cobra.Command, stage driver.Stage, results []*driver.Result) error {
	out, _ := cmd.Flags().GetString("output")
	if out != "" && out != "-" {
		if len(results) != 1 {
			return fmt.Errorf("--output needs exactly one unit, got %d", len(results))
		}
		return os.WriteFile(out, []byte(results[0].Output), 0o600)
	}
	w := cmd.OutOrStdout()
	for i, r := range results {
		if len(results) > 1 && stage != driver.StageCheck {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "; %s\n", r.Path)
		}
		if _, err := io.WriteString(w, r.Output); err != nil {
			return err
		}
	}
	return nil
}

func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	opts.CPU, _ = flags.GetString("cpuprofile")
	opts.Mem, _ = flags.GetString("memprofile")
	opts.Trace, _ = flags.GetString("runtime-trace")
	return prof.Start(opts)
}
