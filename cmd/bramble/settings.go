package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bramble/internal/config"
)

// switchMode is the auto|on|off value of --color and --ui.
type switchMode string

const (
	modeAuto switchMode = "auto"
	modeOn   switchMode = "on"
	modeOff  switchMode = "off"
)

func readSwitch(flag, value string) (switchMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return modeAuto, nil
	case "on":
		return modeOn, nil
	case "off":
		return modeOff, nil
	}
	return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled resolves auto against f being a terminal.
func (m switchMode) enabled(f *os.File) bool {
	switch m {
	case modeOn:
		return true
	case modeOff:
		return false
	}
	return isTerminal(f)
}

func colorEnabled(m switchMode, f *os.File) bool {
	if m == modeAuto && os.Getenv("NO_COLOR") != "" {
		return false
	}
	return m.enabled(f)
}

// settings is the merged view of bramble.toml and command-line flags.
// Flags win when they were set explicitly.
type settings struct {
	cfg            config.Config
	quiet          bool
	color          bool
	jsonDiags      bool
	tui            bool
	maxDiagnostics int
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Root().PersistentFlags()

	var (
		cfg config.Config
		err error
	)
	path, _ := flags.GetString("config")
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err == nil {
			cfg, err = config.Discover(wd)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := applyFlags(&cfg, cmd); err != nil {
		return nil, err
	}

	s := &settings{cfg: cfg}
	s.quiet, _ = flags.GetBool("quiet")
	s.maxDiagnostics, _ = flags.GetInt("max-diagnostics")

	colorStr, _ := flags.GetString("color")
	cm, err := readSwitch("color", colorStr)
	if err != nil {
		return nil, err
	}
	s.color = colorEnabled(cm, os.Stderr)
	color.NoColor = !colorEnabled(cm, os.Stdout)

	diagFmt, _ := flags.GetString("diagnostics")
	switch strings.ToLower(diagFmt) {
	case "pretty":
	case "json":
		s.jsonDiags = true
	default:
		return nil, fmt.Errorf("invalid --diagnostics value %q (expected pretty|json)", diagFmt)
	}

	uiStr, _ := flags.GetString("ui")
	um, err := readSwitch("ui", uiStr)
	if err != nil {
		return nil, err
	}
	// прогресс рисуется в stderr
	s.tui = um.enabled(os.Stderr) && !s.quiet
	return s, nil
}

// applyFlags overrides cfg with every explicitly set flag.
func applyFlags(cfg *config.Config, cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("jobs") {
		n, _ := flags.GetInt("jobs")
		if n < 0 {
			return fmt.Errorf("--jobs must not be negative")
		}
		cfg.Build.Jobs = n
	}
	if flags.Changed("cache") {
		cfg.Build.Cache, _ = flags.GetBool("cache")
	}
	if flags.Changed("trace") {
		cfg.Trace.Output, _ = flags.GetString("trace")
		// --trace без уровня включает фазы
		if !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
			cfg.Trace.Level = "phase"
		}
	}
	if flags.Changed("trace-level") {
		cfg.Trace.Level, _ = flags.GetString("trace-level")
	}
	if flags.Changed("trace-mode") {
		cfg.Trace.Mode, _ = flags.GetString("trace-mode")
	}

	local := cmd.Flags()
	if f := local.Lookup("no-validate"); f != nil && f.Changed {
		v, _ := local.GetBool("no-validate")
		cfg.MIR.Validate = !v
	}
	if f := local.Lookup("simplify"); f != nil && f.Changed {
		cfg.MIR.Simplify, _ = local.GetBool("simplify")
	}
	if f := local.Lookup("main"); f != nil && f.Changed {
		cfg.Semantics.MainFn, _ = local.GetString("main")
	}
	return nil
}
