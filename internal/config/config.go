// Package config loads bramble.toml and maps it onto pass options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"bramble/internal/diag"
	"bramble/internal/sema"
	"bramble/internal/trace"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "bramble.toml"

type Package struct {
	Name string `toml:"name"`
}

type Semantics struct {
	MainFn             string `toml:"main_fn"`
	ValidateMain       bool   `toml:"validate_main"`
	ExternStructParams bool   `toml:"extern_struct_params"`
}

type MIR struct {
	Validate bool `toml:"validate"`
	Simplify bool `toml:"simplify"`
}

type Build struct {
	Jobs  int  `toml:"jobs"`
	Cache bool `toml:"cache"`
}

type Trace struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Config mirrors bramble.toml. Path is the file it was read from, empty
// for defaults.
type Config struct {
	Path      string    `toml:"-"`
	Package   Package   `toml:"package"`
	Semantics Semantics `toml:"semantics"`
	MIR       MIR       `toml:"mir"`
	Build     Build     `toml:"build"`
	Trace     Trace     `toml:"trace"`
}

// Default returns the configuration used when no bramble.toml exists.
func Default() Config {
	return Config{
		Semantics: Semantics{MainFn: sema.DefaultEntryFn, ValidateMain: true},
		MIR:       MIR{Validate: true},
		Trace:     Trace{Level: "off", Mode: "stream", Output: "-"},
	}
}

// Find walks up from startDir to locate bramble.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of Default. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, diag.Newf(diag.DrvConfig, "%s: failed to parse TOML: %v", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, diag.Newf(diag.DrvConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return Config{}, diag.Newf(diag.DrvConfig, "%s: %v", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest bramble.toml above startDir, or the defaults
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Semantics.MainFn) == "" {
		return errors.New("[semantics].main_fn must not be empty")
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must be >= 0, got %d", c.Build.Jobs)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	if c.Trace.Format != "" {
		if _, ok := trace.ParseFormat(c.Trace.Format); !ok {
			return fmt.Errorf("[trace].format: unknown format %q", c.Trace.Format)
		}
	}
	return nil
}

// Policy returns the resolver policy described by [package] and
// [semantics]. Names are NFC-normalized to match encoded identifiers.
func (c Config) Policy() sema.Policy {
	return sema.Policy{
		EntryModule:             norm.NFC.String(c.Package.Name),
		EntryFn:                 norm.NFC.String(c.Semantics.MainFn),
		ValidateEntry:           c.Semantics.ValidateMain,
		AllowExternStructParams: c.Semantics.ExternStructParams,
	}
}

// Jobs is the number of parallel lowering workers.
func (c Config) Jobs() int {
	if c.Build.Jobs > 0 {
		return c.Build.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// TraceConfig builds the tracer configuration; an output of "-" means
// stderr.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format := trace.FormatAuto
	if c.Trace.Format != "" {
		format, _ = trace.ParseFormat(c.Trace.Format)
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output}, nil
}
