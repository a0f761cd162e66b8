package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bramble/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "bramble",
	Short:         "Bramble semantic resolver and MIR compiler",
	Long:          `Bramble resolves parsed units, lowers them to MIR and emits LLVM IR`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.Version = version.Describe()

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(mirCmd)
	rootCmd.AddCommand(llvmCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.String("config", "", "path to bramble.toml (default: search upwards from the working directory)")
	pf.Int("jobs", 0, "parallel workers (0 = config or GOMAXPROCS)")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per unit")
	pf.String("diagnostics", "pretty", "diagnostics format (pretty|json)")
	pf.String("ui", "off", "progress UI (auto|on|off)")
	pf.Bool("cache", false, "reuse outputs from the on-disk cache")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "", "trace storage mode (stream|ring|both)")
	pf.Bool("timings", false, "print per-phase timings to stderr")
	pf.String("cpuprofile", "", "write a CPU profile to file")
	pf.String("memprofile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
