package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jstep/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "jstep",
	Short:         "Step-by-step interpreter and toolchain for .jst programs",
	Long:          `jstep compiles .jst sources into step programs, runs them at a controlled speed and debugs them line by line`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := startProfiling(cmd); err != nil {
			return err
		}
		return startTracing(cmd)
	},
}

// exitCode ends the process with a status and no message; the command has
// already reported what went wrong.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show compile phase timings")
	pf.Int("max-diagnostics", 0, "maximum number of diagnostics per unit (0 = from jstep.toml)")
	pf.String("config", "", "path to jstep.toml (default: searched upwards from the working directory)")
	pf.Int("jobs", 0, "parallel parse workers (0 = GOMAXPROCS)")
	pf.String("ui", "auto", "show compile progress (auto|on|off)")
	pf.Bool("cache", false, "store compiled programs in the user cache directory")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
	pf.String("trace", "", "compiler trace output (file path, '-' for stderr)")
	pf.String("trace-level", "off", "compiler trace level (off|error|phase|detail)")
	pf.String("trace-mode", "ring", "compiler trace storage (stream|ring|both)")

	err := rootCmd.Execute()
	if terr := stopTracing(); terr != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", terr)
	}
	if perr := stopProfiling(); perr != nil {
		fmt.Fprintf(os.Stderr, "profiling: %v\n", perr)
	}
	if err == nil {
		return
	}
	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	fmt.Fprintf(os.Stderr, "jstep: %v\n", err)
	os.Exit(1)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color for output going to f.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(f)
}
