package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jstep/internal/steps"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] [file.jst|directory]...",
	Short: "Print the generated step programs",
	RunE:  runDump,
}

func init() {
	f := dumpCmd.Flags()
	f.String("format", "text", "output format (text|msgpack)")
	f.StringP("out", "o", "", "write to file instead of stdout")
	f.StringSlice("program", nil, "only programs whose name contains one of these")
}

func runDump(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	filters, _ := cmd.Flags().GetStringSlice("program")
	if format != "text" && format != "msgpack" {
		return fmt.Errorf("unknown format: %s", format)
	}
	if format == "msgpack" && outPath == "" && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write msgpack to a terminal; use --out")
	}

	cfg, paths, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	res, err := compileProject(cmd, cfg, paths, &writerConsole{w: io.Discard})
	if err != nil {
		return err
	}
	if res.HasErrors() {
		if err := checkStartable(cmd, res, paths[0]); err != nil {
			return err
		}
	}

	var progs []*steps.Program
	for _, p := range res.Output.Programs() {
		if matchesAny(p.Name, filters) {
			progs = append(progs, p)
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath) // #nosec G304 -- path comes from the command line
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	if format == "msgpack" {
		if err := steps.Encode(bw, progs); err != nil {
			return err
		}
		return bw.Flush()
	}
	for i, p := range progs {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		if err := steps.Disasm(bw, p, res.Types(), res.Files); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func matchesAny(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}
