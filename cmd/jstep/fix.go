package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jstep/internal/diag"
	"jstep/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [file.jst|directory]...",
	Short: "Apply the fixes attached to diagnostics",
	Long: `Compile the sources, select fixes attached to diagnostics and print what
would change. With --write the edited files are saved.`,
	RunE: runFix,
}

func init() {
	f := fixCmd.Flags()
	f.Bool("all", false, "apply every non-conflicting fix instead of the first one")
	f.StringSlice("code", nil, "only fixes of diagnostics with these codes (e.g. SYN2007)")
	f.Bool("write", false, "write the edited files")
	f.Bool("backup", false, "keep <file>.bak copies when writing")
}

func runFix(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	all, _ := f.GetBool("all")
	codeIDs, _ := f.GetStringSlice("code")
	write, _ := f.GetBool("write")
	backup, _ := f.GetBool("backup")

	opts := fix.Options{Mode: fix.ModeFirst}
	if all {
		opts.Mode = fix.ModeAll
	}
	for _, id := range codeIDs {
		c, ok := diag.ParseCode(id)
		if !ok {
			return fmt.Errorf("unknown diagnostic code %q", id)
		}
		opts.Codes = append(opts.Codes, c)
	}

	cfg, paths, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	res, err := compileProject(cmd, cfg, paths, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result, err := fix.Apply(res.Files, res.Diagnostics(), opts)
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(out, "no applicable fixes")
		return nil
	}
	if err != nil {
		return err
	}
	for _, a := range result.Applied {
		start, _ := res.Files.Resolve(a.Span)
		fmt.Fprintf(out, "%s:%d:%d: %s (%s)\n", a.Path, start.Line, start.Col, a.Title, a.Code.ID())
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(out, "skipped: %s: %s\n", s.Title, s.Reason)
	}
	if !write {
		fmt.Fprintf(out, "%d fix(es) ready; rerun with --write to save\n", len(result.Applied))
		return nil
	}
	if err := fix.WriteFiles(result, backup); err != nil {
		return err
	}
	fmt.Fprintf(out, "updated %d file(s)\n", len(result.Files))
	return nil
}
