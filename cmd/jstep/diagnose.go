package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jstep/internal/diag"
	"jstep/internal/diagfmt"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.jst|directory]...",
	Short: "Report diagnostics of a project or a set of files",
	Long: `Compile the given files (or the project of jstep.toml) and report lexical,
syntax and semantic diagnostics. Exits with status 1 when any error is found.`,
	RunE: runDiagnose,
}

func init() {
	f := diagCmd.Flags()
	f.String("format", "pretty", "output format (pretty|json|short)")
	f.Bool("no-warnings", false, "hide warnings and infos")
	f.String("min-severity", "", "hide diagnostics below this severity (info|warning|error)")
	f.Bool("warnings-as-errors", false, "fail on warnings too")
	f.Bool("with-notes", false, "include diagnostic notes")
	f.Bool("suggest", false, "include fix suggestions")
	f.Bool("preview", false, "show the source lines a fix would produce")
	f.String("paths", "auto", "path style (auto|absolute|relative|basename)")
	f.Int8("context", 1, "source lines of context around the primary line")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	format, _ := f.GetString("format")
	noWarnings, _ := f.GetBool("no-warnings")
	warnAsErr, _ := f.GetBool("warnings-as-errors")
	withNotes, _ := f.GetBool("with-notes")
	suggest, _ := f.GetBool("suggest")
	preview, _ := f.GetBool("preview")
	pathsFlag, _ := f.GetString("paths")
	context, _ := f.GetInt8("context")
	if noWarnings && warnAsErr {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	mode, err := parsePathMode(pathsFlag)
	if err != nil {
		return err
	}

	cfg, paths, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	res, err := compileProject(cmd, cfg, paths, nil)
	if err != nil {
		return err
	}

	minSev := diag.SevInfo
	if name, _ := f.GetString("min-severity"); name != "" {
		sev, ok := diag.ParseSeverity(name)
		if !ok {
			return fmt.Errorf("unknown severity %q (info|warning|error)", name)
		}
		minSev = sev
	}
	if noWarnings {
		minSev = diag.SevError
	}
	diags := res.Diagnostics()
	kept := diags[:0]
	for _, d := range diags {
		if d.Severity >= minSev {
			kept = append(kept, d)
		}
	}
	diags = kept
	failed := false
	for _, d := range diags {
		if d.Severity.Blocking() || warnAsErr && d.Severity == diag.SevWarning {
			failed = true
			break
		}
	}

	base, _ := os.Getwd()
	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		diagfmt.Pretty(out, diags, res.Files, diagfmt.PrettyOpts{
			Color:       useColor(cmd, os.Stdout),
			Context:     context,
			PathMode:    mode,
			BaseDir:     base,
			ShowNotes:   withNotes,
			ShowFixes:   suggest,
			ShowPreview: preview,
		})
		if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet && len(diags) == 0 {
			fmt.Fprintf(out, "no issues in %d unit(s)\n", len(paths))
		}
	case "short":
		diagfmt.Short(out, diags, res.Files, mode, base)
	case "json":
		err := diagfmt.JSON(out, diags, res.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         mode,
			BaseDir:          base,
			IncludeNotes:     withNotes,
			IncludeFixes:     suggest,
			IncludePreviews:  preview,
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if failed {
		return exitCode(1)
	}
	return nil
}

func parsePathMode(s string) (diagfmt.PathMode, error) {
	switch s {
	case "auto":
		return diagfmt.PathModeAuto, nil
	case "absolute":
		return diagfmt.PathModeAbsolute, nil
	case "relative":
		return diagfmt.PathModeRelative, nil
	case "basename":
		return diagfmt.PathModeBasename, nil
	}
	return 0, fmt.Errorf("unknown path style %q (expected auto|absolute|relative|basename)", s)
}
