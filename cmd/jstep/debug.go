package main

import (
	"os"

	"github.com/spf13/cobra"

	"jstep/internal/debugger"
)

var debugCmd = &cobra.Command{
	Use:   "debug [flags] [file.jst|directory]...",
	Short: "Debug the main unit with breakpoints and stepping",
	Long: `Start the main unit paused before its first statement and read debugger
commands (break, continue, step, next, finish, print, locals, where). Type
help at the prompt for the full list.`,
	RunE: runDebug,
}

func runDebug(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	res, err := compileProject(cmd, cfg, paths, &writerConsole{w: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	if err := checkStartable(cmd, res, paths[0]); err != nil {
		return err
	}
	return debugger.REPL(cmd.Context(), res, paths[0], useColor(cmd, os.Stdout))
}
