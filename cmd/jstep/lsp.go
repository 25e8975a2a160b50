package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"jstep/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	f := lspCmd.Flags()
	f.Duration("debounce", 150*time.Millisecond, "delay between the last edit and analysis")
	f.String("log", "", "write server logs to this file")
	f.CountP("verbose", "v", "log verbosity (repeat for more)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")
	logPath, _ := cmd.Flags().GetString("log")
	verbosity, _ := cmd.Flags().GetCount("verbose")
	// stdout занят протоколом
	if logPath != "" {
		commonlog.Configure(verbosity+1, &logPath)
	} else {
		commonlog.Configure(0, nil)
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	srv := lsp.NewServer(lsp.ServerOptions{
		Debounce:       debounce,
		MaxDiagnostics: maxDiagnostics(cmd, cfg),
	})
	return srv.RunStdio()
}
