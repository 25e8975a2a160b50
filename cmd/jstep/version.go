package main

import (
	"encoding/json"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jstep/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.Current())
		}
		if !useColor(cmd, os.Stdout) {
			color.NoColor = true
		}
		version.WriteBanner(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print as JSON")
}
