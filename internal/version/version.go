package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
)

// Overridden at build time via -ldflags "-X jstep/internal/version.Version=...".
var (
	Version   = "0.3.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var (
	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgGreen, color.Bold)
	dimColor     = color.New(color.Faint)
)

// Info is the machine readable form printed by `jstep version --json`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"commit,omitempty"`
	BuildDate string `json:"date,omitempty"`
	GoVersion string `json:"go"`
}

func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate, GoVersion: runtime.Version()}
}

// Short is "jstep <version>" without color.
func Short() string { return "jstep " + Version }

// WriteBanner prints the colored version block.
func WriteBanner(w io.Writer) {
	info := Current()
	fmt.Fprintf(w, "%s %s\n", nameColor.Sprint("jstep"), versionColor.Sprint(info.Version))
	if info.GitCommit != "" {
		fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("commit"), info.GitCommit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("built "), info.BuildDate)
	}
	fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("go    "), info.GoVersion)
}
