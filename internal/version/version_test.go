package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestBannerListsOptionalFields(t *testing.T) {
	color.NoColor = true
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit, BuildDate = "", ""
	var buf bytes.Buffer
	WriteBanner(&buf)
	if strings.Contains(buf.String(), "commit") {
		t.Fatalf("got %q, want no commit line", buf.String())
	}
	if !strings.HasPrefix(buf.String(), "jstep "+Version+"\n") {
		t.Fatalf("got %q, want the version first", buf.String())
	}

	GitCommit, BuildDate = "abc123", "2026-01-15"
	buf.Reset()
	WriteBanner(&buf)
	for _, want := range []string{"commit abc123", "2026-01-15"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("got %q, want %q", buf.String(), want)
		}
	}
}

func TestCurrent(t *testing.T) {
	info := Current()
	if info.Version != Version || info.GoVersion == "" {
		t.Fatalf("got %+v", info)
	}
	if Short() != "jstep "+Version {
		t.Fatalf("got %q", Short())
	}
}
