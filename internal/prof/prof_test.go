package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHeapProfileWrittenOnStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.out")
	s, err := Start("", path, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil || st.Size() == 0 {
		t.Fatalf("heap profile missing: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestBadPathFails(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "missing", "cpu.out")
	if _, err := Start(bad, "", ""); err == nil {
		t.Fatalf("Start accepted %s", bad)
	}
}
