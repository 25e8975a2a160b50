package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	data := "[package]\nname = \"demo\"\n\n[interpreter]\nspeed = 5.0\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Defaults()
	if cfg.Package.Name != "demo" || cfg.Interpreter.Speed != 5 {
		t.Fatalf("decoded values lost: %+v", cfg)
	}
	if cfg.Interpreter.TickMS != def.Interpreter.TickMS || cfg.Interpreter.Budget != def.Interpreter.Budget {
		t.Fatalf("defaults lost: %+v", cfg.Interpreter)
	}
	if cfg.Root != dir {
		t.Fatalf("Root = %q, want %q", cfg.Root, dir)
	}
}

func TestLoadRejectsBadBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	if err := os.WriteFile(path, []byte("[interpreter]\nbudget = 1.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestInitThenLoadAndSources(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteInit(dir, "hello")
	if err != nil {
		t.Fatalf("WriteInit: %v", err)
	}
	if _, err := WriteInit(dir, "again"); err == nil {
		t.Fatalf("second init must fail")
	}
	if err := os.WriteFile(filepath.Join(dir, "Util.jst"), []byte("class Util {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	srcs, err := cfg.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(srcs) != 2 || filepath.Base(srcs[0]) != "Main.jst" || filepath.Base(srcs[1]) != "Util.jst" {
		t.Fatalf("sources = %v", srcs)
	}
	found, ok, err := FindManifest(filepath.Join(dir))
	if err != nil || !ok || found != path {
		t.Fatalf("FindManifest = %q %v %v", found, ok, err)
	}
}
