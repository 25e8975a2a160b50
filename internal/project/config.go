// Package project loads the jstep.toml project configuration.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrNoSources = errors.New("no .jst sources")

type Package struct {
	Name string `toml:"name"`
}

type Run struct {
	Main    string   `toml:"main"`
	Sources []string `toml:"sources"`
}

// Interpreter mirrors the Load Controller settings.
type Interpreter struct {
	Speed           float64 `toml:"speed"` // шагов в секунду, <= 0 - без ограничения
	TickMS          int     `toml:"tick_ms"`
	Budget          float64 `toml:"budget"`
	SingleStepBelow float64 `toml:"single_step_below"`
	Slice           int     `toml:"slice"`
}

type Diagnostics struct {
	Max int `toml:"max"`
}

type Config struct {
	Package     Package     `toml:"package"`
	Run         Run         `toml:"run"`
	Interpreter Interpreter `toml:"interpreter"`
	Diagnostics Diagnostics `toml:"diagnostics"`

	// Path and Root are filled by Load.
	Path string `toml:"-"`
	Root string `toml:"-"`
}

func Defaults() Config {
	return Config{
		Package: Package{Name: "main"},
		Run:     Run{Main: "Main.jst", Sources: []string{"*.jst"}},
		Interpreter: Interpreter{
			Speed:           0,
			TickMS:          16,
			Budget:          0.7,
			SingleStepBelow: 20,
			Slice:           64,
		},
		Diagnostics: Diagnostics{Max: 100},
	}
}

// Tick returns the host tick as a duration.
func (c Config) Tick() time.Duration {
	return time.Duration(c.Interpreter.TickMS) * time.Millisecond
}

// Load decodes path on top of Defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Defaults()
	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("package", "name") {
		cfg.Package.Name = strings.TrimSpace(raw.Package.Name)
	}
	if meta.IsDefined("run", "main") {
		cfg.Run.Main = strings.TrimSpace(raw.Run.Main)
	}
	if meta.IsDefined("run", "sources") {
		cfg.Run.Sources = raw.Run.Sources
	}
	in := &cfg.Interpreter
	if meta.IsDefined("interpreter", "speed") {
		in.Speed = raw.Interpreter.Speed
	}
	if meta.IsDefined("interpreter", "tick_ms") {
		in.TickMS = raw.Interpreter.TickMS
	}
	if meta.IsDefined("interpreter", "budget") {
		in.Budget = raw.Interpreter.Budget
	}
	if meta.IsDefined("interpreter", "single_step_below") {
		in.SingleStepBelow = raw.Interpreter.SingleStepBelow
	}
	if meta.IsDefined("interpreter", "slice") {
		in.Slice = raw.Interpreter.Slice
	}
	if meta.IsDefined("diagnostics", "max") {
		cfg.Diagnostics.Max = raw.Diagnostics.Max
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Interpreter.TickMS <= 0 {
		return fmt.Errorf("[interpreter].tick_ms must be positive, got %d", c.Interpreter.TickMS)
	}
	if c.Interpreter.Budget <= 0 || c.Interpreter.Budget > 1 {
		return fmt.Errorf("[interpreter].budget must be in (0, 1], got %g", c.Interpreter.Budget)
	}
	if c.Interpreter.Slice <= 0 {
		return fmt.Errorf("[interpreter].slice must be positive, got %d", c.Interpreter.Slice)
	}
	if c.Run.Main != "" && filepath.Ext(c.Run.Main) != ".jst" {
		return fmt.Errorf("[run].main must be a .jst file, got %q", c.Run.Main)
	}
	return nil
}

// Sources expands [run].sources relative to Root. The main file is always
// included and comes first.
func (c Config) Sources() ([]string, error) {
	root := c.Root
	if root == "" {
		root = "."
	}
	seen := map[string]bool{}
	var out []string
	if c.Run.Main != "" {
		p := filepath.Join(root, filepath.FromSlash(c.Run.Main))
		seen[p] = true
		out = append(out, p)
	}
	var rest []string
	for _, pattern := range c.Run.Sources {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("bad source pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if filepath.Ext(m) == ".jst" && !seen[m] {
				seen[m] = true
				rest = append(rest, m)
			}
		}
	}
	slices.Sort(rest)
	out = append(out, rest...)
	if len(out) == 0 {
		return nil, ErrNoSources
	}
	return out, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteInit creates dir/jstep.toml and a starter main file. Existing files
// are never overwritten.
func WriteInit(dir, name string) (string, error) {
	cfg := Defaults()
	if name != "" {
		cfg.Package.Name = name
	}
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	data, err := Encode(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	mainPath := filepath.Join(dir, cfg.Run.Main)
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(mainPath, []byte(starter), 0o600); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", mainPath, err)
		}
	}
	return path, nil
}

const starter = `// Top-level statements form the main program.
String name = Input.readLine("Your name? ");
println("Hello, " + name + "!");
`
