// Package project loads the ffigen.toml manifest and merges it with
// command line overrides into a Config the driver consumes.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Mode selects how several inputs share a registry.
type Mode string

const (
	// ModePerFile gives every input its own registry and output.
	ModePerFile Mode = "per-file"
	// ModeMerged resolves inputs in order into stacked layers of one registry
	// and writes one output.
	ModeMerged Mode = "merged"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.TrimSpace(s)) {
	case "", ModePerFile:
		return ModePerFile, nil
	case ModeMerged:
		return ModeMerged, nil
	}
	return "", fmt.Errorf("unknown mode %q (want per-file or merged)", s)
}

// Generate mirrors the [generate] table.
type Generate struct {
	Compiler    string   `toml:"compiler"`
	CFlags      []string `toml:"cflags"`
	Library     string   `toml:"library"`
	Inputs      []string `toml:"inputs"`
	Output      string   `toml:"output"`
	Format      string   `toml:"format"`
	Mode        string   `toml:"mode"`
	KeepGoing   bool     `toml:"keep_going"`
	Sizes       bool     `toml:"sizes"`
	Jobs        int      `toml:"jobs"`
	SystemDecls bool     `toml:"system_decls"`
	Prelude     string   `toml:"prelude"`
	NoCPP       bool     `toml:"no_cpp"`
}

// Manifest is a decoded ffigen.toml.
type Manifest struct {
	Path     string
	Generate Generate
	// Defined records which [generate] keys were present, so command line
	// defaults do not clobber them.
	Defined map[string]bool
}

var (
	// ErrGenerateSectionMissing indicates that [generate] is missing.
	ErrGenerateSectionMissing = errors.New("missing [generate]")
	// ErrUnknownKey indicates a key ffigen does not understand.
	ErrUnknownKey = errors.New("unknown key")
)

type manifestFile struct {
	Generate Generate `toml:"generate"`
}

var generateKeys = []string{
	"compiler", "cflags", "library", "inputs", "output", "format", "mode",
	"keep_going", "sizes", "jobs", "system_decls", "prelude", "no_cpp",
}

// LoadManifest parses path. Relative paths inside [generate] are resolved
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("generate") {
		return nil, fmt.Errorf("%s: %w", path, ErrGenerateSectionMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}

	m := &Manifest{Path: path, Generate: cfg.Generate, Defined: make(map[string]bool)}
	for _, k := range generateKeys {
		if meta.IsDefined("generate", k) {
			m.Defined[k] = true
		}
	}

	g := &m.Generate
	if _, err := ParseMode(g.Mode); err != nil {
		return nil, fmt.Errorf("%s: [generate].mode: %w", path, err)
	}
	if g.Jobs < 0 {
		return nil, fmt.Errorf("%s: [generate].jobs must be >= 0, got %d", path, g.Jobs)
	}

	dir := filepath.Dir(path)
	for i, in := range g.Inputs {
		g.Inputs[i] = resolvePath(dir, in)
	}
	g.Output = resolvePath(dir, g.Output)
	g.Prelude = resolvePath(dir, g.Prelude)
	// library stays as written: a bare soname is resolved by the loader.
	if strings.ContainsRune(g.Library, filepath.Separator) && !filepath.IsAbs(g.Library) {
		g.Library = resolvePath(dir, g.Library)
	}
	return m, nil
}

func resolvePath(dir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
