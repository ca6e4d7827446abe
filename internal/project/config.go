package project

import (
	"fmt"
)

// DefaultLibrary is used when neither the manifest nor the command line
// names a shared library.
const DefaultLibrary = "./lib.so"

// Config is the effective generation setup.
type Config struct {
	Compiler    string
	CFlags      []string
	Library     string
	Inputs      []string
	Output      string
	Format      string
	Mode        Mode
	KeepGoing   bool
	Sizes       bool
	Jobs        int
	SystemDecls bool
	Prelude     string
	NoCPP       bool
	// KeepPreprocessed writes the preprocessed text next to each output.
	KeepPreprocessed bool
}

// Override carries command line values. Set marks flags the user passed
// explicitly; those win over the manifest.
type Override struct {
	Config
	Set map[string]bool
}

// Resolve merges manifest (may be nil) and override into a Config.
func Resolve(m *Manifest, o Override) (Config, error) {
	cfg := Config{Compiler: "gcc", Library: DefaultLibrary, Format: "quickjs", Mode: ModePerFile, Sizes: true}
	if m != nil {
		g := m.Generate
		pick := func(key string, apply func()) {
			if m.Defined[key] {
				apply()
			}
		}
		pick("compiler", func() { cfg.Compiler = g.Compiler })
		pick("cflags", func() { cfg.CFlags = append([]string(nil), g.CFlags...) })
		pick("library", func() { cfg.Library = g.Library })
		pick("inputs", func() { cfg.Inputs = append([]string(nil), g.Inputs...) })
		pick("output", func() { cfg.Output = g.Output })
		pick("format", func() { cfg.Format = g.Format })
		pick("mode", func() { cfg.Mode = Mode(g.Mode) })
		pick("keep_going", func() { cfg.KeepGoing = g.KeepGoing })
		pick("sizes", func() { cfg.Sizes = g.Sizes })
		pick("jobs", func() { cfg.Jobs = g.Jobs })
		pick("system_decls", func() { cfg.SystemDecls = g.SystemDecls })
		pick("prelude", func() { cfg.Prelude = g.Prelude })
		pick("no_cpp", func() { cfg.NoCPP = g.NoCPP })
	}

	set := func(key string, apply func()) {
		if o.Set[key] {
			apply()
		}
	}
	set("compiler", func() { cfg.Compiler = o.Compiler })
	set("cflags", func() { cfg.CFlags = append(cfg.CFlags, o.CFlags...) })
	set("library", func() { cfg.Library = o.Library })
	set("output", func() { cfg.Output = o.Output })
	set("format", func() { cfg.Format = o.Format })
	set("mode", func() { cfg.Mode = o.Mode })
	set("keep_going", func() { cfg.KeepGoing = o.KeepGoing })
	set("sizes", func() { cfg.Sizes = o.Sizes })
	set("jobs", func() { cfg.Jobs = o.Jobs })
	set("system_decls", func() { cfg.SystemDecls = o.SystemDecls })
	set("prelude", func() { cfg.Prelude = o.Prelude })
	set("no_cpp", func() { cfg.NoCPP = o.NoCPP })
	cfg.KeepPreprocessed = o.KeepPreprocessed
	if len(o.Inputs) > 0 {
		cfg.Inputs = append([]string(nil), o.Inputs...)
	}

	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return Config{}, err
	}
	cfg.Mode = mode
	if cfg.Jobs < 0 {
		return Config{}, fmt.Errorf("jobs must be >= 0, got %d", cfg.Jobs)
	}
	if len(cfg.Inputs) == 0 {
		return Config{}, fmt.Errorf("no input headers: pass -i or set [generate].inputs")
	}
	return cfg, nil
}
