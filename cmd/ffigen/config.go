package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ffigen/internal/project"
)

// generateFlags registers the flags shared by gen, dump and query.
func generateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("cc", "c", "gcc", "C compiler used for preprocessing and size probes")
	f.StringSlice("cflags", nil, "extra compiler flags (repeatable, appended to the manifest's)")
	f.StringP("lib", "l", project.DefaultLibrary, "shared library the bindings load")
	f.StringSliceP("input", "i", nil, "input header or directory (repeatable; positional args work too)")
	f.String("mode", string(project.ModePerFile), "registry mode (per-file|merged)")
	f.Bool("keep-going", false, "continue with the next file after a file fails")
	f.Bool("sizes", true, "query aggregate sizes with the compiler")
	f.Int("jobs", 0, "max parallel files in per-file mode (0=auto)")
	f.Bool("system-decls", false, "include declarations from system headers")
	f.String("prelude", "", "header resolved once and visible to every input")
	f.Bool("no-cpp", false, "parse inputs as-is without running the preprocessor")
}

// flagKeys maps CLI flag names to manifest keys.
var flagKeys = map[string]string{
	"cc":           "compiler",
	"cflags":       "cflags",
	"lib":          "library",
	"output":       "output",
	"format":       "format",
	"mode":         "mode",
	"keep-going":   "keep_going",
	"sizes":        "sizes",
	"jobs":         "jobs",
	"system-decls": "system_decls",
	"prelude":      "prelude",
	"no-cpp":       "no_cpp",
}

// loadManifest honors --config, otherwise searches upward from the working
// directory. A missing manifest is not an error.
func loadManifest(cmd *cobra.Command) (*project.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, wdErr
		}
		found, ok, findErr := project.FindManifest(wd)
		if findErr != nil {
			return nil, findErr
		}
		if !ok {
			return nil, nil
		}
		path = found
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		if errors.Is(err, project.ErrGenerateSectionMissing) {
			fmt.Fprintf(os.Stderr, "warning: %s has no [generate] table, ignoring it\n", path)
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// readOverride collects command line values; only flags the user changed
// take precedence over the manifest.
func readOverride(cmd *cobra.Command, args []string) (project.Override, error) {
	var (
		o   project.Override
		err error
	)
	f := cmd.Flags()
	o.Set = make(map[string]bool)
	for flag, key := range flagKeys {
		if fl := f.Lookup(flag); fl != nil && fl.Changed {
			o.Set[key] = true
		}
	}
	get := func(fn func() error) {
		if err == nil {
			err = fn()
		}
	}
	get(func() (e error) { o.Compiler, e = f.GetString("cc"); return })
	get(func() (e error) { o.CFlags, e = f.GetStringSlice("cflags"); return })
	get(func() (e error) { o.Library, e = f.GetString("lib"); return })
	get(func() (e error) { o.Inputs, e = f.GetStringSlice("input"); return })
	get(func() (e error) {
		var mode string
		mode, e = f.GetString("mode")
		o.Mode = project.Mode(mode)
		return
	})
	get(func() (e error) { o.KeepGoing, e = f.GetBool("keep-going"); return })
	get(func() (e error) { o.Sizes, e = f.GetBool("sizes"); return })
	get(func() (e error) { o.Jobs, e = f.GetInt("jobs"); return })
	get(func() (e error) { o.SystemDecls, e = f.GetBool("system-decls"); return })
	get(func() (e error) { o.Prelude, e = f.GetString("prelude"); return })
	get(func() (e error) { o.NoCPP, e = f.GetBool("no-cpp"); return })
	if f.Lookup("output") != nil {
		get(func() (e error) { o.Output, e = f.GetString("output"); return })
	}
	if f.Lookup("format") != nil {
		get(func() (e error) { o.Format, e = f.GetString("format"); return })
	}
	if f.Lookup("keep-preprocessed") != nil {
		get(func() (e error) { o.KeepPreprocessed, e = f.GetBool("keep-preprocessed"); return })
	}
	if err != nil {
		return project.Override{}, err
	}
	o.Inputs = append(o.Inputs, args...)
	return o, nil
}

func loadConfig(cmd *cobra.Command, args []string) (project.Config, error) {
	m, err := loadManifest(cmd)
	if err != nil {
		return project.Config{}, err
	}
	o, err := readOverride(cmd, args)
	if err != nil {
		return project.Config{}, err
	}
	return project.Resolve(m, o)
}
