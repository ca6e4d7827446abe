package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrManifestExists is returned by WriteTemplate when ffigen.toml is
// already present.
var ErrManifestExists = errors.New("ffigen.toml already exists")

// Template renders a starter manifest.
func Template(library string, inputs []string) string {
	if library == "" {
		library = DefaultLibrary
	}
	in := "[]"
	if len(inputs) > 0 {
		in = "["
		for i, s := range inputs {
			if i > 0 {
				in += ", "
			}
			in += strconv.Quote(filepath.ToSlash(s))
		}
		in += "]"
	}
	return fmt.Sprintf(`[generate]
# C compiler used for preprocessing and sizeof probes
compiler = "gcc"
cflags = []

# shared library the bindings load
library = %s

# headers to bind; directories are scanned for *.h
inputs = %s
# file for one input, directory for several; "-" writes to stdout
# output = "bindings.js"

# quickjs | json
format = "quickjs"
# per-file | merged
mode = "per-file"

keep_going = false
sizes = true
jobs = 0
system_decls = false
# header whose declarations every input can see
prelude = ""
no_cpp = false
`, strconv.Quote(library), in)
}

// WriteTemplate creates dir/ffigen.toml. An existing manifest is never
// overwritten unless force is set.
func WriteTemplate(dir, library string, inputs []string, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ManifestName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s: %w", path, ErrManifestExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	if err := os.WriteFile(path, []byte(Template(library, inputs)), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
