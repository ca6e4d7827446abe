package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandInputs replaces every directory in paths by the *.h files below it,
// sorted. Plain files are kept in the order given; duplicates are dropped.
func ExpandInputs(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		headers, err := listHeaders(p)
		if err != nil {
			return nil, err
		}
		if len(headers) == 0 {
			return nil, fmt.Errorf("input %q: no *.h files", p)
		}
		for _, h := range headers {
			add(h)
		}
	}
	return out, nil
}

// listHeaders возвращает отсортированный список всех *.h файлов в директории
func listHeaders(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".h") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// outputPath picks where the bindings of input go. With several per-file
// inputs, output names a directory.
func outputPath(output, input, ext string, many bool) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ext
	switch {
	case output == "":
		return base
	case many:
		return filepath.Join(output, base)
	}
	return output
}

// preprocessedPath is where --keep-preprocessed writes the compiler output:
// <output without extension>.h next to the output, or .i when that would
// overwrite the input itself.
func preprocessedPath(output, input string) string {
	p := strings.TrimSuffix(output, filepath.Ext(output)) + ".h"
	if a, err := filepath.Abs(p); err == nil {
		if b, err := filepath.Abs(input); err == nil && a == b {
			return strings.TrimSuffix(p, ".h") + ".i"
		}
	}
	return p
}
