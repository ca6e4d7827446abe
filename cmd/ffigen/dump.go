package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ffigen/internal/driver"
	"ffigen/internal/registry"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] [header.h|dir]...",
	Short: "Print the resolved registry of each header",
	Long: `Resolve the input headers without writing bindings and print every
registry entry declared by them: name, category and resolved type.`,
	RunE: runDump,
}

func init() {
	generateFlags(dumpCmd)
	dumpCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	dumpCmd.Flags().String("category", "", "only print entries of this category (constant|func-decl|struct-decl|typedef-func|...)")
}

// fileEntries returns the entries the i-th file declared. In merged mode
// every file owns one layer of the shared registry.
func fileEntries(res *driver.Result, i int) []*registry.Entry {
	fr := res.Files[i]
	if fr.Registry == nil {
		return nil
	}
	if res.Merged == nil {
		return fr.Registry.Entries()
	}
	return fr.Registry.LayerEntries(fr.Registry.Depth() - len(res.Files) + i)
}

type dumpFile struct {
	Path    string              `json:"path"`
	Entries []registry.Exported `json:"entries"`
}

func collectDump(res *driver.Result, category string) []dumpFile {
	out := make([]dumpFile, 0, len(res.Files))
	for i, fr := range res.Files {
		entries := registry.Export(fileEntries(res, i))
		if category != "" {
			kept := entries[:0]
			for _, e := range entries {
				if e.Category == category {
					kept = append(kept, e)
				}
			}
			entries = kept
		}
		out = append(out, dumpFile{Path: fr.Path, Entries: entries})
	}
	return out
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	out, err := readDiagOutput(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	category, err := cmd.Flags().GetString("category")
	if err != nil {
		return err
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	res, err := driver.Generate(cmd.Context(), driver.Request{
		Config:         cfg,
		MaxDiagnostics: out.max,
		NoWrite:        true,
	})
	if printErr := printDiagnostics(os.Stderr, res, out); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}

	files := collectDump(res, strings.ToLower(category))
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(files); err != nil {
			return err
		}
	} else {
		useColor, colorErr := readColorFlag(cmd, os.Stdout)
		if colorErr != nil {
			return colorErr
		}
		writeDumpPretty(cmd.OutOrStdout(), files, useColor)
	}
	if res.Failed() {
		return errGenerationFailed
	}
	return nil
}

func readColorFlag(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	return readColor(value, f)
}

// writeDumpPretty prints one aligned table per file.
func writeDumpPretty(w io.Writer, files []dumpFile, useColor bool) {
	header := color.New(color.Bold)
	category := color.New(color.FgCyan)
	if useColor {
		header.EnableColor()
		category.EnableColor()
	} else {
		header.DisableColor()
		category.DisableColor()
	}

	for i, f := range files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, header.Sprint(f.Path))
		if len(f.Entries) == 0 {
			fmt.Fprintln(w, "  (no declarations)")
			continue
		}
		nameWidth, catWidth := 0, 0
		for _, e := range f.Entries {
			nameWidth = max(nameWidth, runewidth.StringWidth(e.Name))
			catWidth = max(catWidth, runewidth.StringWidth(e.Category))
		}
		for _, e := range f.Entries {
			detail := e.Type
			if e.Value != nil {
				detail = fmt.Sprintf("= %d", *e.Value)
			}
			fmt.Fprintf(w, "  %s  %s  %s\n",
				runewidth.FillRight(e.Name, nameWidth),
				category.Sprint(runewidth.FillRight(e.Category, catWidth)),
				detail,
			)
		}
	}
}
