package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ffigen/internal/diag"
	"ffigen/internal/diagfmt"
	"ffigen/internal/driver"
	"ffigen/internal/version"
)

type diagOutput struct {
	format string
	color  bool
	max    int
	quiet  bool
	min    diag.Severity
}

func readDiagOutput(cmd *cobra.Command) (diagOutput, error) {
	root := cmd.Root().PersistentFlags()
	format, err := root.GetString("diag-format")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "pretty", "json", "sarif", "short":
	default:
		return diagOutput{}, fmt.Errorf("unknown diag-format %q (expected pretty|json|sarif|short)", format)
	}
	colorFlag, err := root.GetString("color")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := readColor(colorFlag, os.Stderr)
	if err != nil {
		return diagOutput{}, err
	}
	maxDiagnostics, err := root.GetInt("max-diagnostics")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := root.GetBool("quiet")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	minValue, err := root.GetString("min-severity")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	minSev, err := diag.ParseSeverity(minValue)
	if err != nil {
		return diagOutput{}, err
	}
	if quiet {
		minSev = diag.SevError
	}
	return diagOutput{format: format, color: useColor, max: maxDiagnostics, quiet: quiet, min: minSev}, nil
}

// printDiagnostics writes the bag of res to w. In pretty mode the timing
// diagnostic is replaced by the timer's table.
func printDiagnostics(w io.Writer, res *driver.Result, out diagOutput) error {
	if res == nil || res.Bag == nil {
		return nil
	}
	bag := res.Bag
	if out.min > diag.SevInfo {
		bag.Filter(diag.AtLeast(out.min))
	}
	switch out.format {
	case "json":
		return diagfmt.JSON(w, bag, res.FileSet, diagfmt.JSONOpts{Max: out.max, IncludeNotes: true})
	case "sarif":
		return diagfmt.Sarif(w, bag, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "ffigen",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	case "short":
		_, err := io.WriteString(w, diag.FormatShortDiagnostics(bag.Items(), res.FileSet, false))
		return err
	}
	hasTimings := false
	bag.Filter(func(d diag.Diagnostic) bool {
		if d.Code == diag.ObsTimings {
			hasTimings = true
			return false
		}
		return true
	})
	diagfmt.Pretty(w, bag, res.FileSet, diagfmt.PrettyOpts{
		Color:     out.color,
		ShowNotes: true,
		Context:   true,
		Max:       out.max,
	})
	if hasTimings && res.Timer != nil {
		_, err := io.WriteString(w, res.Timer.Summary())
		return err
	}
	return nil
}
