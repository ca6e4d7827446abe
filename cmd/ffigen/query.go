package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"ffigen/internal/bindings"
	"ffigen/internal/driver"
	"ffigen/internal/registry"
)

var queryCmd = &cobra.Command{
	Use:   "query [flags] <jq-expression> [header.h|dir]...",
	Short: "Run a jq expression over the resolved headers",
	Long: `Resolve the input headers and evaluate a jq expression against
{"files": [{"path", "module", "registry"}]}. "module" is the collected
binding surface, "registry" the raw entries the header declared.

  ffigen query '.files[].module.functions[] | select(.variadic) | .name' api.h`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	generateFlags(queryCmd)
	queryCmd.Flags().BoolP("raw-output", "r", false, "print strings without JSON quoting")
}

type queryFile struct {
	Path     string              `json:"path"`
	Module   *bindings.Module    `json:"module,omitempty"`
	Registry []registry.Exported `json:"registry"`
}

type queryInput struct {
	Files []queryFile `json:"files"`
}

func buildQueryInput(res *driver.Result) queryInput {
	in := queryInput{Files: make([]queryFile, 0, len(res.Files))}
	for i, fr := range res.Files {
		in.Files = append(in.Files, queryFile{
			Path:     fr.Path,
			Module:   fr.Module,
			Registry: registry.Export(fileEntries(res, i)),
		})
	}
	return in
}

// toJQValue round-trips v through encoding/json: gojq only understands the
// generic map/slice/float64 shapes.
func toJQValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// evalQuery runs expr over input and writes one result per line.
func evalQuery(ctx context.Context, w io.Writer, expr string, input any, raw bool) error {
	q, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if e, isErr := v.(error); isErr {
			if _, halt := e.(*gojq.HaltError); halt {
				return nil
			}
			return e
		}
		if s, isStr := v.(string); isStr && raw {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
			continue
		}
		data, err := gojq.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	expr := args[0]
	if _, err := gojq.Parse(expr); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	cfg, err := loadConfig(cmd, args[1:])
	if err != nil {
		return err
	}
	out, err := readDiagOutput(cmd)
	if err != nil {
		return err
	}
	raw, err := cmd.Flags().GetBool("raw-output")
	if err != nil {
		return err
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
	input, err := toJQValue(buildQueryInput(res))
	if err != nil {
		return err
	}
	if err := evalQuery(cmd.Context(), cmd.OutOrStdout(), expr, input, raw); err != nil {
		return err
	}
	if res.Failed() {
		return errGenerationFailed
	}
	return nil
}
