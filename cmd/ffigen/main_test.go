package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"ffigen/internal/driver"
	"ffigen/internal/project"
)

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
	if shouldUseTUI(uiModeOn, "-") {
		t.Fatalf("progress view must stay off when writing to stdout")
	}
	if !shouldUseTUI(uiModeOn, "out.js") {
		t.Fatalf("--ui=on should enable the progress view")
	}
}

func TestParseLogLevel(t *testing.T) {
	if _, on, err := parseLogLevel("off"); err != nil || on {
		t.Fatalf("off: on=%v err=%v", on, err)
	}
	lvl, on, err := parseLogLevel("Debug")
	if err != nil || !on || lvl != zapcore.DebugLevel {
		t.Fatalf("debug: %v %v %v", lvl, on, err)
	}
	if _, _, err := parseLogLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func newGenLikeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "gen"}
	generateFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "")
	cmd.Flags().String("format", "quickjs", "")
	cmd.Flags().Bool("keep-preprocessed", false, "")
	return cmd
}

func TestReadOverrideMarksChangedFlags(t *testing.T) {
	cmd := newGenLikeCmd()
	if err := cmd.Flags().Parse([]string{"-c", "clang", "-i", "a.h", "--sizes=false", "-o", "out.js"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	o, err := readOverride(cmd, []string{"b.h"})
	if err != nil {
		t.Fatalf("readOverride: %v", err)
	}
	for _, key := range []string{"compiler", "sizes", "output"} {
		if !o.Set[key] {
			t.Fatalf("%s not marked as set: %v", key, o.Set)
		}
	}
	if o.Set["library"] || o.Set["format"] {
		t.Fatalf("defaults marked as set: %v", o.Set)
	}
	if strings.Join(o.Inputs, ",") != "a.h,b.h" {
		t.Fatalf("inputs = %v", o.Inputs)
	}

	m := &project.Manifest{
		Generate: project.Generate{Compiler: "cc", Library: "libz.so", Sizes: true},
		Defined:  map[string]bool{"compiler": true, "library": true, "sizes": true},
	}
	cfg, err := project.Resolve(m, o)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Compiler != "clang" || cfg.Library != "libz.so" || cfg.Sizes || cfg.Output != "out.js" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func generateFixture(t *testing.T, mode project.Mode, headers map[string]string) *driver.Result {
	t.Helper()
	dir := t.TempDir()
	var inputs []string
	for name, text := range headers {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(text), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		inputs = append(inputs, p)
	}
	res, err := driver.Generate(context.Background(), driver.Request{
		Config: project.Config{
			Library: "./libdemo.so",
			Inputs:  inputs,
			Format:  "json",
			Mode:    mode,
			NoCPP:   true,
		},
		NoWrite: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return res
}

func TestDumpEntriesPerFileAndMerged(t *testing.T) {
	headers := map[string]string{
		"a.h": "typedef int handle_t;\nint open_it(const char *path);\n",
		"b.h": "enum color { RED, GREEN };\n",
	}
	for _, mode := range []project.Mode{project.ModePerFile, project.ModeMerged} {
		res := generateFixture(t, mode, headers)
		files := collectDump(res, "")
		if len(files) != 2 {
			t.Fatalf("%s: files = %d", mode, len(files))
		}
		var names []string
		for _, f := range files {
			for _, e := range f.Entries {
				if e.Builtin {
					t.Fatalf("%s: builtin leaked into dump: %+v", mode, e)
				}
				names = append(names, filepath.Base(f.Path)+":"+e.Name)
			}
		}
		joined := strings.Join(names, " ")
		for _, want := range []string{"a.h:handle_t", "a.h:open_it", "b.h:RED", "b.h:GREEN"} {
			if !strings.Contains(joined, want) {
				t.Fatalf("%s: %q missing from %s", mode, want, joined)
			}
		}

		consts := collectDump(res, "constant")
		for _, f := range consts {
			for _, e := range f.Entries {
				if e.Category != "constant" {
					t.Fatalf("%s: category filter leaked %+v", mode, e)
				}
			}
		}
	}
}

func TestWriteDumpPrettyAligns(t *testing.T) {
	res := generateFixture(t, project.ModePerFile, map[string]string{
		"c.h": "enum e { A = 1, LONGER_NAME = 2 };\n",
	})
	var buf bytes.Buffer
	writeDumpPretty(&buf, collectDump(res, ""), false)
	col := map[string]int{}
	for _, line := range strings.Split(buf.String(), "\n") {
		for _, v := range []string{"= 1", "= 2"} {
			if i := strings.Index(line, v); i >= 0 {
				col[v] = i
			}
		}
	}
	if len(col) != 2 || col["= 1"] != col["= 2"] {
		t.Fatalf("values not aligned %v:\n%s", col, buf.String())
	}
}

func TestQueryOverModules(t *testing.T) {
	res := generateFixture(t, project.ModePerFile, map[string]string{
		"q.h": "int sum(int a, int b);\nint logf2(const char *fmt, ...);\n",
	})
	input, err := toJQValue(buildQueryInput(res))
	if err != nil {
		t.Fatalf("toJQValue: %v", err)
	}

	var buf bytes.Buffer
	if err := evalQuery(context.Background(), &buf, `.files[].module.functions[] | select(.variadic) | .name`, input, true); err != nil {
		t.Fatalf("evalQuery: %v", err)
	}
	if got := buf.String(); got != "logf2\n" {
		t.Fatalf("raw output = %q", got)
	}

	buf.Reset()
	if err := evalQuery(context.Background(), &buf, `[.files[].registry[] | select(.category == "func-decl") | .name] | length`, input, false); err != nil {
		t.Fatalf("evalQuery: %v", err)
	}
	if got := buf.String(); got != "2\n" {
		t.Fatalf("count output = %q", got)
	}

	if err := evalQuery(context.Background(), &buf, `.files[`, input, false); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestVersionRendering(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.0.0", GitCommit: "abc"}
	renderVersionPretty(&buf, info, versionOptions{showHash: true, showDate: true})
	out := buf.String()
	if !strings.HasPrefix(out, "ffigen 1.0.0\n") || !strings.Contains(out, "commit: abc") || !strings.Contains(out, "built:  unknown") {
		t.Fatalf("pretty = %q", out)
	}

	buf.Reset()
	if err := renderVersionJSON(&buf, info, versionOptions{}); err != nil {
		t.Fatalf("json: %v", err)
	}
	if strings.Contains(buf.String(), "git_commit") || !strings.Contains(buf.String(), `"tool": "ffigen"`) {
		t.Fatalf("json = %s", buf.String())
	}
}

func TestPrintDiagnosticsFormats(t *testing.T) {
	res := generateFixture(t, project.ModePerFile, map[string]string{
		"bad.h": "mystery_t make(void);\nint ok(void);\n",
	})
	if !res.Failed() {
		t.Fatalf("unknown type should fail the run")
	}

	var buf bytes.Buffer
	if err := printDiagnostics(&buf, res, diagOutput{format: "short", min: 0}); err != nil {
		t.Fatalf("short: %v", err)
	}
	if !strings.Contains(buf.String(), "RES3002") || !strings.Contains(buf.String(), "bad.h:1:") {
		t.Fatalf("short output = %q", buf.String())
	}

	buf.Reset()
	if err := printDiagnostics(&buf, res, diagOutput{format: "json"}); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"RES3002"`) {
		t.Fatalf("json output = %s", buf.String())
	}
}
