package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ffigen/internal/bindings"
	"ffigen/internal/ctype"
)

func prim(tag ctype.Tag) bindings.TypeRef {
	return bindings.TypeRef{Kind: bindings.RefPrim, Tag: tag}
}

func sampleModule() *bindings.Module {
	cb := bindings.Signature{Return: prim(ctype.TagVoid), Params: []bindings.TypeRef{prim(ctype.TagSint32), prim(ctype.TagString)}}
	return &bindings.Module{
		Library:   "./libdemo.so",
		Inputs:    []string{"api.h"},
		Constants: []bindings.Constant{{Name: "RED", Value: 0}, {Name: "BIG", Value: 1 << 60}},
		Enums: []bindings.Enum{{Name: "level_t", Items: []bindings.Enumerator{
			{Name: "LOW", Value: 0}, {Name: "HIGH", Value: 1},
		}}},
		Aggregates: []bindings.Aggregate{
			{Name: "point", Kind: "struct", Spelling: "struct point", Complete: true, Size: 8},
			{Name: "opaque", Kind: "struct", Spelling: "struct opaque", Size: -1},
		},
		Callbacks: []bindings.Callback{{Name: "on_event", Signature: cb}},
		Functions: []bindings.Function{
			{
				Name:   "draw",
				Return: prim(ctype.TagSint32),
				Params: []bindings.TypeRef{prim(ctype.TagPointer), prim(ctype.TagChar), {Kind: bindings.RefCallback, Callback: &cb}},
			},
			{Name: "logf", Return: prim(ctype.TagSint32), Params: []bindings.TypeRef{prim(ctype.TagString)}, Variadic: true},
			{Name: "swap", Return: bindings.TypeRef{Kind: bindings.RefStruct, Name: "pair"}, ByValue: true},
			{Name: "gone", Return: prim(ctype.TagVoid), Missing: true},
			{Name: "delete", Return: prim(ctype.TagVoid)},
		},
	}
}

func TestQuickJS(t *testing.T) {
	var buf bytes.Buffer
	if err := (QuickJS{}).Render(&buf, sampleModule()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"// Code generated by ffigen from api.h. DO NOT EDIT.\n",
		"import { CFunction, CCallback } from \"./quickjs-ffi.js\";\n",
		"export const LIB = \"./libdemo.so\";\n",
		"const _quickjs_ffi_wrap_ptr_func_decl = (lib, name, nargs, ...types) => {",
		"export const RED = 0;\n",
		"export const BIG = 1152921504606846976n;\n",
		"export const enum_level_t = Object.freeze({\n    LOW: 0,\n    HIGH: 1\n});\n",
		"export const sizeof_point = 8; // struct\n",
		"export const sizeof_opaque = -1; // struct, incomplete\n",
		"export const on_event = Object.freeze({ type: 'PtrFuncDecl', types: ['void', 'sint32', 'string'] });\n",
		"export const draw = _quickjs_ffi_wrap_ptr_func_decl(LIB, \"draw\", null, 'sint32', 'pointer', 'sint8', { type: 'PtrFuncDecl', types: ['void', 'sint32', 'string'] });\n",
		"// logf is variadic; only the fixed parameters are marshaled.\nexport const logf = ",
		"export const swap = _ffigen_by_value(\"swap\");\n",
		"export const gone = _ffigen_missing(\"gone\");\n",
		"export const delete_ = _quickjs_ffi_wrap_ptr_func_decl(LIB, \"delete\", null, 'void');\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

// exportNames lists every name bound by an export const line.
func exportNames(out string) map[string]int {
	names := map[string]int{}
	for _, line := range strings.Split(out, "\n") {
		rest, ok := strings.CutPrefix(line, "export const ")
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(rest, " ")
		names[name]++
	}
	return names
}

func TestQuickJSEnumTagDoesNotCollide(t *testing.T) {
	// enum mode { M_A, M_B }; int mode(void);
	m := &bindings.Module{
		Library:   "libdemo.so",
		Constants: []bindings.Constant{{Name: "M_A", Value: 0}, {Name: "M_B", Value: 1}},
		Enums: []bindings.Enum{{Name: "mode", Items: []bindings.Enumerator{
			{Name: "M_A", Value: 0}, {Name: "M_B", Value: 1},
		}}},
		Functions: []bindings.Function{{Name: "mode", Return: prim(ctype.TagSint32)}},
	}
	var buf bytes.Buffer
	if err := (QuickJS{}).Render(&buf, m); err != nil {
		t.Fatalf("render: %v", err)
	}
	names := exportNames(buf.String())
	for name, n := range names {
		if n != 1 {
			t.Fatalf("export const %s declared %d times:\n%s", name, n, buf.String())
		}
	}
	if names["mode"] != 1 || names["enum_mode"] != 1 {
		t.Fatalf("exports = %v", names)
	}

	buf.Reset()
	if err := (QuickJS{}).Render(&buf, sampleModule()); err != nil {
		t.Fatalf("render: %v", err)
	}
	for name, n := range exportNames(buf.String()) {
		if n != 1 {
			t.Fatalf("sample module declares %s %d times", name, n)
		}
	}
}

func TestQuickJSByValueCallback(t *testing.T) {
	// typedef struct point { int x, y; } point_t;
	// typedef void (*on_point)(point_t p); void reg_cb(on_point cb);
	sig := bindings.Signature{Return: prim(ctype.TagVoid), Params: []bindings.TypeRef{{Kind: bindings.RefStruct, Name: "point"}}}
	m := &bindings.Module{
		Library:   "libdemo.so",
		Callbacks: []bindings.Callback{{Name: "on_point", Signature: sig, ByValue: true}},
		Functions: []bindings.Function{{
			Name:    "reg_cb",
			Return:  prim(ctype.TagVoid),
			Params:  []bindings.TypeRef{{Kind: bindings.RefCallback, Callback: &sig}},
			ByValue: true,
		}},
	}
	var buf bytes.Buffer
	if err := (QuickJS{}).Render(&buf, m); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"// on_point moves a struct or union by value and cannot be marshaled.\nexport const on_point = _ffigen_by_value(\"on_point\");\n",
		"export const reg_cb = _ffigen_by_value(\"reg_cb\");\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\"reg_cb\", null") {
		t.Fatalf("by-value callback parameter got a native wrapper:\n%s", out)
	}
}

func TestQuickJSEmptyModule(t *testing.T) {
	var buf bytes.Buffer
	if err := (QuickJS{Import: "ffi"}).Render(&buf, &bindings.Module{Library: "libc.so.6"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "// Functions") || strings.Contains(out, "// Constants") {
		t.Fatalf("empty sections rendered:\n%s", out)
	}
	if !strings.HasPrefix(out, "// Code generated by ffigen. DO NOT EDIT.\nimport { CFunction, CCallback } from \"ffi\";") {
		t.Fatalf("unexpected header:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := For(FormatJSON).Render(&buf, sampleModule()); err != nil {
		t.Fatalf("render: %v", err)
	}
	var back struct {
		Library   string `json:"library"`
		Functions []struct {
			Name   string `json:"name"`
			Params []struct {
				Kind string `json:"kind"`
				Tag  string `json:"tag"`
			} `json:"params"`
		} `json:"functions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if back.Library != "./libdemo.so" || len(back.Functions) != 5 {
		t.Fatalf("unexpected document: %+v", back)
	}
	if p := back.Functions[0].Params[2]; p.Kind != "callback" {
		t.Fatalf("draw third param = %+v", p)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatQuickJS, "js": FormatQuickJS, "QuickJS": FormatQuickJS, "json": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatalf("expected error for yaml")
	}
	if FormatJSON.Ext() != ".json" || FormatQuickJS.Ext() != ".js" {
		t.Fatalf("unexpected extensions")
	}
}
