package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"ffigen/internal/bindings"
)

// QuickJS writes an ES module for quickjs-ffi. Every function becomes an
// export wrapping CFunction; callback parameters accept plain JS functions.
type QuickJS struct {
	// Import is the module path of quickjs-ffi. Defaults to ./quickjs-ffi.js.
	Import string
}

// maxSafeInteger is Number.MAX_SAFE_INTEGER; larger constants become BigInt.
const maxSafeInteger = 1<<53 - 1

const wrapHelper = `const _quickjs_ffi_wrap_ptr_func_decl = (lib, name, nargs, ...types) => {
    const c_types = types.map(type => {
        if (typeof type == 'string') {
            return type;
        } else if (typeof type == 'object' && type.type == 'PtrFuncDecl') {
            return 'pointer';
        }
        throw new Error('Unsupported type');
    });

    let c_func;
    try {
        c_func = new CFunction(lib, name, nargs, ...c_types);
    } catch (err) {
        return _ffigen_missing(name, err);
    }

    return (...js_args) => {
        const c_args = types.slice(1).map((type, i) => {
            const js_arg = js_args[i];
            if (typeof type == 'string') {
                return js_arg;
            } else if (typeof type == 'object' && type.type == 'PtrFuncDecl') {
                if (typeof js_arg != 'function') {
                    return js_arg;
                }
                const c_cb = new CCallback(js_arg, null, ...type.types);
                return c_cb.cfuncptr;
            }
            throw new Error('Unsupported type');
        });
        return c_func.invoke(...c_args);
    };
};`

const missingHelper = "const _ffigen_missing = (name, cause) => () => {\n" +
	"    throw new Error(`${name}: symbol not available in ${LIB}` + (cause ? `: ${cause}` : ''));\n" +
	"};"

const byValueHelper = "const _ffigen_by_value = (name) => () => {\n" +
	"    throw new TypeError(`${name}: malformed signature, structs and unions cannot be passed by value`);\n" +
	"};"

var quickjsTemplate = template.Must(template.New("quickjs").Funcs(template.FuncMap{
	"js":     jsString,
	"ident":  jsIdent,
	"num":    jsNumber,
	"types":  jsTypes,
	"params": jsFuncTypes,
	"joined": func(ss []string) string { return strings.Join(ss, ", ") },
}).Parse(`// Code generated by ffigen{{if .Module.Inputs}} from {{joined .Module.Inputs}}{{end}}. DO NOT EDIT.
import { CFunction, CCallback } from {{js .Import}};

export const LIB = {{js .Module.Library}};

{{.Missing}}

{{.ByValue}}

{{.Wrap}}
{{- if .Module.Constants}}

// Constants
{{- range .Module.Constants}}
export const {{ident .Name}} = {{num .Value}};
{{- end}}
{{- end}}
{{- if .Module.Enums}}

// Enums, prefixed since C tags do not share the identifier namespace
{{- range .Module.Enums}}
export const enum_{{ident .Name}} = Object.freeze({
{{- range $i, $it := .Items}}{{if $i}},{{end}}
    {{ident $it.Name}}: {{num $it.Value}}
{{- end}}
});
{{- end}}
{{- end}}
{{- if .Module.Aggregates}}

// Aggregate sizes, -1 when unknown
{{- range .Module.Aggregates}}
export const sizeof_{{ident .Name}} = {{num .Size}}; // {{.Kind}}{{if not .Complete}}, incomplete{{end}}
{{- end}}
{{- end}}
{{- if .Module.Callbacks}}

// Callback types
{{- range .Module.Callbacks}}
{{- if .ByValue}}
// {{.Name}} moves a struct or union by value and cannot be marshaled.
export const {{ident .Name}} = _ffigen_by_value({{js .Name}});
{{- else}}
export const {{ident .Name}} = Object.freeze({{types .Signature}});
{{- end}}
{{- end}}
{{- end}}
{{- if .Module.Functions}}

// Functions
{{- range .Module.Functions}}
{{- if .Variadic}}
// {{.Name}} is variadic; only the fixed parameters are marshaled.
{{- end}}
{{- if .ByValue}}
export const {{ident .Name}} = _ffigen_by_value({{js .Name}});
{{- else if .Missing}}
export const {{ident .Name}} = _ffigen_missing({{js .Name}});
{{- else}}
export const {{ident .Name}} = _quickjs_ffi_wrap_ptr_func_decl(LIB, {{js .Name}}, null, {{params .}});
{{- end}}
{{- end}}
{{- end}}
`))

type quickjsData struct {
	Module  *bindings.Module
	Import  string
	Wrap    string
	Missing string
	ByValue string
}

func (q QuickJS) Render(w io.Writer, m *bindings.Module) error {
	imp := q.Import
	if imp == "" {
		imp = "./quickjs-ffi.js"
	}
	return quickjsTemplate.Execute(w, quickjsData{
		Module:  m,
		Import:  imp,
		Wrap:    wrapHelper,
		Missing: missingHelper,
		ByValue: byValueHelper,
	})
}

// jsString quotes s as a JS string literal.
func jsString(s string) string {
	return strconv.Quote(s)
}

func jsNumber(v int64) string {
	if v > maxSafeInteger || v < -maxSafeInteger {
		return strconv.FormatInt(v, 10) + "n"
	}
	return strconv.FormatInt(v, 10)
}

var jsReserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "let": true, "static": true, "await": true,
	"implements": true, "interface": true, "package": true, "private": true,
	"protected": true, "public": true,
	// names the generated module itself defines
	"LIB": true, "CFunction": true, "CCallback": true,
}

// jsIdent keeps C identifiers usable as JS bindings.
func jsIdent(name string) string {
	if jsReserved[name] {
		return name + "_"
	}
	return name
}

// jsType renders one descriptor: a wire tag string or a PtrFuncDecl object.
func jsType(r bindings.TypeRef) string {
	switch r.Kind {
	case bindings.RefPrim:
		return "'" + string(r.Tag.Wire()) + "'"
	case bindings.RefCallback:
		if r.Callback == nil {
			return "'pointer'"
		}
		return jsTypes(*r.Callback)
	}
	return "'pointer'"
}

// jsTypes renders a callback descriptor, return type first.
func jsTypes(s bindings.Signature) string {
	parts := make([]string, 0, len(s.Params)+1)
	parts = append(parts, jsType(s.Return))
	for _, p := range s.Params {
		parts = append(parts, jsType(p))
	}
	return fmt.Sprintf("{ type: 'PtrFuncDecl', types: [%s] }", strings.Join(parts, ", "))
}

func jsFuncTypes(f bindings.Function) string {
	parts := make([]string, 0, len(f.Params)+1)
	parts = append(parts, jsType(f.Return))
	for _, p := range f.Params {
		parts = append(parts, jsType(p))
	}
	return strings.Join(parts, ", ")
}
