// Package render writes a bindings.Module as QuickJS FFI bindings or as
// JSON.
package render

import (
	"fmt"
	"io"
	"strings"

	"ffigen/internal/bindings"
)

// Format selects an output flavor.
type Format string

const (
	FormatQuickJS Format = "quickjs"
	FormatJSON    Format = "json"
)

// Renderer writes one module.
type Renderer interface {
	Render(w io.Writer, m *bindings.Module) error
}

// ParseFormat accepts the names used on the command line and in the
// manifest. "js" is an alias for quickjs.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quickjs", "js":
		return FormatQuickJS, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want quickjs or json)", s)
}

// Ext is the file extension outputs of f conventionally carry.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".js"
}

// For returns the renderer of f.
func For(f Format) Renderer {
	if f == FormatJSON {
		return JSON{Indent: "  "}
	}
	return QuickJS{}
}
