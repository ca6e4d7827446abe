package render

import (
	"encoding/json"
	"io"

	"ffigen/internal/bindings"
)

// JSON writes the module as a JSON document.
type JSON struct {
	Indent string
}

func (j JSON) Render(w io.Writer, m *bindings.Module) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc.Encode(m)
}
