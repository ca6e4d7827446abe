package registry

// Exported is the JSON view of an entry, used by dump and query.
type Exported struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Kind     string `json:"kind,omitempty"`
	Type     string `json:"type,omitempty"`
	Value    *int64 `json:"value,omitempty"`
	Builtin  bool   `json:"builtin,omitempty"`
}

// Export converts entries, keeping their order.
func Export(entries []*Entry) []Exported {
	out := make([]Exported, 0, len(entries))
	for _, e := range entries {
		x := Exported{Name: e.Name, Category: e.Category.String(), Builtin: e.Builtin}
		if e.Category == CatConstant {
			v := e.Value
			x.Value = &v
		}
		if e.Type != nil {
			x.Kind = e.Type.Kind().String()
			x.Type = e.Type.String()
		}
		out = append(out, x)
	}
	return out
}
