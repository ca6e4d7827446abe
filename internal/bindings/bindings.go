// Package bindings collects the exportable surface of a resolved registry:
// constants, enums, aggregates, functions and callback typedefs, in
// declaration order.
package bindings

import (
	"sort"

	"ffigen/internal/ctype"
	"ffigen/internal/registry"
	"ffigen/internal/simplify"
	"ffigen/internal/source"
)

// Module is everything one output file exports.
type Module struct {
	Library    string      `json:"library"`
	Inputs     []string    `json:"inputs"`
	Constants  []Constant  `json:"constants"`
	Enums      []Enum      `json:"enums"`
	Aggregates []Aggregate `json:"aggregates"`
	Functions  []Function  `json:"functions"`
	Callbacks  []Callback  `json:"callbacks"`
}

type Constant struct {
	Name   string          `json:"name"`
	Value  int64           `json:"value"`
	Origin source.Position `json:"origin"`
}

type Enum struct {
	Name   string          `json:"name"`
	Items  []Enumerator    `json:"items"`
	Origin source.Position `json:"origin"`
}

type Enumerator struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Aggregate is a struct or union known by name only. Size is -1 until a
// size query fills it.
type Aggregate struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Spelling string          `json:"spelling,omitempty"`
	Complete bool            `json:"complete"`
	Size     int64           `json:"size"`
	Origin   source.Position `json:"origin"`
}

// Function is a simplified function prototype.
type Function struct {
	Name       string          `json:"name"`
	Return     TypeRef         `json:"return"`
	Params     []TypeRef       `json:"params"`
	ParamNames []string        `json:"param_names,omitempty"`
	Variadic   bool            `json:"variadic,omitempty"`
	ByValue    bool            `json:"by_value,omitempty"`
	Missing    bool            `json:"missing,omitempty"`
	Origin     source.Position `json:"origin"`
}

// Callback is a typedef naming a function or pointer-to-function type.
// ByValue marks signatures that move a struct or union by value; they
// cannot be marshaled.
type Callback struct {
	Name      string          `json:"name"`
	Signature Signature       `json:"signature"`
	ByValue   bool            `json:"by_value,omitempty"`
	Origin    source.Position `json:"origin"`
}

// Options control Collect.
type Options struct {
	Library string
	Inputs  []string
	// Positions maps spans to header locations; usually a *source.FileSet.
	Positions interface {
		Position(source.Span) source.Position
	}
	// System reports system headers. Declarations from them are dropped
	// unless IncludeSystem is set.
	System interface {
		IsSystem(path string) bool
	}
	IncludeSystem bool
	// Symbols marks functions the library does not export as Missing.
	Symbols interface {
		Has(name string) bool
	}
}

// Collect builds a Module from registry entries, normally the top layer
// after simplification.
func Collect(entries []*registry.Entry, opts Options) *Module {
	m := &Module{
		Library:    opts.Library,
		Inputs:     append([]string(nil), opts.Inputs...),
		Constants:  []Constant{},
		Enums:      []Enum{},
		Aggregates: []Aggregate{},
		Functions:  []Function{},
		Callbacks:  []Callback{},
	}

	typedefd := make(map[ctype.Type]bool)
	for _, e := range entries {
		if e.Category == registry.CatTypedefEnum {
			typedefd[e.Type] = true
		}
	}

	seenRecords := make(map[*ctype.Record]bool)
	for _, e := range entries {
		if e.Builtin {
			continue
		}
		pos := position(opts, e.Span)
		if !opts.IncludeSystem && opts.System != nil && opts.System.IsSystem(pos.Path) {
			continue
		}

		switch e.Category {
		case registry.CatConstant:
			m.Constants = append(m.Constants, Constant{Name: e.Name, Value: e.Value, Origin: pos})

		case registry.CatEnum:
			en, ok := e.Type.(*ctype.Enum)
			if !ok || (en.Anonymous && !typedefd[e.Type]) {
				continue
			}
			items := make([]Enumerator, len(en.Items))
			for i, it := range en.Items {
				items[i] = Enumerator{Name: it.Name, Value: it.Value}
			}
			m.Enums = append(m.Enums, Enum{Name: en.Name, Items: items, Origin: pos})

		case registry.CatStruct, registry.CatUnion, registry.CatTypedefStruct, registry.CatTypedefUnion:
			rec, ok := ctype.AsRecord(e.Type)
			if !ok || seenRecords[rec] {
				continue
			}
			if rec.Anonymous && rec.Spelling == "" {
				continue
			}
			seenRecords[rec] = true
			m.Aggregates = append(m.Aggregates, Aggregate{
				Name:     rec.Name,
				Kind:     e.Type.Kind().String(),
				Spelling: rec.Spelling,
				Complete: rec.Complete,
				Size:     rec.Size,
				Origin:   pos,
			})

		case registry.CatFunc:
			sig, ok := e.Type.(*ctype.FuncSignature)
			if !ok {
				continue
			}
			fn := Function{
				Name:       e.Name,
				ParamNames: sig.ParamNames,
				Variadic:   sig.Variadic,
				Origin:     pos,
			}
			s := signatureOf(sig.Return, sig.Params, sig.Variadic)
			fn.Return, fn.Params = s.Return, s.Params
			fn.ByValue = s.byValue()
			if opts.Symbols != nil && !opts.Symbols.Has(e.Name) {
				fn.Missing = true
			}
			m.Functions = append(m.Functions, fn)

		case registry.CatTypedefFunc, registry.CatTypedefPointer:
			sig, ok := e.Type.(*ctype.FuncSignature)
			if !ok {
				sig, ok = simplify.CallbackTarget(e.Type)
			}
			if !ok {
				continue
			}
			s := signatureOf(sig.Return, sig.Params, sig.Variadic)
			m.Callbacks = append(m.Callbacks, Callback{
				Name:      e.Name,
				Signature: s,
				ByValue:   s.byValue(),
				Origin:    pos,
			})
		}
	}
	return m
}

func position(opts Options, sp source.Span) source.Position {
	if opts.Positions == nil {
		return source.Position{}
	}
	return opts.Positions.Position(sp)
}

// SizeSpellings lists the spellings of complete aggregates, sorted, for a
// size query.
func (m *Module) SizeSpellings() []string {
	var out []string
	for _, a := range m.Aggregates {
		if a.Complete && a.Spelling != "" {
			out = append(out, a.Spelling)
		}
	}
	sort.Strings(out)
	return out
}

// ApplySizes fills aggregate sizes from a spelling -> size map. Aggregates
// missing from sizes keep -1.
func (m *Module) ApplySizes(sizes map[string]int64) {
	for i := range m.Aggregates {
		if n, ok := sizes[m.Aggregates[i].Spelling]; ok {
			m.Aggregates[i].Size = n
		}
	}
}

// Merge appends other's exports, skipping names already present.
func (m *Module) Merge(other *Module) {
	have := func(kind, name string) string { return kind + "\x00" + name }
	seen := make(map[string]bool)
	for _, c := range m.Constants {
		seen[have("c", c.Name)] = true
	}
	for _, e := range m.Enums {
		seen[have("e", e.Name)] = true
	}
	for _, a := range m.Aggregates {
		seen[have(a.Kind, a.Name)] = true
	}
	for _, f := range m.Functions {
		seen[have("f", f.Name)] = true
	}
	for _, cb := range m.Callbacks {
		seen[have("t", cb.Name)] = true
	}

	for _, c := range other.Constants {
		if k := have("c", c.Name); !seen[k] {
			seen[k] = true
			m.Constants = append(m.Constants, c)
		}
	}
	for _, e := range other.Enums {
		if k := have("e", e.Name); !seen[k] {
			seen[k] = true
			m.Enums = append(m.Enums, e)
		}
	}
	for _, a := range other.Aggregates {
		if k := have(a.Kind, a.Name); !seen[k] {
			seen[k] = true
			m.Aggregates = append(m.Aggregates, a)
		}
	}
	for _, f := range other.Functions {
		if k := have("f", f.Name); !seen[k] {
			seen[k] = true
			m.Functions = append(m.Functions, f)
		}
	}
	for _, cb := range other.Callbacks {
		if k := have("t", cb.Name); !seen[k] {
			seen[k] = true
			m.Callbacks = append(m.Callbacks, cb)
		}
	}
	m.Inputs = append(m.Inputs, other.Inputs...)
}
