package registry

import (
	"fmt"

	"fortio.org/safecast"

	"ffigen/internal/ctype"
	"ffigen/internal/ffierr"
	"ffigen/internal/source"
)

// Entry is one named registry record. Constants use Value; every other
// category uses Type.
type Entry struct {
	Name     string
	Category Category
	Type     ctype.Type
	Value    int64
	Span     source.Span
	// Builtin marks entries seeded from the primitive alias table.
	Builtin bool
	// Seq is the insertion index inside the owning layer.
	Seq uint32
}

type nsKey struct {
	ns   Namespace
	name string
}

type layer struct {
	entries []*Entry
	index   map[nsKey]*Entry
	anon    uint32
}

func newLayer() *layer {
	return &layer{index: make(map[nsKey]*Entry)}
}

// Registry is a stack of layers. Lookups walk from the top layer down,
// writes go to the top layer only. A Registry is not safe for concurrent
// use; independent registries are.
type Registry struct {
	layers []*layer
}

// New returns a registry with a base layer holding the primitive alias table.
func New() *Registry {
	base := newLayer()
	r := &Registry{layers: []*layer{base}}
	for _, spelling := range ctype.Aliases() {
		tag, _ := ctype.LookupAlias(spelling)
		r.put(base, &Entry{Name: spelling, Category: CatType, Type: ctype.Prim(tag), Builtin: true})
	}
	return r
}

// Push adds an empty writable layer.
func (r *Registry) Push() {
	r.layers = append(r.layers, newLayer())
}

// Depth is the number of layers, base included.
func (r *Registry) Depth() int {
	return len(r.layers)
}

func (r *Registry) top() *layer {
	return r.layers[len(r.layers)-1]
}

func (r *Registry) put(l *layer, e *Entry) *Entry {
	seq, err := safecast.Conv[uint32](len(l.entries))
	if err != nil {
		panic(fmt.Errorf("registry layer overflow: %w", err))
	}
	e.Seq = seq
	l.entries = append(l.entries, e)
	l.index[nsKey{e.Category.Namespace(), e.Name}] = e
	return e
}

// Define writes e into the top layer and returns the stored entry.
//
// Defining a name again in the same category with an equal type is a no-op
// that returns the existing entry; a complete struct or union completes an
// earlier forward declaration in place. Any other clash in the same
// namespace is a duplicate declaration.
func (r *Registry) Define(e Entry) (*Entry, error) {
	if e.Category == CatConstant {
		return r.DefineConstant(e.Name, e.Value, e.Span)
	}
	top := r.top()
	prev, ok := top.index[nsKey{e.Category.Namespace(), e.Name}]
	if !ok {
		return r.put(top, &e), nil
	}
	if prev.Category != e.Category {
		return prev, ffierr.Duplicate(e.Name, e.Span, prev.Span,
			fmt.Sprintf("%q redeclared as %s, previously %s", e.Name, e.Category, prev.Category))
	}
	if prev.Type == e.Type {
		return prev, nil
	}
	if complete(prev.Type, e.Type) {
		return prev, nil
	}
	if ctype.Equal(prev.Type, e.Type) {
		return prev, nil
	}
	return prev, ffierr.Duplicate(e.Name, e.Span, prev.Span,
		fmt.Sprintf("conflicting %s %q: %s vs %s", e.Category, e.Name, e.Type, prev.Type))
}

// complete marks the record held by prev as complete when next is a
// complete definition of the same record.
func complete(prev, next ctype.Type) bool {
	if prev == nil || next == nil || prev.Kind() != next.Kind() {
		return false
	}
	pr, ok := ctype.AsRecord(prev)
	if !ok {
		return false
	}
	nr, _ := ctype.AsRecord(next)
	if pr.Name != nr.Name {
		return false
	}
	if nr.Complete && !pr.Complete {
		pr.Complete = true
	}
	return true
}

// DefineConstant writes a named integer constant into the top layer.
func (r *Registry) DefineConstant(name string, value int64, sp source.Span) (*Entry, error) {
	top := r.top()
	prev, ok := top.index[nsKey{NSOrdinary, name}]
	if !ok {
		return r.put(top, &Entry{Name: name, Category: CatConstant, Value: value, Span: sp}), nil
	}
	if prev.Category == CatConstant && prev.Value == value {
		return prev, nil
	}
	return prev, ffierr.Duplicate(name, sp, prev.Span,
		fmt.Sprintf("constant %q redefined", name))
}

// Lookup returns the innermost entry named name in one of cats.
func (r *Registry) Lookup(name string, cats ...Category) (*Entry, bool) {
	for i := len(r.layers) - 1; i >= 0; i-- {
		l := r.layers[i]
		for _, ns := range []Namespace{NSOrdinary, NSTag} {
			e, ok := l.index[nsKey{ns, name}]
			if !ok {
				continue
			}
			if len(cats) == 0 {
				return e, true
			}
			for _, c := range cats {
				if e.Category == c {
					return e, true
				}
			}
		}
	}
	return nil, false
}

// LookupType resolves an identifier used as a type specifier. The innermost
// ordinary-namespace entry wins, so a user typedef shadows a builtin
// spelling; entries that are not type names (functions, constants) hide
// nothing and are skipped.
func (r *Registry) LookupType(name string) (*Entry, bool) {
	return r.Lookup(name, typeNameCats...)
}

// LookupTag returns the innermost struct, union or enum tag named name,
// whatever its kind.
func (r *Registry) LookupTag(name string) (*Entry, bool) {
	for i := len(r.layers) - 1; i >= 0; i-- {
		if e, ok := r.layers[i].index[nsKey{NSTag, name}]; ok {
			return e, true
		}
	}
	return nil, false
}

// LookupTagLocal is LookupTag restricted to the top layer.
func (r *Registry) LookupTagLocal(name string) (*Entry, bool) {
	e, ok := r.top().index[nsKey{NSTag, name}]
	return e, ok
}

func (r *Registry) LookupConstant(name string) (int64, bool) {
	e, ok := r.Lookup(name, CatConstant)
	if !ok {
		return 0, false
	}
	return e.Value, true
}

// Has reports whether name is visible in any namespace.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// NextAnon advances and returns the anonymous-entity counter of the top
// layer. Counters start at 1.
func (r *Registry) NextAnon() uint32 {
	top := r.top()
	top.anon++
	return top.anon
}

// Entries returns the entries of the top layer in insertion order. The
// entries may be mutated in place.
func (r *Registry) Entries() []*Entry {
	return r.top().entries
}

// LayerEntries returns the entries of layer i (0 is the base layer).
func (r *Registry) LayerEntries(i int) []*Entry {
	if i < 0 || i >= len(r.layers) {
		return nil
	}
	return r.layers[i].entries
}

// EntriesOf returns the top-layer entries of the given categories.
func (r *Registry) EntriesOf(cats ...Category) []*Entry {
	var out []*Entry
	for _, e := range r.top().entries {
		for _, c := range cats {
			if e.Category == c {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
