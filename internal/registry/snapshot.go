package registry

import "ffigen/internal/ctype"

// Snapshot is a popped layer. It can be restored into any number of
// registries; each restore gets its own deep copy.
type Snapshot struct {
	entries []*Entry
	anon    uint32
}

// Len is the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns the snapshot entries in insertion order. Callers must not
// mutate them; restore the snapshot to get a writable copy.
func (s Snapshot) Entries() []*Entry {
	return s.entries
}

// Pop removes the top layer and returns it. The base layer is never
// removed; popping it returns an empty snapshot.
func (r *Registry) Pop() Snapshot {
	if len(r.layers) <= 1 {
		return Snapshot{}
	}
	top := r.top()
	r.layers = r.layers[:len(r.layers)-1]
	return Snapshot{entries: top.entries, anon: top.anon}
}

// Restore pushes a deep copy of s as a new top layer.
func (r *Registry) Restore(s Snapshot) {
	l := newLayer()
	l.anon = s.anon
	cl := ctype.NewCloner()
	for _, e := range s.entries {
		cp := *e
		cp.Type = cl.Clone(e.Type)
		r.put(l, &cp)
	}
	r.layers = append(r.layers, l)
}
