package ctype

// Cloner deep-copies types while preserving sharing: a struct reachable
// through several entries is copied once, so completing it later updates
// every alias.
type Cloner struct {
	seen map[Type]Type
}

func NewCloner() *Cloner {
	return &Cloner{seen: make(map[Type]Type)}
}

// Clone returns a deep copy of t.
func Clone(t Type) Type {
	return NewCloner().Clone(t)
}

func (c *Cloner) Clone(t Type) Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case Primitive, Named:
		return v
	case Pointer:
		return Pointer{Elem: c.Clone(v.Elem)}
	case Array:
		return Array{Elem: c.Clone(v.Elem), Len: v.Len}
	case Callback:
		return Callback{Return: c.Clone(v.Return), Params: c.list(v.Params), Variadic: v.Variadic}
	case *Struct:
		if got, ok := c.seen[v]; ok {
			return got
		}
		cp := &Struct{Record: v.Record}
		c.seen[v] = cp
		return cp
	case *Union:
		if got, ok := c.seen[v]; ok {
			return got
		}
		cp := &Union{Record: v.Record}
		c.seen[v] = cp
		return cp
	case *Enum:
		if got, ok := c.seen[v]; ok {
			return got
		}
		cp := &Enum{Name: v.Name, Anonymous: v.Anonymous, Items: append([]Enumerator(nil), v.Items...)}
		c.seen[v] = cp
		return cp
	case *FuncSignature:
		if got, ok := c.seen[v]; ok {
			return got
		}
		cp := &FuncSignature{
			Name:       v.Name,
			Variadic:   v.Variadic,
			ParamNames: append([]string(nil), v.ParamNames...),
		}
		c.seen[v] = cp
		cp.Return = c.Clone(v.Return)
		cp.Params = c.list(v.Params)
		return cp
	}
	return t
}

func (c *Cloner) list(ts []Type) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = c.Clone(t)
	}
	return out
}
