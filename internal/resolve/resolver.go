package resolve

import (
	"fmt"

	"ffigen/internal/cdecl"
	"ffigen/internal/ctype"
	"ffigen/internal/ffierr"
	"ffigen/internal/registry"
	"ffigen/internal/source"
)

// hint describes the syntactic position a node is reached from.
type hint uint8

const (
	hintTypedef hint = 1 << iota
	hintDecl
	hintFuncDecl
	hintPtrDecl
	hintTopLevel
)

func (h hint) has(f hint) bool { return h&f != 0 }

type context struct {
	hints hint
	// outer is the typedef or declaration name that an untagged aggregate
	// takes as its own.
	outer string
}

func (c context) with(add, drop hint) context {
	c.hints = (c.hints | add) &^ drop
	return c
}

// Resolver turns declaration trees into canonical types, registering named
// entities into its registry as it goes.
type Resolver struct {
	reg *registry.Registry
	// records caches aggregates by node so that one specifier shared by
	// several declarators resolves once.
	records map[cdecl.Node]ctype.Type
}

func New(reg *registry.Registry) *Resolver {
	return &Resolver{
		reg:     reg,
		records: make(map[cdecl.Node]ctype.Type),
	}
}

// Registry returns the registry the resolver writes to.
func (r *Resolver) Registry() *registry.Registry {
	return r.reg
}

// ResolveDecl resolves one top-level node. On error, registrations made by
// earlier declarations stay; those made while resolving n may stay too.
func (r *Resolver) ResolveDecl(n cdecl.Node) (ctype.Type, error) {
	switch v := n.(type) {
	case *cdecl.Typedef:
		return r.resolveTypedef(v)
	case *cdecl.Decl:
		return r.resolveTopDecl(v)
	case *cdecl.TypeDecl, *cdecl.PtrDecl, *cdecl.ArrayDecl, *cdecl.FuncDecl, *cdecl.Typename,
		*cdecl.IdentifierType, *cdecl.Struct, *cdecl.Union, *cdecl.Enum, *cdecl.EllipsisParam:
		return nil, ffierr.UnsupportedShape(n.Span(), fmt.Sprintf("%s at top level", n.Kind()))
	case nil:
		return nil, ffierr.UnsupportedShape(source.Span{}, "nil node")
	}
	return nil, ffierr.UnsupportedShape(n.Span(), fmt.Sprintf("unknown node %T", n))
}

func (r *Resolver) resolveTypedef(td *cdecl.Typedef) (ctype.Type, error) {
	ctx := context{hints: hintTypedef | hintTopLevel, outer: td.Name}
	t, err := r.resolve(td.Type, ctx)
	if err != nil {
		return nil, err
	}

	cat := registry.CatType
	switch inner := td.Type.(type) {
	case *cdecl.PtrDecl:
		cat = registry.CatTypedefPointer
	case *cdecl.ArrayDecl:
		cat = registry.CatArray
	case *cdecl.FuncDecl:
		cat = registry.CatTypedefFunc
		sig := t.(*ctype.FuncSignature)
		if declName := cdecl.DeclName(inner); declName != "" && declName != td.Name {
			if _, err := r.reg.Define(registry.Entry{Name: declName, Category: cat, Type: sig, Span: td.Sp}); err != nil {
				return nil, err
			}
		}
	case *cdecl.TypeDecl:
		switch inner.Type.(type) {
		case *cdecl.Struct:
			cat = registry.CatTypedefStruct
		case *cdecl.Union:
			cat = registry.CatTypedefUnion
		case *cdecl.Enum:
			cat = registry.CatTypedefEnum
		}
	}
	if _, err := r.reg.Define(registry.Entry{Name: td.Name, Category: cat, Type: t, Span: td.Sp}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Resolver) resolveTopDecl(d *cdecl.Decl) (ctype.Type, error) {
	ctx := context{hints: hintDecl | hintTopLevel, outer: d.Name}
	t, err := r.resolve(d.Type, ctx)
	if err != nil {
		return nil, err
	}
	if sig, ok := t.(*ctype.FuncSignature); ok && d.Name != "" && d.Storage != cdecl.StorageStatic {
		if _, err := r.reg.Define(registry.Entry{Name: d.Name, Category: registry.CatFunc, Type: sig, Span: d.Sp}); err != nil {
			return nil, err
		}
	}
	// Variables are resolved for their side effects only: a foreign
	// library's globals cannot be bound.
	return t, nil
}

func (r *Resolver) resolve(n cdecl.Node, ctx context) (ctype.Type, error) {
	switch v := n.(type) {
	case *cdecl.TypeDecl:
		if ctx.outer == "" {
			ctx.outer = v.DeclName
		}
		return r.resolve(v.Type, ctx)
	case *cdecl.Typename:
		return r.resolve(v.Type, ctx)
	case *cdecl.Decl:
		return r.resolve(v.Type, ctx)
	case *cdecl.IdentifierType:
		return r.resolveIdentifier(v)
	case *cdecl.PtrDecl:
		inner, err := r.resolve(v.Type, ctx.with(hintPtrDecl, hintTopLevel))
		if err != nil {
			return nil, err
		}
		return ctype.Pointer{Elem: inner}, nil
	case *cdecl.ArrayDecl:
		elem, err := r.resolve(v.Type, ctx.with(0, hintTopLevel))
		if err != nil {
			return nil, err
		}
		return ctype.Array{Elem: elem, Len: r.arrayLen(v.Dim)}, nil
	case *cdecl.FuncDecl:
		return r.resolveFunc(v, ctx)
	case *cdecl.Struct:
		return r.resolveRecord(v, v.Name, v.Complete, ctype.KindStruct, ctx)
	case *cdecl.Union:
		return r.resolveRecord(v, v.Name, v.Complete, ctype.KindUnion, ctx)
	case *cdecl.Enum:
		return r.resolveEnum(v, ctx)
	case *cdecl.Typedef:
		return nil, ffierr.UnsupportedShape(v.Sp, "nested typedef")
	case *cdecl.EllipsisParam:
		return nil, ffierr.UnsupportedShape(v.Sp, "ellipsis outside a parameter list")
	case nil:
		return nil, ffierr.UnsupportedShape(source.Span{}, "missing type")
	}
	return nil, ffierr.UnsupportedShape(n.Span(), fmt.Sprintf("unknown node %T", n))
}

func (r *Resolver) resolveIdentifier(it *cdecl.IdentifierType) (ctype.Type, error) {
	spelling := ctype.NormalizeSpelling(it.Names)
	e, ok := r.reg.LookupType(spelling)
	if !ok {
		return nil, ffierr.UnknownType(ffierr.PhaseResolve, it.Sp, spelling)
	}
	if e.Builtin {
		return e.Type, nil
	}
	return ctype.Named{Name: spelling}, nil
}

func (r *Resolver) arrayLen(dim cdecl.Expr) int64 {
	if dim == nil {
		return -1
	}
	v, err := evalExpr(dim, r.reg.LookupConstant)
	if err != nil || v < 0 {
		return -1
	}
	return v
}

func (r *Resolver) resolveFunc(fd *cdecl.FuncDecl, ctx context) (ctype.Type, error) {
	sig := &ctype.FuncSignature{Name: cdecl.DeclName(fd.Type)}
	pctx := context{hints: hintFuncDecl}
	for i, p := range fd.Params {
		var (
			pt   ctype.Type
			name string
			err  error
		)
		switch pv := p.(type) {
		case *cdecl.EllipsisParam:
			if i != len(fd.Params)-1 {
				return nil, ffierr.UnsupportedShape(pv.Sp, "ellipsis must be the last parameter")
			}
			sig.Variadic = true
			continue
		case *cdecl.Decl:
			name = pv.Name
			pt, err = r.resolve(pv.Type, pctx)
		case *cdecl.Typename:
			name = pv.Name
			pt, err = r.resolve(pv.Type, pctx)
		default:
			return nil, ffierr.UnsupportedShape(p.Span(), fmt.Sprintf("%s in parameter list", p.Kind()))
		}
		if err != nil {
			return nil, err
		}
		if fs, ok := pt.(*ctype.FuncSignature); ok {
			// function parameters decay to pointers
			pt = ctype.Pointer{Elem: fs}
		}
		sig.Params = append(sig.Params, pt)
		sig.ParamNames = append(sig.ParamNames, name)
	}
	if len(sig.Params) == 1 && !sig.Variadic && ctype.IsVoid(sig.Params[0]) {
		sig.Params, sig.ParamNames = nil, nil
	}

	ret, err := r.resolve(fd.Type, ctx.with(hintFuncDecl, hintTopLevel))
	if err != nil {
		return nil, err
	}
	sig.Return = ret
	return sig, nil
}

// recordName picks the registry name of an aggregate: its tag, else the
// enclosing typedef or declaration name, else a generated one.
func (r *Resolver) recordName(tag, kind string, ctx context) (name string, anonymous bool) {
	if tag != "" {
		return tag, false
	}
	if ctx.outer != "" && !ctx.hints.has(hintFuncDecl) {
		return ctx.outer, true
	}
	return anonName(r.reg, kind), true
}

func (r *Resolver) resolveRecord(n cdecl.Node, tag string, complete bool, kind ctype.Kind, ctx context) (ctype.Type, error) {
	if t, ok := r.records[n]; ok {
		return t, nil
	}
	kindName, cat := "struct", registry.CatStruct
	if kind == ctype.KindUnion {
		kindName, cat = "union", registry.CatUnion
	}

	if !complete {
		if tag == "" {
			return nil, ffierr.UnsupportedShape(n.Span(), kindName+" without tag or body")
		}
		if e, ok := r.reg.LookupTag(tag); ok {
			if e.Category != cat {
				return nil, ffierr.Duplicate(tag, n.Span(), e.Span,
					fmt.Sprintf("%q used as %s, declared as %s", tag, kindName, e.Category))
			}
			r.records[n] = e.Type
			return e.Type, nil
		}
	}

	name, anonymous := r.recordName(tag, kindName, ctx)
	var t ctype.Type
	if kind == ctype.KindUnion {
		u := ctype.NewUnion(name)
		u.Complete, u.Anonymous = complete, anonymous
		t = u
	} else {
		s := ctype.NewStruct(name)
		s.Complete, s.Anonymous = complete, anonymous
		t = s
	}
	rec, _ := ctype.AsRecord(t)
	if anonymous {
		rec.Spelling = ""
		if ctx.hints.has(hintTypedef) && !ctx.hints.has(hintPtrDecl) {
			rec.Spelling = name
		}
	}

	e, err := r.reg.Define(registry.Entry{Name: name, Category: cat, Type: t, Span: n.Span()})
	if err != nil {
		return nil, err
	}
	r.records[n] = e.Type
	return e.Type, nil
}

func (r *Resolver) resolveEnum(n *cdecl.Enum, ctx context) (ctype.Type, error) {
	if t, ok := r.records[n]; ok {
		return t, nil
	}
	if n.Values == nil {
		if n.Name == "" {
			return nil, ffierr.UnsupportedShape(n.Sp, "enum without tag or body")
		}
		e, ok := r.reg.LookupTag(n.Name)
		if !ok {
			return nil, ffierr.UnknownType(ffierr.PhaseResolve, n.Sp, "enum "+n.Name)
		}
		if e.Category != registry.CatEnum {
			return nil, ffierr.Duplicate(n.Name, n.Sp, e.Span,
				fmt.Sprintf("%q used as enum, declared as %s", n.Name, e.Category))
		}
		r.records[n] = e.Type
		return e.Type, nil
	}

	items, err := evalEnum(r.reg, n.Values)
	if err != nil {
		return nil, err
	}
	name, anonymous := r.recordName(n.Name, "enum", ctx)
	en := &ctype.Enum{Name: name, Anonymous: anonymous, Items: items}
	e, err := r.reg.Define(registry.Entry{Name: name, Category: registry.CatEnum, Type: en, Span: n.Sp})
	if err != nil {
		return nil, err
	}
	r.records[n] = e.Type

	// Top-level enum declarations, and anonymous enums named only by a
	// typedef, are how C headers spell integer constants.
	if ctx.hints.has(hintTopLevel) && (ctx.hints.has(hintDecl) || (anonymous && ctx.hints.has(hintTypedef))) {
		for i, it := range items {
			if _, err := r.reg.DefineConstant(it.Name, it.Value, n.Values[i].Sp); err != nil {
				return nil, err
			}
		}
	}
	return e.Type, nil
}
