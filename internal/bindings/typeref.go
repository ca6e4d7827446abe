package bindings

import (
	"ffigen/internal/ctype"
)

// RefKind classifies a TypeRef.
type RefKind string

const (
	RefPrim     RefKind = "prim"
	RefCallback RefKind = "callback"
	RefStruct   RefKind = "struct"
	RefUnion    RefKind = "union"
)

// TypeRef is a simplified parameter or return type.
type TypeRef struct {
	Kind     RefKind    `json:"kind"`
	Tag      ctype.Tag  `json:"tag,omitempty"`
	Name     string     `json:"name,omitempty"`
	Callback *Signature `json:"callback,omitempty"`
}

// Signature is the call shape of a function or callback.
type Signature struct {
	Return   TypeRef   `json:"return"`
	Params   []TypeRef `json:"params"`
	Variadic bool      `json:"variadic,omitempty"`
}

// RefOf converts a simplified type. Anything simplification would not
// produce is treated as an opaque pointer.
func RefOf(t ctype.Type) TypeRef {
	switch v := t.(type) {
	case ctype.Primitive:
		return TypeRef{Kind: RefPrim, Tag: v.Tag}
	case ctype.Callback:
		s := signatureOf(v.Return, v.Params, v.Variadic)
		return TypeRef{Kind: RefCallback, Callback: &s}
	case *ctype.Struct:
		return TypeRef{Kind: RefStruct, Name: v.Name}
	case *ctype.Union:
		return TypeRef{Kind: RefUnion, Name: v.Name}
	}
	return TypeRef{Kind: RefPrim, Tag: ctype.TagPointer}
}

func signatureOf(ret ctype.Type, params []ctype.Type, variadic bool) Signature {
	s := Signature{Return: RefOf(ret), Params: make([]TypeRef, len(params)), Variadic: variadic}
	for i, p := range params {
		s.Params[i] = RefOf(p)
	}
	return s
}

// IsAggregate reports whether the reference names a struct or union passed
// by value.
func (r TypeRef) IsAggregate() bool {
	return r.Kind == RefStruct || r.Kind == RefUnion
}

// String renders the reference the way ctype prints simplified types.
func (r TypeRef) String() string {
	switch r.Kind {
	case RefPrim:
		return string(r.Tag)
	case RefStruct, RefUnion:
		return string(r.Kind) + " " + r.Name
	case RefCallback:
		if r.Callback == nil {
			return "callback"
		}
		return "callback " + r.Callback.String()
	}
	return string(r.Kind)
}

func (s Signature) String() string {
	out := s.Return.String() + "("
	for i, p := range s.Params {
		if i > 0 {
			out += ", "
		}
		out += p.String()
	}
	if s.Variadic {
		if len(s.Params) > 0 {
			out += ", "
		}
		out += "..."
	}
	return out + ")"
}

// byValue reports whether marshaling the signature needs a struct or union
// copied across the boundary, including inside callback parameters.
func (s Signature) byValue() bool {
	if s.Return.byValue() {
		return true
	}
	for _, p := range s.Params {
		if p.byValue() {
			return true
		}
	}
	return false
}

func (r TypeRef) byValue() bool {
	if r.IsAggregate() {
		return true
	}
	return r.Kind == RefCallback && r.Callback != nil && r.Callback.byValue()
}
