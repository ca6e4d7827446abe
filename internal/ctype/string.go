package ctype

import (
	"strconv"
	"strings"
)

func (p Primitive) String() string { return string(p.Tag) }

func (n Named) String() string { return n.Name }

func (p Pointer) String() string {
	if p.Elem == nil {
		return "<nil>*"
	}
	return p.Elem.String() + "*"
}

func (a Array) String() string {
	elem := "<nil>"
	if a.Elem != nil {
		elem = a.Elem.String()
	}
	if a.Len < 0 {
		return elem + "[]"
	}
	return elem + "[" + strconv.FormatInt(a.Len, 10) + "]"
}

func (s *Struct) String() string { return "struct " + s.Name }

func (u *Union) String() string { return "union " + u.Name }

func (e *Enum) String() string { return "enum " + e.Name }

func (f *FuncSignature) String() string {
	var b strings.Builder
	b.WriteString(typeString(f.Return))
	b.WriteByte(' ')
	b.WriteString(f.Name)
	writeParams(&b, f.Params, f.Variadic)
	return b.String()
}

func (c Callback) String() string {
	var b strings.Builder
	b.WriteString("callback ")
	b.WriteString(typeString(c.Return))
	writeParams(&b, c.Params, c.Variadic)
	return b.String()
}

func writeParams(b *strings.Builder, params []Type, variadic bool) {
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typeString(p))
	}
	if variadic {
		if len(params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteByte(')')
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
