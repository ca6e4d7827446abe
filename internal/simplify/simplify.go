// Package simplify rewrites resolved signatures into the flat vocabulary an
// FFI call needs: scalar tags, pointer, string and inline callbacks.
package simplify

import (
	"fmt"

	"ffigen/internal/ctype"
	"ffigen/internal/diag"
	"ffigen/internal/ffierr"
	"ffigen/internal/registry"
	"ffigen/internal/source"
)

// Stats counts what a Simplify run touched.
type Stats struct {
	Signatures int
	Callbacks  int
	Warnings   int
}

type simplifier struct {
	reg   *registry.Registry
	rep   diag.Reporter
	span  source.Span
	stats Stats
	done  map[*ctype.FuncSignature]bool
}

// Simplify rewrites, in place, every function, typedef-func and
// pointer-to-function typedef of the top layer of reg. Running it again
// over its own output changes nothing.
func Simplify(reg *registry.Registry, rep diag.Reporter) Stats {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	s := &simplifier{
		reg:  reg,
		rep:  diag.NewDedupReporter(rep),
		done: make(map[*ctype.FuncSignature]bool),
	}
	for _, e := range reg.Entries() {
		s.span = e.Span
		switch e.Category {
		case registry.CatFunc, registry.CatTypedefFunc:
			if sig, ok := e.Type.(*ctype.FuncSignature); ok {
				s.signature(sig)
			}
		case registry.CatTypedefPointer:
			if sig, ok := CallbackTarget(e.Type); ok {
				s.signature(sig)
			}
		}
	}
	return s.stats
}

// CallbackTarget returns the signature behind a pointer to a function.
func CallbackTarget(t ctype.Type) (*ctype.FuncSignature, bool) {
	p, ok := t.(ctype.Pointer)
	if !ok {
		return nil, false
	}
	sig, ok := p.Elem.(*ctype.FuncSignature)
	return sig, ok
}

func (s *simplifier) signature(sig *ctype.FuncSignature) {
	if s.done[sig] {
		return
	}
	s.done[sig] = true
	s.stats.Signatures++
	sig.Return = s.simplify(sig.Return)
	for i, p := range sig.Params {
		sig.Params[i] = s.param(p)
	}
	if sig.Variadic && sig.Name != "" {
		diag.ReportInfo(s.rep, diag.SimVariadicDropped, s.span,
			fmt.Sprintf("%s is variadic; only the fixed parameters are marshaled", sig.Name)).Emit()
	}
}

func (s *simplifier) simplify(t ctype.Type) ctype.Type {
	switch v := t.(type) {
	case ctype.Primitive:
		return v
	case ctype.Callback:
		return s.callback(v.Return, v.Params, v.Variadic)
	case ctype.Pointer:
		return s.pointer(v)
	case ctype.Array:
		return ctype.Prim(ctype.TagPointer)
	case ctype.Named:
		return s.named(v)
	case *ctype.Enum:
		return ctype.Prim(ctype.TagSint32)
	case *ctype.Struct, *ctype.Union:
		s.warn(diag.SimAggregateByVal, fmt.Sprintf("%s is passed by value; calls through this signature will fail", v))
		return v
	case *ctype.FuncSignature:
		return s.callback(v.Return, v.Params, v.Variadic)
	case nil:
		s.warn(diag.SimUnknownType, "missing type, using pointer")
		return ctype.Prim(ctype.TagPointer)
	}
	return t
}

func (s *simplifier) callback(ret ctype.Type, params []ctype.Type, variadic bool) ctype.Type {
	s.stats.Callbacks++
	cb := ctype.Callback{Return: s.simplify(ret), Variadic: variadic}
	if len(params) > 0 {
		cb.Params = make([]ctype.Type, len(params))
		for i, p := range params {
			cb.Params[i] = s.param(p)
		}
	}
	return cb
}

// param simplifies a parameter type. Array parameters are pointers to
// their element, so a char array is a string like char *.
func (s *simplifier) param(t ctype.Type) ctype.Type {
	if n, ok := t.(ctype.Named); ok {
		target, found := s.deref(n)
		if !found {
			return ctype.Prim(ctype.TagPointer)
		}
		t = target
	}
	if a, ok := t.(ctype.Array); ok {
		return s.pointer(ctype.Pointer{Elem: a.Elem})
	}
	return s.simplify(t)
}

func (s *simplifier) pointer(p ctype.Pointer) ctype.Type {
	elem := p.Elem
	if n, ok := elem.(ctype.Named); ok {
		target, found := s.deref(n)
		if !found {
			return ctype.Prim(ctype.TagPointer)
		}
		elem = target
	}
	switch v := elem.(type) {
	case ctype.Primitive:
		if v.Tag == ctype.TagChar {
			return ctype.Prim(ctype.TagString)
		}
	case *ctype.FuncSignature:
		return s.callback(v.Return, v.Params, v.Variadic)
	}
	return ctype.Prim(ctype.TagPointer)
}

func (s *simplifier) named(n ctype.Named) ctype.Type {
	target, found := s.deref(n)
	if !found {
		return ctype.Prim(ctype.TagPointer)
	}
	return s.simplify(target)
}

// deref follows typedef names until it reaches a type that is not Named.
// Unknown names and cycles are reported.
func (s *simplifier) deref(n ctype.Named) (ctype.Type, bool) {
	seen := map[string]bool{}
	var t ctype.Type = n
	for {
		cur, ok := t.(ctype.Named)
		if !ok {
			return t, true
		}
		if seen[cur.Name] {
			s.warn(diag.SimTypedefCycle, fmt.Sprintf("typedef cycle through %q, using pointer", cur.Name))
			return nil, false
		}
		seen[cur.Name] = true
		e, ok := s.reg.LookupType(cur.Name)
		if !ok {
			err := ffierr.UnknownType(ffierr.PhaseSimplify, s.span, cur.Name)
			err.Detail = fmt.Sprintf("unknown type %q, using pointer", cur.Name)
			ffierr.Report(s.rep, diag.SevWarning, s.span, err)
			s.stats.Warnings++
			return nil, false
		}
		t = e.Type
	}
}

func (s *simplifier) warn(code diag.Code, msg string) {
	s.stats.Warnings++
	diag.ReportWarning(s.rep, code, s.span, msg).Emit()
}
