package ctype

// Equal reports whether a and b describe the same type. Structs, unions and
// enums compare by name; enums also compare their items. Function
// signatures ignore their own name and parameter names so that repeated
// prototypes compare equal.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Primitive:
		return x.Tag == b.(Primitive).Tag
	case Named:
		return x.Name == b.(Named).Name
	case Pointer:
		return Equal(x.Elem, b.(Pointer).Elem)
	case Array:
		y := b.(Array)
		return x.Len == y.Len && Equal(x.Elem, y.Elem)
	case *Struct:
		return x.Name == b.(*Struct).Name
	case *Union:
		return x.Name == b.(*Union).Name
	case *Enum:
		y := b.(*Enum)
		if x.Name != y.Name || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if x.Items[i] != y.Items[i] {
				return false
			}
		}
		return true
	case *FuncSignature:
		y := b.(*FuncSignature)
		return x.Variadic == y.Variadic && Equal(x.Return, y.Return) && equalList(x.Params, y.Params)
	case Callback:
		y := b.(Callback)
		return x.Variadic == y.Variadic && Equal(x.Return, y.Return) && equalList(x.Params, y.Params)
	}
	return false
}

func equalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
