package simplify

import (
	"testing"

	"ffigen/internal/ctype"
	"ffigen/internal/diag"
	"ffigen/internal/registry"
)

var (
	sint32  = ctype.Prim(ctype.TagSint32)
	str     = ctype.Prim(ctype.TagString)
	opaque  = ctype.Prim(ctype.TagPointer)
	charPtr = ctype.Pointer{Elem: ctype.Prim(ctype.TagChar)}
)

func newRegistry() *registry.Registry {
	reg := registry.New()
	reg.Push()
	return reg
}

func define(t *testing.T, reg *registry.Registry, name string, cat registry.Category, typ ctype.Type) {
	t.Helper()
	if _, err := reg.Define(registry.Entry{Name: name, Category: cat, Type: typ}); err != nil {
		t.Fatalf("define %s: %v", name, err)
	}
}

func fn(name string, ret ctype.Type, params ...ctype.Type) *ctype.FuncSignature {
	return &ctype.FuncSignature{Name: name, Return: ret, Params: params, ParamNames: make([]string, len(params))}
}

func TestCallbackInlining(t *testing.T) {
	reg := newRegistry()
	// typedef void (*Cb)(int, int); void f(Cb cb);
	define(t, reg, "Cb", registry.CatTypedefPointer, ctype.Pointer{Elem: fn("Cb", ctype.Void, sint32, sint32)})
	f := fn("f", ctype.Void, ctype.Named{Name: "Cb"})
	define(t, reg, "f", registry.CatFunc, f)

	Simplify(reg, nil)

	want := ctype.Callback{Return: ctype.Void, Params: []ctype.Type{sint32, sint32}}
	if !ctype.Equal(f.Params[0], want) {
		t.Fatalf("want %v, got %v", want, f.Params[0])
	}
}

func TestCallbackThroughTypedefFunc(t *testing.T) {
	reg := newRegistry()
	// typedef int handler(char *); void on(handler *h, handler h2);
	define(t, reg, "handler", registry.CatTypedefFunc, fn("handler", sint32, charPtr))
	on := fn("on", ctype.Void, ctype.Pointer{Elem: ctype.Named{Name: "handler"}}, ctype.Named{Name: "handler"})
	define(t, reg, "on", registry.CatFunc, on)

	Simplify(reg, nil)

	want := ctype.Callback{Return: sint32, Params: []ctype.Type{str}}
	for i, p := range on.Params {
		if !ctype.Equal(p, want) {
			t.Fatalf("param %d: want %v, got %v", i, want, p)
		}
	}
}

func TestStringCanonicalization(t *testing.T) {
	reg := newRegistry()
	define(t, reg, "text_t", registry.CatType, ctype.Prim(ctype.TagChar))
	inline := ctype.Pointer{Elem: fn("", charPtr, charPtr)}
	f := fn("f", charPtr, charPtr, ctype.Pointer{Elem: ctype.Named{Name: "text_t"}}, inline)
	define(t, reg, "f", registry.CatFunc, f)

	Simplify(reg, nil)

	if !ctype.Equal(f.Return, str) {
		t.Fatalf("return: want string, got %v", f.Return)
	}
	if !ctype.Equal(f.Params[0], str) || !ctype.Equal(f.Params[1], str) {
		t.Fatalf("params: want string, got %v", f.Params)
	}
	cb := f.Params[2].(ctype.Callback)
	if !ctype.Equal(cb.Return, str) || !ctype.Equal(cb.Params[0], str) {
		t.Fatalf("callback: want strings inside, got %v", cb)
	}
}

func TestPointersArraysAndEnums(t *testing.T) {
	reg := newRegistry()
	en := &ctype.Enum{Name: "E", Items: []ctype.Enumerator{{Name: "A"}}}
	define(t, reg, "E", registry.CatEnum, en)
	s := ctype.NewStruct("S")
	define(t, reg, "S", registry.CatStruct, s)
	f := fn("f", en,
		ctype.Pointer{Elem: s},
		ctype.Pointer{Elem: ctype.Void},
		ctype.Pointer{Elem: charPtr},
		ctype.Array{Elem: sint32, Len: 4},
		ctype.Prim(ctype.TagDouble),
	)
	define(t, reg, "f", registry.CatFunc, f)

	Simplify(reg, nil)

	if !ctype.Equal(f.Return, sint32) {
		t.Fatalf("enum return should be sint32, got %v", f.Return)
	}
	want := []ctype.Type{opaque, opaque, opaque, opaque, ctype.Prim(ctype.TagDouble)}
	for i := range want {
		if !ctype.Equal(f.Params[i], want[i]) {
			t.Fatalf("param %d: want %v, got %v", i, want[i], f.Params[i])
		}
	}
}

func TestCharArrayParamIsString(t *testing.T) {
	reg := newRegistry()
	// typedef char name_t[32]; int f(const char name[], name_t alias, char grid[2][3]);
	define(t, reg, "name_t", registry.CatArray, ctype.Array{Elem: ctype.Prim(ctype.TagChar), Len: 32})
	f := fn("f", sint32,
		ctype.Array{Elem: ctype.Prim(ctype.TagChar), Len: -1},
		ctype.Named{Name: "name_t"},
		ctype.Array{Elem: ctype.Array{Elem: ctype.Prim(ctype.TagChar), Len: 3}, Len: 2},
	)
	define(t, reg, "f", registry.CatFunc, f)
	// typedef void (*on_name)(char buf[16]);
	cb := fn("on_name", ctype.Void, ctype.Array{Elem: ctype.Prim(ctype.TagChar), Len: 16})
	define(t, reg, "on_name", registry.CatTypedefPointer, ctype.Pointer{Elem: cb})

	Simplify(reg, nil)

	want := []ctype.Type{str, str, opaque}
	for i := range want {
		if !ctype.Equal(f.Params[i], want[i]) {
			t.Fatalf("param %d: want %v, got %v", i, want[i], f.Params[i])
		}
	}
	if !ctype.Equal(cb.Params[0], str) {
		t.Fatalf("callback char array param should be string, got %v", cb.Params[0])
	}
}

func TestByValueAggregateWarns(t *testing.T) {
	reg := newRegistry()
	s := ctype.NewStruct("S")
	define(t, reg, "S", registry.CatStruct, s)
	define(t, reg, "S_t", registry.CatTypedefStruct, s)
	f := fn("f", ctype.Void, ctype.Named{Name: "S_t"})
	define(t, reg, "f", registry.CatFunc, f)

	bag := diag.NewBag(10)
	st := Simplify(reg, diag.BagReporter{Bag: bag})
	if f.Params[0] != ctype.Type(s) {
		t.Fatalf("by-value struct should be kept, got %v", f.Params[0])
	}
	if st.Warnings != 1 || bag.Items()[0].Code != diag.SimAggregateByVal {
		t.Fatalf("expected one by-value warning, got %+v", bag.Items())
	}
}

func TestUnknownNamedFallsBackToPointer(t *testing.T) {
	reg := newRegistry()
	f := fn("f", ctype.Named{Name: "ghost_t"})
	define(t, reg, "f", registry.CatFunc, f)

	bag := diag.NewBag(10)
	Simplify(reg, diag.BagReporter{Bag: bag})
	if !ctype.Equal(f.Return, opaque) {
		t.Fatalf("want pointer fallback, got %v", f.Return)
	}
	d := bag.Items()[0]
	if d.Code != diag.SimUnknownType || d.Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestTypedefChainToPrimitive(t *testing.T) {
	reg := newRegistry()
	define(t, reg, "u32", registry.CatType, ctype.Prim(ctype.TagUint32))
	define(t, reg, "GLuint", registry.CatType, ctype.Named{Name: "u32"})
	f := fn("f", ctype.Named{Name: "GLuint"})
	define(t, reg, "f", registry.CatFunc, f)

	Simplify(reg, nil)
	if !ctype.Equal(f.Return, ctype.Prim(ctype.TagUint32)) {
		t.Fatalf("want uint32, got %v", f.Return)
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	reg := newRegistry()
	define(t, reg, "Cb", registry.CatTypedefPointer, ctype.Pointer{Elem: fn("Cb", charPtr, charPtr)})
	define(t, reg, "f", registry.CatFunc, fn("f", charPtr, ctype.Named{Name: "Cb"}, ctype.Pointer{Elem: ctype.Void}))

	Simplify(reg, nil)
	first := map[string]ctype.Type{}
	for _, e := range reg.Entries() {
		first[e.Name] = ctype.Clone(e.Type)
	}
	Simplify(reg, nil)
	for _, e := range reg.Entries() {
		if !ctype.Equal(first[e.Name], e.Type) {
			t.Fatalf("%s changed on second pass: %v -> %v", e.Name, first[e.Name], e.Type)
		}
	}
}

func TestTypedefPointerPayloadIsSimplified(t *testing.T) {
	reg := newRegistry()
	sig := fn("Cb", ctype.Void, charPtr)
	define(t, reg, "Cb", registry.CatTypedefPointer, ctype.Pointer{Elem: sig})
	Simplify(reg, nil)
	if !ctype.Equal(sig.Params[0], str) {
		t.Fatalf("callback typedef params should be simplified, got %v", sig.Params[0])
	}
}

func TestOnlyTopLayerIsRewritten(t *testing.T) {
	reg := newRegistry()
	lower := fn("lower", charPtr)
	define(t, reg, "lower", registry.CatFunc, lower)
	reg.Push()
	upper := fn("upper", charPtr)
	define(t, reg, "upper", registry.CatFunc, upper)

	Simplify(reg, nil)
	if !ctype.Equal(upper.Return, str) {
		t.Fatalf("top layer should be simplified")
	}
	if !ctype.Equal(lower.Return, charPtr) {
		t.Fatalf("lower layers must be left alone, got %v", lower.Return)
	}
}
