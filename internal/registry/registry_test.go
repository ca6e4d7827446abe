package registry

import (
	"errors"
	"sync"
	"testing"

	"ffigen/internal/ctype"
	"ffigen/internal/ffierr"
	"ffigen/internal/source"
)

func TestBaseLayerHoldsAliases(t *testing.T) {
	r := New()
	e, ok := r.LookupType("unsigned long long")
	if !ok || !e.Builtin {
		t.Fatalf("expected builtin entry, got %+v ok=%v", e, ok)
	}
	if p, ok := e.Type.(ctype.Primitive); !ok || p.Tag != ctype.TagUint64 {
		t.Fatalf("unexpected type %v", e.Type)
	}
}

func TestTypedefShadowsBuiltin(t *testing.T) {
	r := New()
	r.Push()
	if _, err := r.Define(Entry{Name: "size_t", Category: CatType, Type: ctype.Prim(ctype.TagUint32)}); err != nil {
		t.Fatalf("define: %v", err)
	}
	e, _ := r.LookupType("size_t")
	if e.Builtin || e.Type.(ctype.Primitive).Tag != ctype.TagUint32 {
		t.Fatalf("user typedef should win, got %+v", e)
	}
	r.Pop()
	e, _ = r.LookupType("size_t")
	if !e.Builtin {
		t.Fatalf("builtin should be visible again after pop")
	}
}

func TestDefineDuplicate(t *testing.T) {
	r := New()
	r.Push()
	first := source.Span{File: 1, Start: 0, End: 5}
	second := source.Span{File: 1, Start: 10, End: 15}
	sig := &ctype.FuncSignature{Name: "f", Return: ctype.Void}
	if _, err := r.Define(Entry{Name: "f", Category: CatFunc, Type: sig, Span: first}); err != nil {
		t.Fatalf("define: %v", err)
	}
	same := &ctype.FuncSignature{Name: "f", Return: ctype.Void}
	if _, err := r.Define(Entry{Name: "f", Category: CatFunc, Type: same, Span: second}); err != nil {
		t.Fatalf("repeated prototype should be accepted: %v", err)
	}

	other := &ctype.FuncSignature{Name: "f", Return: ctype.Prim(ctype.TagSint32)}
	_, err := r.Define(Entry{Name: "f", Category: CatFunc, Type: other, Span: second})
	if !errors.Is(err, ffierr.ErrDuplicateDecl) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	var fe *ffierr.Error
	if !errors.As(err, &fe) || fe.Span != second || fe.Prev != first {
		t.Fatalf("duplicate must carry both spans, got %+v", fe)
	}

	_, err = r.Define(Entry{Name: "f", Category: CatType, Type: ctype.Prim(ctype.TagSint32), Span: second})
	if !errors.Is(err, ffierr.ErrDuplicateDecl) {
		t.Fatalf("a typedef named like a function must conflict, got %v", err)
	}
}

func TestTagAndOrdinaryNamespacesCoexist(t *testing.T) {
	r := New()
	r.Push()
	s := ctype.NewStruct("S")
	if _, err := r.Define(Entry{Name: "S", Category: CatStruct, Type: s}); err != nil {
		t.Fatalf("define tag: %v", err)
	}
	if _, err := r.Define(Entry{Name: "S", Category: CatTypedefStruct, Type: s}); err != nil {
		t.Fatalf("typedef with the same name as the tag must be allowed: %v", err)
	}
	tag, _ := r.LookupTag("S")
	td, _ := r.LookupType("S")
	if tag.Type != td.Type {
		t.Fatalf("tag and typedef should share the struct")
	}
}

func TestForwardDeclarationCompletesInPlace(t *testing.T) {
	r := New()
	r.Push()
	fwd := ctype.NewStruct("S")
	if _, err := r.Define(Entry{Name: "S", Category: CatStruct, Type: fwd}); err != nil {
		t.Fatalf("define: %v", err)
	}
	full := ctype.NewStruct("S")
	full.Complete = true
	e, err := r.Define(Entry{Name: "S", Category: CatStruct, Type: full})
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if e.Type != ctype.Type(fwd) || !fwd.Complete {
		t.Fatalf("forward declaration should be completed in place")
	}
	if _, err := r.Define(Entry{Name: "S", Category: CatUnion, Type: ctype.NewUnion("S")}); !errors.Is(err, ffierr.ErrDuplicateDecl) {
		t.Fatalf("union S after struct S must conflict, got %v", err)
	}
}

func TestConstants(t *testing.T) {
	r := New()
	r.Push()
	if _, err := r.DefineConstant("A", 1, source.Span{}); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := r.DefineConstant("A", 1, source.Span{}); err != nil {
		t.Fatalf("same value should be accepted: %v", err)
	}
	if _, err := r.DefineConstant("A", 2, source.Span{}); !errors.Is(err, ffierr.ErrDuplicateDecl) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if v, ok := r.LookupConstant("A"); !ok || v != 1 {
		t.Fatalf("unexpected constant %d ok=%v", v, ok)
	}
}

func TestScopeIsolation(t *testing.T) {
	r := New()
	r.Push()
	if _, err := r.Define(Entry{Name: "a_t", Category: CatType, Type: ctype.Prim(ctype.TagSint32)}); err != nil {
		t.Fatalf("define: %v", err)
	}
	snapA := r.Pop()
	if snapA.Len() != 1 {
		t.Fatalf("snapshot should hold file A entries, got %d", snapA.Len())
	}

	r.Push()
	if r.Has("a_t") {
		t.Fatalf("file B must not see file A declarations")
	}
	if _, ok := r.LookupType("int"); !ok {
		t.Fatalf("file B must see the alias table")
	}
}

func TestInsertionOrder(t *testing.T) {
	r := New()
	r.Push()
	names := []string{"zeta", "alpha", "mid"}
	for _, n := range names {
		if _, err := r.Define(Entry{Name: n, Category: CatType, Type: ctype.Prim(ctype.TagSint32)}); err != nil {
			t.Fatalf("define: %v", err)
		}
	}
	for i, e := range r.Entries() {
		if e.Name != names[i] || int(e.Seq) != i {
			t.Fatalf("entry %d: got %s seq %d", i, e.Name, e.Seq)
		}
	}
}

func TestRestoreIsIndependent(t *testing.T) {
	r := New()
	r.Push()
	s := ctype.NewStruct("S")
	if _, err := r.Define(Entry{Name: "S", Category: CatStruct, Type: s}); err != nil {
		t.Fatalf("define: %v", err)
	}
	r.NextAnon()
	snap := r.Pop()

	var wg sync.WaitGroup
	results := make([]*Registry, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg := New()
			reg.Restore(snap)
			e, _ := reg.LookupTag("S")
			rec, _ := ctype.AsRecord(e.Type)
			rec.Complete = true
			results[i] = reg
		}(i)
	}
	wg.Wait()

	if s.Complete {
		t.Fatalf("restored copies must not alias the snapshot")
	}
	for _, reg := range results {
		if got := reg.NextAnon(); got != 2 {
			t.Fatalf("anonymous counter should carry over, got %d", got)
		}
	}
}

func TestPopBaseIsNoop(t *testing.T) {
	r := New()
	snap := r.Pop()
	if snap.Len() != 0 || r.Depth() != 1 {
		t.Fatalf("base layer must stay")
	}
}

func TestExport(t *testing.T) {
	r := New()
	r.Push()
	if _, err := r.DefineConstant("MAX", 7, source.Span{}); err != nil {
		t.Fatalf("DefineConstant: %v", err)
	}
	if _, err := r.Define(Entry{Name: "point", Category: CatStruct, Type: ctype.NewStruct("point")}); err != nil {
		t.Fatalf("Define: %v", err)
	}
	got := Export(r.Entries())
	if len(got) != 2 {
		t.Fatalf("exported %d entries", len(got))
	}
	if got[0].Name != "MAX" || got[0].Category != "constant" || got[0].Value == nil || *got[0].Value != 7 {
		t.Fatalf("constant = %+v", got[0])
	}
	if got[1].Kind != "struct" || got[1].Type != "struct point" || got[1].Value != nil {
		t.Fatalf("struct = %+v", got[1])
	}
}
