package ffierr

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"ffigen/internal/diag"
	"ffigen/internal/source"
)

func TestErrorFormatting(t *testing.T) {
	err := New(PhaseResolve, KindUnknownType).Name("foo_t").Detail("unknown type %q", "foo_t").Build()
	got := err.Error()
	if !strings.HasPrefix(got, "[resolve] unknown_type") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, `"foo_t"`) {
		t.Fatalf("name missing from %q", got)
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", UnknownType(PhaseSimplify, source.Span{}, "x"))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected errors.Is to match the kind template")
	}
	if errors.Is(err, ErrDuplicateDecl) {
		t.Fatalf("kinds must not cross-match")
	}
	phased := &Error{Phase: PhaseResolve, Kind: KindUnknownType}
	if errors.Is(err, phased) {
		t.Fatalf("phase in the template must be honored")
	}
}

func TestCodeMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want diag.Code
	}{
		{UnsupportedShape(source.Span{}, "x"), diag.ResUnsupportedShape},
		{UnknownType(PhaseResolve, source.Span{}, "x"), diag.ResUnknownType},
		{UnknownType(PhaseSimplify, source.Span{}, "x"), diag.SimUnknownType},
		{EnumEval(source.Span{}, "A", "division by zero"), diag.ResEnumEval},
		{ExternalTool(PhasePreprocess, "gcc", errors.New("exit 1")), diag.TlcPreprocess},
		{ExternalTool(PhaseSizeQuery, "gcc", errors.New("exit 1")), diag.TlcSizeQuery},
		{ExternalTool(PhasePreprocess, "nope", exec.ErrNotFound), diag.TlcCompilerMissing},
		{SymbolMissing("f", "libx.so"), diag.TlcSymbolMissing},
	}
	for _, tc := range cases {
		if got := tc.err.Code(); got != tc.want {
			t.Fatalf("%v: want %s, got %s", tc.err, tc.want.ID(), got.ID())
		}
	}
}

func TestReportDuplicateCarriesBothSpans(t *testing.T) {
	bag := diag.NewBag(4)
	cur := source.Span{File: 1, Start: 10, End: 12}
	prev := source.Span{File: 1, Start: 2, End: 4}
	Report(diag.BagReporter{Bag: bag}, diag.SevError, source.Span{}, Duplicate("S", cur, prev, "struct S redefined"))
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ResDuplicateDecl || d.Primary != cur {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span != prev {
		t.Fatalf("expected note at previous definition, got %+v", d.Notes)
	}
}

func TestReportPlainError(t *testing.T) {
	bag := diag.NewBag(4)
	sp := source.Span{File: 2, Start: 1, End: 3}
	Report(diag.BagReporter{Bag: bag}, diag.SevError, sp, errors.New("boom"))
	d := bag.Items()[0]
	if d.Code != diag.UnknownCode || d.Primary != sp || d.Message != "boom" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}
