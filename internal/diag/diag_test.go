package diag

import (
	"strings"
	"testing"

	"ffigen/internal/source"
)

func TestCodeIDPrefixes(t *testing.T) {
	cases := map[Code]string{
		IOLoadFileError:     "IO1001",
		SynErrorRegion:      "SYN2001",
		ResUnknownType:      "RES3002",
		SimAggregateByVal:   "SIM4002",
		TlcPreprocess:       "TLC5001",
		ObsTimings:          "OBS6001",
		UnknownCode:         "E0000",
		ResUnsupportedShape: "RES3001",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("%d: want %s, got %s", code, want, got)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Fatalf("unexpected title for unknown code: %q", Code(9999).Title())
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(NewError(ResUnknownType, source.Span{}, "x"))
	}
	if b.Len() != 2 {
		t.Fatalf("expected bag to cap at 2, got %d", b.Len())
	}

	other := NewBag(4)
	other.Add(New(SevWarning, SimAggregateByVal, source.Span{}, "w"))
	b.Merge(other)
	if b.Len() != 3 {
		t.Fatalf("merge should grow the cap, got %d items", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected both errors and warnings")
	}
	if b.Count(SevWarning) != 1 {
		t.Fatalf("expected one warning, got %d", b.Count(SevWarning))
	}
}

func TestNewBagClampsNegative(t *testing.T) {
	b := NewBag(-1)
	if b.Add(NewError(ResUnknownType, source.Span{}, "x")) {
		t.Fatalf("negative limit should reject all diagnostics")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(ResUnknownType, source.Span{File: 1, Start: 5, End: 6}, "b"))
	b.Add(New(SevWarning, SimAggregateByVal, source.Span{File: 0, Start: 9, End: 10}, "a"))
	b.Add(NewError(ResUnknownType, source.Span{File: 1, Start: 5, End: 6}, "b"))
	b.Sort()
	b.Dedup()
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items after dedup, got %d", len(items))
	}
	if items[0].Primary.File != 0 {
		t.Fatalf("expected file 0 first, got %d", items[0].Primary.File)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 0, Start: 1, End: 2}
	ReportWarning(r, SimUnknownType, sp, "unknown type foo").Emit()
	ReportWarning(r, SimUnknownType, sp, "unknown type foo").Emit()
	ReportWarning(r, SimUnknownType, sp, "unknown type bar").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	b := ReportError(BagReporter{Bag: bag}, ResDuplicateDecl, source.Span{}, "dup").
		WithNote(source.Span{Start: 3, End: 4}, "previous declaration")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected a single diagnostic, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("expected note to be attached")
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	lm := &source.LineMap{}
	lm.Mark(1, "foo.h", 10)
	id := fs.AddPreprocessed("foo.i", []byte("int x;\nlong y;\n"), lm)
	diags := []Diagnostic{
		NewError(ResUnknownType, source.Span{File: id, Start: 7, End: 8}, "unknown\ntype"),
		New(SevWarning, SimAggregateByVal, source.Span{File: id, Start: 0, End: 3}, "by value"),
	}
	out := FormatShortDiagnostics(diags, fs, false)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if lines[0] != "warning SIM4002 foo.h:10:1 by value" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "error RES3002 foo.h:11:1 unknown type" {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestParseSeverityAndFilter(t *testing.T) {
	sev, err := ParseSeverity("Warn")
	if err != nil || sev != SevWarning {
		t.Fatalf("ParseSeverity(Warn) = %v, %v", sev, err)
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Fatalf("expected error for unknown severity")
	}

	b := NewBag(10)
	b.Add(New(SevInfo, SimVariadicDropped, source.Span{}, "i"))
	b.Add(New(SevWarning, SimAggregateByVal, source.Span{}, "w"))
	b.Add(NewError(ResUnknownType, source.Span{}, "e"))
	b.Filter(AtLeast(SevWarning))
	if b.Len() != 2 || b.Count(SevInfo) != 0 {
		t.Fatalf("filter kept %+v", b.Items())
	}
}
