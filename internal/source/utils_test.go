package source

import "testing"

func TestNormalizeCRLFKeepsLoneCR(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	if !changed {
		t.Fatalf("expected change")
	}
	if string(out) != "a\nb\rc\n" {
		t.Fatalf("unexpected output %q", out)
	}
	out, changed = normalizeCRLF([]byte("plain\n"))
	if changed || string(out) != "plain\n" {
		t.Fatalf("plain text must be untouched, got %q changed=%v", out, changed)
	}
}

func TestToLineCol(t *testing.T) {
	content := []byte("ab\ncd\n\nef")
	idx := buildLineIndex(content)
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // newline belongs to its line
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{8, LineCol{4, 2}},
	}
	for _, c := range cases {
		if got := toLineCol(idx, c.off); got != c.want {
			t.Errorf("toLineCol(%d) = %+v, want %+v", c.off, got, c.want)
		}
	}
}

func TestNormalizeComposesNFC(t *testing.T) {
	decomposed := []byte("/* cafe\u0301 */")
	out, _ := Normalize(decomposed)
	if string(out) != "/* caf\u00e9 */" {
		t.Fatalf("expected NFC text, got %q", out)
	}
}

func TestLineMapOrigin(t *testing.T) {
	var m LineMap
	if _, _, ok := m.Origin(1); ok {
		t.Fatalf("empty map must not resolve")
	}
	m.Mark(2, "a.h", 5)
	m.Mark(7, "./b.h", 1)
	if _, _, ok := m.Origin(1); ok {
		t.Fatalf("line before first mark must not resolve")
	}
	if p, l, _ := m.Origin(4); p != "a.h" || l != 7 {
		t.Fatalf("Origin(4) = %s:%d", p, l)
	}
	if p, l, _ := m.Origin(7); p != "b.h" || l != 1 {
		t.Fatalf("Origin(7) = %s:%d", p, l)
	}
}
