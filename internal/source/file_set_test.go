package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("api.h", []byte("int a;"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("api.h", []byte("int b;"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists := fs.GetLatest("api.h")
	if !exists || latestID != id2 {
		t.Fatalf("Expected latest ID %d, got %d (exists=%v)", id2, latestID, exists)
	}
	if got := string(fs.Get(id1).Content); got != "int a;" {
		t.Errorf("old version must stay readable, got %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Errorf("expected nil for unknown file id")
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.h")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("int a;\r\nint b;\r\n")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "int a;\nint b;\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}

func TestFileSetPositionThroughLineMap(t *testing.T) {
	fs := NewFileSet()
	lines := &LineMap{}
	lines.Mark(1, "/usr/include/stdio.h", 10)
	lines.Mark(3, "include/api.h", 1)

	text := []byte("typedef int FILE_t;\n\nint api_init(void);\nint api_run(int);\n")
	id := fs.AddPreprocessed("api.h.i", text, lines)

	pos := fs.Position(Span{File: id, Start: 0, End: 7})
	if pos.Path != "/usr/include/stdio.h" || pos.Line != 10 {
		t.Fatalf("unexpected position %+v", pos)
	}

	off := uint32(len("typedef int FILE_t;\n\nint api_init(void);\n")) //nolint:gosec // test literal
	pos = fs.Position(Span{File: id, Start: off, End: off + 3})
	if pos.Path != "include/api.h" || pos.Line != 2 || pos.Col != 1 {
		t.Fatalf("unexpected mapped position %+v", pos)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("v.h", []byte("first\nsecond\nthird"))
	f := fs.Get(id)
	if got := f.GetLine(2); got != "second" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "third" {
		t.Fatalf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Fatalf("GetLine(9) = %q", got)
	}
}
