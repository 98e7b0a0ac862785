package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseC(t *testing.T) {
	p, err := NewParser(C)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	code := []byte(`struct node { struct node *next; };`)
	result, err := p.Parse(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	if result.HasErrors() {
		t.Error("unexpected syntax errors")
	}

	structs := result.FindNodesByType("struct_specifier")
	if len(structs) == 0 {
		t.Fatal("no struct_specifier found")
	}
	if got := result.NodeText(structs[0]); got != string(code[:len(code)-1]) {
		t.Errorf("NodeText = %q", got)
	}
	if StartLine(structs[0]) != 1 {
		t.Errorf("StartLine = %d", StartLine(structs[0]))
	}
}

func TestParseFileSetsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.c")
	if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := NewParser(C)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	defer result.Close()

	if result.FilePath != path {
		t.Errorf("FilePath = %q", result.FilePath)
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	_, err := NewParser(Language("cobol"))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*UnsupportedLanguageError); !ok {
		t.Errorf("error type %T", err)
	}
}

func TestLanguageFromExtension(t *testing.T) {
	cases := map[string]Language{
		".c":   C,
		".h":   C,
		".cpp": Cpp,
		".hpp": Cpp,
		".go":  "",
	}
	for ext, want := range cases {
		if got := LanguageFromExtension(ext); got != want {
			t.Errorf("LanguageFromExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}
