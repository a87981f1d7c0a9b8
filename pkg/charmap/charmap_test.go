package charmap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompile(t *testing.T) {
	cm, err := Compile([]Entry{
		{Code: "0001", Kind: KindChar, Text: "A"},
		{Code: "0004", Kind: KindChar, Text: "…"},
		{Code: "0004", Kind: KindAlias, Text: "[ellipsis]"},
		{Code: "FF00", Kind: KindCommand, Text: "COLOR"},
	}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if g, ok := cm.Grapheme(0x0001); !ok || g != "A" {
		t.Errorf("Grapheme(0x0001) = %q, %v", g, ok)
	}
	if c, ok := cm.Code("A"); !ok || c != 0x0001 {
		t.Errorf("Code(A) = 0x%04X, %v", c, ok)
	}
	if c, ok := cm.Code("[ellipsis]"); !ok || c != 0x0004 {
		t.Errorf("Code([ellipsis]) = 0x%04X, %v", c, ok)
	}
	// Aliases never win the decode direction.
	if g, _ := cm.Grapheme(0x0004); g != "…" {
		t.Errorf("Grapheme(0x0004) = %q, want the canonical grapheme", g)
	}
	if n, ok := cm.CommandName(0xFF00); !ok || n != "COLOR" {
		t.Errorf("CommandName(0xFF00) = %q, %v", n, ok)
	}
	if c, ok := cm.CommandCode("COLOR"); !ok || c != 0xFF00 {
		t.Errorf("CommandCode(COLOR) = 0x%04X, %v", c, ok)
	}
	if cm.Len() != 2 {
		t.Errorf("Len = %d, want 2", cm.Len())
	}
}

// TestCompileDuplicates: the first declaration always wins, in both
// directions, so encode output is stable however the map file is ordered.
func TestCompileDuplicates(t *testing.T) {
	cm, err := Compile([]Entry{
		{Code: "0001", Kind: KindChar, Text: "A"},
		{Code: "0001", Kind: KindChar, Text: "a"},    // duplicate code
		{Code: "0002", Kind: KindChar, Text: "A"},    // duplicate grapheme
		{Code: "0003", Kind: KindAlias, Text: "A"},   // alias shadowed by grapheme
		{Code: "FF00", Kind: KindCommand, Text: "X"},
		{Code: "FF00", Kind: KindCommand, Text: "Y"}, // duplicate command code
	}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if g, _ := cm.Grapheme(0x0001); g != "A" {
		t.Errorf("Grapheme(0x0001) = %q, want A", g)
	}
	if c, _ := cm.Code("A"); c != 0x0001 {
		t.Errorf("Code(A) = 0x%04X, want 0x0001", c)
	}
	if n, _ := cm.CommandName(0xFF00); n != "X" {
		t.Errorf("CommandName(0xFF00) = %q, want X", n)
	}
	// The dropped duplicate still claimed nothing.
	if _, ok := cm.CommandCode("Y"); ok {
		t.Error("CommandCode(Y) resolved for a dropped duplicate")
	}
}

func TestCompileRejects(t *testing.T) {
	if _, err := Compile([]Entry{{Code: "xyz", Kind: KindChar, Text: "A"}}, nil); err == nil {
		t.Error("Compile accepted a non-hex code")
	}
	if _, err := Compile([]Entry{{Code: "10001", Kind: KindChar, Text: "A"}}, nil); err == nil {
		t.Error("Compile accepted a code wider than 16 bits")
	}
	if _, err := Compile([]Entry{{Code: "0001", Kind: "glyph", Text: "A"}}, nil); err == nil {
		t.Error("Compile accepted an unknown kind")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charmap.json")

	doc := `{
  "header": {"description": "test map", "version": "1"},
  "entries": [
    {"code": "0001", "kind": "char", "text": "A"},
    {"code": "FF00", "kind": "command", "text": "COLOR"}
  ]
}`
	// Windows tools often save the map with a BOM.
	if err := os.WriteFile(path, append([]byte("\uFEFF"), doc...), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cm, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c, ok := cm.Code("A"); !ok || c != 0x0001 {
		t.Errorf("Code(A) = 0x%04X, %v", c, ok)
	}
	if _, ok := cm.CommandCode("COLOR"); !ok {
		t.Error("CommandCode(COLOR) missing after Load")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil); err == nil {
		t.Error("Load succeeded on a missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Error("Load succeeded on truncated JSON")
	}
}
