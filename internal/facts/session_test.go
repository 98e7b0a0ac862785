package facts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hargabyte/cfx/internal/typesys"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestEmitDeclarationIdempotent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "decls.jsonl")
	s := NewSession()

	d := Decl{
		Name:   "parse_header",
		Source: "int parse_header(buf_t *buf);",
		Origin: Location{File: "/src/proto.h", Line: 42},
	}
	for i := 0; i < 3; i++ {
		if err := s.EmitDeclaration(d, target, false, ""); err != nil {
			t.Fatalf("EmitDeclaration failed: %v", err)
		}
	}

	lines := readLines(t, target)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line after repeated emission, got %d", len(lines))
	}

	var fact map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &fact); err != nil {
		t.Fatalf("bad fact line: %v", err)
	}
	if fact["name"] != "parse_header" {
		t.Errorf("name = %v", fact["name"])
	}
	if fact["filename"] != "/src/proto.h:42" {
		t.Errorf("filename = %v", fact["filename"])
	}
	if _, ok := fact["alias"]; ok {
		t.Error("alias field present on non-alias declaration")
	}
}

func TestAliasQualifierDistinguishesFacts(t *testing.T) {
	// The same underlying declaration reported under two typedef names is
	// two facts; the alias name is part of the identity key.
	target := filepath.Join(t.TempDir(), "decls.jsonl")
	s := NewSession()

	d := Decl{
		Name:   "point",
		Source: "struct point { int x, y; };",
		Origin: Location{File: "geom.h", Line: 3},
	}
	if err := s.EmitDeclaration(d, target, true, "Point"); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}
	if err := s.EmitDeclaration(d, target, true, "Vec2"); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}
	if err := s.EmitDeclaration(d, target, true, "Point"); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}

	lines := readLines(t, target)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for 2 distinct aliases, got %d", len(lines))
	}

	var fact struct {
		Alias string `json:"alias"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &fact); err != nil {
		t.Fatalf("bad fact line: %v", err)
	}
	if fact.Alias != "Point" {
		t.Errorf("alias = %q, want Point", fact.Alias)
	}
}

func TestSeparateTargetsAreSeparateFacts(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.jsonl")
	second := filepath.Join(dir, "b.jsonl")
	s := NewSession()

	d := Decl{Name: "f", Origin: Location{File: "f.h", Line: 1}}
	if err := s.EmitDeclaration(d, first, false, ""); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}
	if err := s.EmitDeclaration(d, second, false, ""); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}

	if got := len(readLines(t, first)); got != 1 {
		t.Errorf("first target: %d lines", got)
	}
	if got := len(readLines(t, second)); got != 1 {
		t.Errorf("second target: %d lines", got)
	}
}

func TestSyntheticLocationForMissingFile(t *testing.T) {
	loc := Location{Line: 7}
	if got := loc.String(); got != "<built-in>:7" {
		t.Errorf("synthetic location = %q", got)
	}
}

func TestEmptySourceStillEmitted(t *testing.T) {
	// An unsliceable source range degrades to an empty source field.
	target := filepath.Join(t.TempDir(), "decls.jsonl")
	s := NewSession()

	d := Decl{Name: "mystery", Origin: Location{File: "gen.h", Line: 1}}
	if err := s.EmitDeclaration(d, target, false, ""); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}

	var fact struct {
		Source *string `json:"source"`
	}
	if err := json.Unmarshal([]byte(readLines(t, target)[0]), &fact); err != nil {
		t.Fatalf("bad fact line: %v", err)
	}
	if fact.Source == nil || *fact.Source != "" {
		t.Errorf("expected empty source field, got %v", fact.Source)
	}
}

func TestEnumSignPreserved(t *testing.T) {
	target := filepath.Join(t.TempDir(), "enums.jsonl")
	s := NewSession()

	e := &typesys.Enum{
		Name: "status",
		File: "status.h",
		Line: 1,
		Values: []typesys.EnumValue{
			{Name: "STATUS_ERROR", Value: -1},
			{Name: "STATUS_OK", Value: 0},
		},
	}
	if err := s.EmitEnum(e, target); err != nil {
		t.Fatalf("EmitEnum failed: %v", err)
	}

	var fact map[string]map[string]int64
	if err := json.Unmarshal([]byte(readLines(t, target)[0]), &fact); err != nil {
		t.Fatalf("bad fact line: %v", err)
	}
	values, ok := fact["status"]
	if !ok {
		t.Fatal("enum fact missing status key")
	}
	if values["STATUS_ERROR"] != -1 {
		t.Errorf("STATUS_ERROR = %d, want -1", values["STATUS_ERROR"])
	}
	if values["STATUS_OK"] != 0 {
		t.Errorf("STATUS_OK = %d, want 0", values["STATUS_OK"])
	}
}

func TestUnnamedEnumIsNoOp(t *testing.T) {
	target := filepath.Join(t.TempDir(), "enums.jsonl")
	s := NewSession()

	e := &typesys.Enum{Values: []typesys.EnumValue{{Name: "ANON", Value: 1}}}
	if err := s.EmitEnum(e, target); err != nil {
		t.Fatalf("EmitEnum failed: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("expected no output for unnamed enum, stat err = %v", err)
	}
}

func TestConcurrentEmittersExactlyOnce(t *testing.T) {
	// N workers race over an overlapping fact set targeting one file: the
	// output must contain exactly the unique facts, one intact line each.
	target := filepath.Join(t.TempDir(), "decls.jsonl")
	s := NewSession()

	const workers = 8
	const declsPerWorker = 200

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < declsPerWorker; i++ {
				d := Decl{
					Name:   fmt.Sprintf("decl_%03d", i),
					Source: fmt.Sprintf("int decl_%03d(void);", i),
					Origin: Location{File: "shared.h", Line: uint32(i + 1)},
				}
				if err := s.EmitDeclaration(d, target, false, ""); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent emission failed: %v", err)
	}

	lines := readLines(t, target)
	if len(lines) != declsPerWorker {
		t.Fatalf("expected %d unique facts, got %d lines", declsPerWorker, len(lines))
	}

	names := make(map[string]bool)
	for _, line := range lines {
		var fact struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(line), &fact); err != nil {
			t.Fatalf("corrupt line %q: %v", line, err)
		}
		if names[fact.Name] {
			t.Fatalf("duplicate fact for %s", fact.Name)
		}
		names[fact.Name] = true
	}
}

func TestIndexerReceivesEmittedFacts(t *testing.T) {
	target := filepath.Join(t.TempDir(), "decls.jsonl")
	s := NewSession()

	var mu sync.Mutex
	var kinds []string
	s.SetIndexer(indexerFunc(func(kind, name, tgt string, payload []byte) error {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, kind)
		return nil
	}))

	d := Decl{Name: "f", Origin: Location{File: "f.h", Line: 1}}
	if err := s.EmitDeclaration(d, target, false, ""); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}
	// duplicate: must not reach the indexer
	if err := s.EmitDeclaration(d, target, false, ""); err != nil {
		t.Fatalf("EmitDeclaration failed: %v", err)
	}

	if len(kinds) != 1 || kinds[0] != string(DeclarationFact) {
		t.Errorf("indexer calls = %v", kinds)
	}
}

type indexerFunc func(kind, name, target string, payload []byte) error

func (f indexerFunc) IndexFact(kind, name, target string, payload []byte) error {
	return f(kind, name, target, payload)
}
