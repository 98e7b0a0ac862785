package store

import (
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIndexAndQuery(t *testing.T) {
	s := openTestStore(t)

	inserts := []struct {
		kind, name, payload string
	}{
		{"relation", "rect", `{"rect":["point"]}`},
		{"relation", "point", `{"point":[]}`},
		{"enum", "align", `{"align":{"LEFT":-1}}`},
		{"declaration", "rect", `{"name":"rect","source":"","filename":"geom.h:3"}`},
	}
	for _, in := range inserts {
		if err := s.IndexFact(in.kind, in.name, "out.jsonl", []byte(in.payload)); err != nil {
			t.Fatalf("IndexFact(%s/%s) failed: %v", in.kind, in.name, err)
		}
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 4 {
		t.Errorf("count = %d, want 4", n)
	}

	relations, err := s.Query("relation", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(relations) != 2 {
		t.Fatalf("relation query: %d rows, want 2", len(relations))
	}
	if relations[0].Name != "rect" || relations[0].Payload != `{"rect":["point"]}` {
		t.Errorf("first relation = %+v", relations[0])
	}

	byName, err := s.Query("", "rect")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(byName) != 2 {
		t.Errorf("name query: %d rows, want 2 (relation + declaration)", len(byName))
	}

	both, err := s.Query("declaration", "rect")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(both) != 1 || both[0].Kind != "declaration" {
		t.Errorf("kind+name query = %+v", both)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)

	if err := s.IndexFact("enum", "e", "out.jsonl", []byte(`{"e":{}}`)); err != nil {
		t.Fatalf("IndexFact failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("count after clear = %d", n)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/.cfx"
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()
	if s.Path() == "" {
		t.Error("empty db path")
	}
}
