package facts

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Indexer receives a copy of every emitted fact. Implemented by the SQLite
// fact store; nil disables mirroring.
type Indexer interface {
	IndexFact(kind, name, target string, payload []byte) error
}

// FactKind labels the variant of an emitted fact.
type FactKind string

const (
	// DeclarationFact is a named declaration with its literal source text.
	DeclarationFact FactKind = "declaration"
	// EnumFact is an enumerator-to-value table.
	EnumFact FactKind = "enum"
	// RelationFact maps a record name to the record names nested in its fields.
	RelationFact FactKind = "relation"
)

// Session owns the shared state of one extraction run: the set of already
// emitted fact keys and the mutex serializing claim-and-append sequences.
// One Session may be shared by any number of concurrent extraction workers;
// independent Sessions (e.g. one per test) do not interfere.
type Session struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	indexer Indexer
}

// NewSession creates an empty extraction session.
func NewSession() *Session {
	return &Session{
		seen: make(map[string]struct{}),
	}
}

// SetIndexer attaches an optional secondary sink that receives every fact
// emitted from this point on.
func (s *Session) SetIndexer(ix Indexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexer = ix
}

// tryClaim records a key and reports whether it was newly claimed. The
// registry only grows; there is no way to release a key. Callers must hold
// s.mu: the claim and the subsequent append have to be one atomic unit, or
// two workers racing on the same target file could interleave writes.
func (s *Session) tryClaim(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// emit serializes a fact, appends it to the target file and mirrors it to
// the indexer when one is attached. Callers must hold s.mu and have claimed
// the fact's key.
func (s *Session) emit(target string, kind FactKind, name string, fact any) error {
	payload, err := json.Marshal(fact)
	if err != nil {
		return fmt.Errorf("marshal %s fact %q: %w", kind, name, err)
	}
	if err := appendLine(target, payload); err != nil {
		return err
	}
	if s.indexer != nil {
		if err := s.indexer.IndexFact(string(kind), name, target, payload); err != nil {
			return fmt.Errorf("index %s fact %q: %w", kind, name, err)
		}
	}
	return nil
}
