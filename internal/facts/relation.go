package facts

import (
	"sort"

	"github.com/hargabyte/cfx/internal/typesys"
)

// EmitRelations appends one relation fact mapping the record's name to the
// lexicographically sorted set of record names reachable through its fields.
// explicitName overrides the record's own naming (used when a record is
// reported under a typedef name); if no name resolves at all the call is a
// no-op. A record with no nested records still yields a fact with an empty
// list.
func (s *Session) EmitRelations(rec *typesys.Record, target string, explicitName string) error {
	if rec == nil {
		return nil
	}

	name := explicitName
	if name == "" {
		name = rec.Tag
	}
	if name == "" {
		name = rec.AliasName
	}
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	origin := Location{File: rec.File, Line: rec.Line}
	if !s.tryClaim(makeKey(origin, name, target)) {
		return nil
	}

	nested := make(map[string]struct{})
	// the root starts out visited so a self-referential field does not
	// re-expand the record being reported
	visited := map[*typesys.Record]struct{}{rec: {}}
	for _, field := range rec.Fields {
		collectNested(field.Type, rec, nested, visited)
	}

	names := make([]string, 0, len(nested))
	for n := range nested {
		names = append(names, n)
	}
	sort.Strings(names)

	return s.emit(target, RelationFact, name, map[string][]string{name: names})
}
