package facts

import "github.com/hargabyte/cfx/internal/typesys"

// EmitEnum appends one enum fact mapping the enum's name to its
// enumerator-to-value table. Values are carried as int64 so negative
// enumerators survive exactly. Unnamed enums cannot be keyed and are a
// defined no-op.
func (s *Session) EmitEnum(e *typesys.Enum, target string) error {
	if e == nil || e.Name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	origin := Location{File: e.File, Line: e.Line}
	if !s.tryClaim(makeKey(origin, e.Name, target)) {
		return nil
	}

	values := make(map[string]int64, len(e.Values))
	for _, v := range e.Values {
		values[v.Name] = v.Value
	}

	return s.emit(target, EnumFact, e.Name, map[string]map[string]int64{e.Name: values})
}
