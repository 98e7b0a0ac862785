package facts

// Decl is the view of a named declaration the emitter consumes from the
// parse layer: its name, literal source text and origin. Source may be empty
// when the declaration's range could not be sliced; emission proceeds anyway.
type Decl struct {
	Name   string
	Source string
	Origin Location
}

// declRecord is the serialized form of a declaration fact.
type declRecord struct {
	Name     string  `json:"name"`
	Source   string  `json:"source"`
	Filename string  `json:"filename"`
	Alias    *string `json:"alias,omitempty"`
}

// EmitDeclaration appends one declaration fact. The alias name participates
// in the identity key, so the same underlying declaration reported under two
// typedef names yields two facts; the alias field is only serialized when
// isAlias is set.
func (s *Session) EmitDeclaration(d Decl, target string, isAlias bool, aliasName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tryClaim(makeKey(d.Origin, d.Name, target, aliasName)) {
		return nil
	}

	rec := declRecord{
		Name:     d.Name,
		Source:   d.Source,
		Filename: d.Origin.String(),
	}
	if isAlias {
		rec.Alias = &aliasName
	}

	return s.emit(target, DeclarationFact, d.Name, rec)
}
