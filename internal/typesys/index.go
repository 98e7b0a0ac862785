package typesys

// Index holds the declaration tables built from one or more parse results.
//
// Records are keyed by tag so that forward references, mutual recursion and
// repeated definitions across translation units all resolve to one Record.
// Tags live in a single namespace; two unrelated definitions reusing one tag
// in different scopes collapse onto the same entry, which callers
// disambiguate only by origin location.
type Index struct {
	recordsByTag  map[string]*Record
	aliasesByName map[string]*Alias
	enumsByName   map[string]*Enum

	// declaration order, for deterministic iteration
	records []*Record
	aliases []*Alias
	enums   []*Enum
}

func newIndex() *Index {
	return &Index{
		recordsByTag:  make(map[string]*Record),
		aliasesByName: make(map[string]*Alias),
		enumsByName:   make(map[string]*Enum),
	}
}

// Records returns every record declaration in first-seen order, including
// forward references that were never defined.
func (ix *Index) Records() []*Record {
	return ix.records
}

// Aliases returns every typedef declaration in first-seen order.
func (ix *Index) Aliases() []*Alias {
	return ix.aliases
}

// Enums returns every enum definition in first-seen order.
func (ix *Index) Enums() []*Enum {
	return ix.enums
}

// RecordByTag returns the record declared with the given tag, or nil.
func (ix *Index) RecordByTag(tag string) *Record {
	return ix.recordsByTag[tag]
}

// AliasByName returns the typedef with the given name, or nil.
func (ix *Index) AliasByName(name string) *Alias {
	return ix.aliasesByName[name]
}

// EnumByName returns the enum with the given name, or nil.
func (ix *Index) EnumByName(name string) *Enum {
	return ix.enumsByName[name]
}

// recordForTag returns the Record for a tag, creating a forward-reference
// placeholder on first sight. Anonymous records (empty tag) are never shared.
func (ix *Index) recordForTag(tag string) *Record {
	if tag == "" {
		rec := &Record{}
		ix.records = append(ix.records, rec)
		return rec
	}
	if rec, ok := ix.recordsByTag[tag]; ok {
		return rec
	}
	rec := &Record{Tag: tag}
	ix.recordsByTag[tag] = rec
	ix.records = append(ix.records, rec)
	return rec
}

// resolveName resolves a bare type name to its declaration. Typedef names
// shadow record tags, which matches how a bare identifier is read in C;
// unknown names fall back to an uninspected scalar.
func (ix *Index) resolveName(name string) *Type {
	if a, ok := ix.aliasesByName[name]; ok {
		return &Type{Kind: AliasType, Alias: a}
	}
	if r, ok := ix.recordsByTag[name]; ok {
		return &Type{Kind: RecordType, Record: r}
	}
	if e, ok := ix.enumsByName[name]; ok {
		return &Type{Kind: EnumType, Enum: e}
	}
	return &Type{Kind: Scalar, Name: name}
}
