// Package typesys builds a structural type model from parsed C/C++ trees.
//
// The model is deliberately small: a closed set of type shapes (pointer,
// array, alias, record, enum, scalar) plus declaration tables for records,
// type aliases and enums. It captures exactly what fact extraction needs,
// namely which record definitions a field type ultimately reaches, and
// nothing of the language's full semantics.
package typesys

// Kind discriminates the closed set of type shapes.
type Kind int

const (
	// Scalar is any type the walker does not inspect structurally:
	// primitive types, unresolved names, function types.
	Scalar Kind = iota
	// Pointer is a pointer type; Elem holds the pointee.
	Pointer
	// Array is an array type; Elem holds the element type.
	Array
	// AliasType is a typedef layer; Alias holds the declaration.
	AliasType
	// RecordType is a struct, union or class; Record holds the declaration.
	RecordType
	// EnumType is an enumeration; Enum holds the declaration.
	EnumType
)

// Type is one node of a structural type expression.
// Exactly one of Elem, Alias, Record, Enum is set, according to Kind.
type Type struct {
	Kind   Kind
	Elem   *Type   // pointee or element type
	Alias  *Alias  // typedef declaration
	Record *Record // record declaration
	Enum   *Enum   // enum declaration
	Name   string  // spelling, for Scalar types
}

// Field is one member of a record.
type Field struct {
	// Name is the member name; empty for anonymous members.
	Name string
	// Type is the member's declared type.
	Type *Type
}

// Record is a struct, union or class declaration. A Record created from a
// forward reference has Defined false until (unless) its definition is seen;
// all references to one tag share a single Record, which is the identity the
// relation walker's visited set is keyed on.
type Record struct {
	// Tag is the declared name; empty for anonymous records.
	Tag string
	// AliasName is the typedef name linked to an anonymous definition,
	// e.g. "Point" in `typedef struct { ... } Point;`.
	AliasName string
	// Fields are the members of the definition, in declaration order.
	Fields []Field
	// Defined reports whether a definition (not just a reference) was seen.
	Defined bool
	// File and Line locate the definition's begin position.
	File string
	Line uint32
	// Source is the literal text of the definition, empty when the
	// source range could not be sliced.
	Source string
}

// Alias is a typedef declaration.
type Alias struct {
	// Name is the typedef name.
	Name string
	// Underlying is the aliased type.
	Underlying *Type
	// File and Line locate the declaration's begin position.
	File string
	Line uint32
	// Source is the literal text of the declaration.
	Source string
}

// EnumValue is one enumerator with its resolved signed value.
type EnumValue struct {
	Name  string
	Value int64
}

// Enum is an enumeration declaration.
type Enum struct {
	// Name is the enum tag; empty for anonymous enums.
	Name string
	// Values are the enumerators in declaration order.
	Values []EnumValue
	// File and Line locate the definition's begin position.
	File string
	Line uint32
	// Source is the literal text of the definition.
	Source string
}
