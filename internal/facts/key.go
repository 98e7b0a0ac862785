// Package facts emits structured fact records extracted from parsed source
// trees: declarations, enum value tables and record nesting relations. Facts
// are appended one JSON object per line to caller-configured output files and
// deduplicated for the lifetime of a Session, so repeated extraction of the
// same logical declaration (through multiple translation units, inclusion
// paths or parallel workers) produces exactly one output line.
package facts

import (
	"fmt"
	"strings"
)

// Location is a declaration's textual origin: the spelling file and 1-based
// line. Declarations with no backing file get a synthetic placeholder path.
type Location struct {
	File string
	Line uint32
}

// String renders the location as "<path>:<line>".
func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<built-in>"
	}
	return fmt.Sprintf("%s:%d", file, l.Line)
}

// makeKey builds the identity key for a fact. Two facts with equal keys are
// the same fact; only the first is emitted. Qualifier segments (e.g. the
// alias name of a typedef'd declaration) are appended verbatim, empty or not,
// so that key shape is stable per fact variant.
func makeKey(origin Location, name, target string, qualifiers ...string) string {
	parts := make([]string, 0, 3+len(qualifiers))
	parts = append(parts, origin.String(), name, target)
	parts = append(parts, qualifiers...)
	return strings.Join(parts, "+")
}
