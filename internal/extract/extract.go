// Package extract drives fact emission over parsed C/C++ trees: it locates
// record, typedef, enum and function declarations in a parse result and
// invokes the fact emitters for each.
package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cfx/internal/facts"
	"github.com/hargabyte/cfx/internal/parser"
	"github.com/hargabyte/cfx/internal/typesys"
)

// Targets holds the output file paths for the three fact variants. The same
// path may be used for more than one variant; facts are simply interleaved.
type Targets struct {
	Declarations string
	Enums        string
	Relations    string
}

// Extractor emits facts for one parsed file against a shared session.
type Extractor struct {
	result  *parser.ParseResult
	index   *typesys.Index
	session *facts.Session
	targets Targets
}

// NewExtractor creates an extractor for one parse result. The index must
// have been built over (at least) this result.
func NewExtractor(result *parser.ParseResult, index *typesys.Index, session *facts.Session, targets Targets) *Extractor {
	return &Extractor{
		result:  result,
		index:   index,
		session: session,
		targets: targets,
	}
}

// Run emits all facts discoverable in this file.
func (e *Extractor) Run() error {
	if err := e.emitRecords(); err != nil {
		return err
	}
	if err := e.emitAliases(); err != nil {
		return err
	}
	if err := e.emitEnums(); err != nil {
		return err
	}
	return e.emitFunctions()
}

// emitRecords emits a declaration fact and a relation fact for every record
// defined in this file. Records nameable only through a typedef are reported
// under that name; fully anonymous records are skipped.
func (e *Extractor) emitRecords() error {
	for _, rec := range e.index.Records() {
		if !rec.Defined || rec.File != e.result.FilePath {
			continue
		}
		name := rec.Tag
		if name == "" {
			name = rec.AliasName
		}
		if name == "" {
			continue
		}

		d := facts.Decl{
			Name:   name,
			Source: rec.Source,
			Origin: facts.Location{File: rec.File, Line: rec.Line},
		}
		if err := e.session.EmitDeclaration(d, e.targets.Declarations, false, ""); err != nil {
			return err
		}
		if err := e.session.EmitRelations(rec, e.targets.Relations, ""); err != nil {
			return err
		}
	}
	return nil
}

// emitAliases emits a declaration fact for every typedef in this file, and a
// relation fact under the typedef name when the alias (possibly through
// further alias layers) names a record.
func (e *Extractor) emitAliases() error {
	for _, a := range e.index.Aliases() {
		if a.File != e.result.FilePath {
			continue
		}

		d := facts.Decl{
			Name:   a.Name,
			Source: a.Source,
			Origin: facts.Location{File: a.File, Line: a.Line},
		}
		if err := e.session.EmitDeclaration(d, e.targets.Declarations, true, a.Name); err != nil {
			return err
		}

		if rec, name := resolveAliasRecord(a); rec != nil {
			if err := e.session.EmitRelations(rec, e.targets.Relations, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitEnums emits an enum fact and a declaration fact for every named enum
// defined in this file.
func (e *Extractor) emitEnums() error {
	for _, en := range e.index.Enums() {
		if en.File != e.result.FilePath || en.Name == "" {
			continue
		}

		if err := e.session.EmitEnum(en, e.targets.Enums); err != nil {
			return err
		}

		d := facts.Decl{
			Name:   en.Name,
			Source: en.Source,
			Origin: facts.Location{File: en.File, Line: en.Line},
		}
		if err := e.session.EmitDeclaration(d, e.targets.Declarations, false, ""); err != nil {
			return err
		}
	}
	return nil
}

// emitFunctions emits declaration facts for function definitions and
// top-level function prototypes.
func (e *Extractor) emitFunctions() error {
	for _, node := range e.result.FindNodesByType("function_definition") {
		if err := e.emitFunctionDecl(node); err != nil {
			return err
		}
	}

	for _, node := range e.result.FindNodesByType("declaration") {
		if !atFileScope(node) {
			continue
		}
		if !hasFunctionDeclarator(node.ChildByFieldName("declarator")) {
			continue
		}
		if err := e.emitFunctionDecl(node); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) emitFunctionDecl(node *sitter.Node) error {
	name := firstIdentifier(node.ChildByFieldName("declarator"), e.result)
	if name == "" {
		return nil
	}
	d := facts.Decl{
		Name:   name,
		Source: e.result.NodeText(node),
		Origin: facts.Location{File: e.result.FilePath, Line: parser.StartLine(node)},
	}
	return e.session.EmitDeclaration(d, e.targets.Declarations, false, "")
}

// resolveAliasRecord follows alias layers (and only alias layers) from a
// typedef to a record, returning the record and the innermost alias name
// adjacent to it. Pointer or array indirection breaks the naming link: a
// typedef of pointer-to-record names the pointer, not the record. A typedef
// cycle resolves to no record.
func resolveAliasRecord(a *typesys.Alias) (*typesys.Record, string) {
	name := a.Name
	t := a.Underlying
	seen := map[*typesys.Alias]struct{}{a: {}}
	for t != nil {
		switch t.Kind {
		case typesys.AliasType:
			if t.Alias == nil {
				return nil, ""
			}
			if _, ok := seen[t.Alias]; ok {
				return nil, ""
			}
			seen[t.Alias] = struct{}{}
			name = t.Alias.Name
			t = t.Alias.Underlying
		case typesys.RecordType:
			return t.Record, name
		default:
			return nil, ""
		}
	}
	return nil, ""
}

// atFileScope reports whether a declaration sits at file scope, looking
// through preprocessor conditionals, linkage blocks and namespaces. Headers
// normally wrap their prototypes in an include guard or extern "C" block;
// declarations inside function bodies or records are rejected.
func atFileScope(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "translation_unit":
			return true
		case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif",
			"linkage_specification", "declaration_list", "namespace_definition":
		default:
			return false
		}
	}
	return false
}

// hasFunctionDeclarator reports whether a declarator chain contains a
// function declarator before reaching the declared identifier.
func hasFunctionDeclarator(node *sitter.Node) bool {
	for node != nil {
		switch node.Type() {
		case "function_declarator":
			return true
		case "pointer_declarator", "array_declarator", "parenthesized_declarator", "init_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return false
		}
	}
	return false
}

// firstIdentifier finds the declared identifier inside a declarator subtree.
func firstIdentifier(node *sitter.Node, result *parser.ParseResult) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier", "field_identifier", "qualified_identifier", "destructor_name", "operator_name":
		return result.NodeText(node)
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if name := firstIdentifier(node.Child(int(i)), result); name != "" {
			return name
		}
	}
	return ""
}
