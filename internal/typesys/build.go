package typesys

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cfx/internal/parser"
)

// Build scans one or more parse results and returns the linked declaration
// index. Scanning is two-pass: the first pass registers every record, typedef
// and enum definition so names resolve regardless of declaration order; the
// second pass resolves field types and typedef underlying types against the
// full table.
func Build(results ...*parser.ParseResult) *Index {
	b := &builder{
		ix:   newIndex(),
		anon: make(map[anonKey]*Record),
	}

	for _, r := range results {
		b.scan(r)
	}
	b.link()

	return b.ix
}

// anonKey identifies an anonymous record definition by position, since tag
// lookup cannot apply.
type anonKey struct {
	file  string
	start uint32
}

type pendingRecord struct {
	rec    *Record
	body   *sitter.Node
	result *parser.ParseResult
}

type pendingAlias struct {
	alias      *Alias
	spec       *sitter.Node
	declarator *sitter.Node
	result     *parser.ParseResult
}

type builder struct {
	ix   *Index
	anon map[anonKey]*Record

	pendingRecords []pendingRecord
	pendingAliases []pendingAlias
}

// scan is pass one: register declarations without resolving member types.
func (b *builder) scan(result *parser.ParseResult) {
	result.WalkNodes(func(node *sitter.Node) bool {
		switch node.Type() {
		case "struct_specifier", "union_specifier", "class_specifier":
			b.scanRecord(result, node)
		case "enum_specifier":
			b.scanEnum(result, node)
		case "type_definition":
			b.scanTypedef(result, node)
		}
		return true
	})
}

// link is pass two: resolve record fields and typedef underlying types.
func (b *builder) link() {
	for _, p := range b.pendingRecords {
		p.rec.Fields = b.parseFields(p.result, p.body)
	}
	for _, p := range b.pendingAliases {
		base := b.resolveSpecifier(p.result, p.spec)
		t, _ := b.wrapDeclarator(base, p.declarator, p.result)
		p.alias.Underlying = t
	}
}

// scanRecord registers a struct/union/class definition. References without a
// body are left to lazy tag resolution. On redefinition of a tag the first
// definition wins.
func (b *builder) scanRecord(result *parser.ParseResult, node *sitter.Node) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}

	rec := b.recordForNode(result, node)
	if rec.Defined {
		return
	}
	rec.Defined = true
	rec.File = result.FilePath
	rec.Line = parser.StartLine(node)
	rec.Source = result.NodeText(node)
	b.pendingRecords = append(b.pendingRecords, pendingRecord{rec: rec, body: body, result: result})
}

// scanEnum registers an enum definition and resolves enumerator values
// immediately; enumerators may only reference earlier enumerators of the
// same enum, so no second pass is needed.
func (b *builder) scanEnum(result *parser.ParseResult, node *sitter.Node) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}

	name := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = result.NodeText(nameNode)
	}
	if name != "" {
		if _, ok := b.ix.enumsByName[name]; ok {
			return
		}
	}

	e := &Enum{
		Name:   name,
		File:   result.FilePath,
		Line:   parser.StartLine(node),
		Source: result.NodeText(node),
	}

	var next int64
	seen := make(map[string]int64)
	for i := uint32(0); i < body.ChildCount(); i++ {
		child := body.Child(int(i))
		if child.Type() != "enumerator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		value := next
		if valNode := child.ChildByFieldName("value"); valNode != nil {
			if v, ok := b.parseEnumExpr(result, valNode, seen); ok {
				value = v
			}
		}
		enumName := result.NodeText(nameNode)
		seen[enumName] = value
		e.Values = append(e.Values, EnumValue{Name: enumName, Value: value})
		next = value + 1
	}

	if name != "" {
		b.ix.enumsByName[name] = e
	}
	b.ix.enums = append(b.ix.enums, e)
}

// scanTypedef registers the alias names of a type_definition. The underlying
// type is resolved in the link pass; an anonymous record defined inline gets
// the first alias name linked as its nameable fallback.
func (b *builder) scanTypedef(result *parser.ParseResult, node *sitter.Node) {
	spec := node.ChildByFieldName("type")
	if spec == nil {
		return
	}

	var anonRec *Record
	switch spec.Type() {
	case "struct_specifier", "union_specifier", "class_specifier":
		if spec.ChildByFieldName("name") == nil && spec.ChildByFieldName("body") != nil {
			anonRec = b.recordForNode(result, spec)
		}
	}

	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child.Equal(spec) {
			continue
		}
		switch child.Type() {
		case "type_identifier", "pointer_declarator", "array_declarator", "function_declarator", "parenthesized_declarator":
		default:
			continue
		}

		name := declaratorName(child, result)
		if name == "" {
			continue
		}
		if _, ok := b.ix.aliasesByName[name]; ok {
			continue
		}

		a := &Alias{
			Name:   name,
			File:   result.FilePath,
			Line:   parser.StartLine(node),
			Source: result.NodeText(node),
		}
		b.ix.aliasesByName[name] = a
		b.ix.aliases = append(b.ix.aliases, a)
		b.pendingAliases = append(b.pendingAliases, pendingAlias{
			alias:      a,
			spec:       spec,
			declarator: child,
			result:     result,
		})

		if anonRec != nil && anonRec.AliasName == "" {
			anonRec.AliasName = name
		}
	}
}

// recordForNode returns the shared Record for a specifier node, keyed by tag
// when named and by definition position when anonymous.
func (b *builder) recordForNode(result *parser.ParseResult, node *sitter.Node) *Record {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return b.ix.recordForTag(result.NodeText(nameNode))
	}
	key := anonKey{file: result.FilePath, start: node.StartByte()}
	if rec, ok := b.anon[key]; ok {
		return rec
	}
	rec := b.ix.recordForTag("")
	b.anon[key] = rec
	return rec
}

// parseFields resolves the members of a field_declaration_list.
func (b *builder) parseFields(result *parser.ParseResult, body *sitter.Node) []Field {
	var fields []Field

	for i := uint32(0); i < body.ChildCount(); i++ {
		decl := body.Child(int(i))
		if decl.Type() != "field_declaration" {
			continue
		}
		spec := decl.ChildByFieldName("type")
		if spec == nil {
			continue
		}
		base := b.resolveSpecifier(result, spec)

		found := false
		for j := uint32(0); j < decl.ChildCount(); j++ {
			child := decl.Child(int(j))
			if child.Equal(spec) {
				continue
			}
			switch child.Type() {
			case "field_identifier", "pointer_declarator", "array_declarator", "function_declarator", "parenthesized_declarator":
			default:
				continue
			}
			t, name := b.wrapDeclarator(base, child, result)
			fields = append(fields, Field{Name: name, Type: t})
			found = true
		}

		// anonymous member, e.g. `struct { int x; };`
		if !found {
			fields = append(fields, Field{Type: base})
		}
	}

	return fields
}

// resolveSpecifier resolves a type specifier node to a structural type.
func (b *builder) resolveSpecifier(result *parser.ParseResult, node *sitter.Node) *Type {
	switch node.Type() {
	case "struct_specifier", "union_specifier", "class_specifier":
		if node.ChildByFieldName("body") != nil || node.ChildByFieldName("name") != nil {
			return &Type{Kind: RecordType, Record: b.recordForNode(result, node)}
		}
		return &Type{Kind: Scalar, Name: result.NodeText(node)}

	case "enum_specifier":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			if e := b.ix.enumsByName[result.NodeText(nameNode)]; e != nil {
				return &Type{Kind: EnumType, Enum: e}
			}
		}
		return &Type{Kind: Scalar, Name: result.NodeText(node)}

	case "type_identifier":
		return b.ix.resolveName(result.NodeText(node))

	case "qualified_identifier":
		// C++ qualified name: try the full spelling, then the last segment.
		text := result.NodeText(node)
		t := b.ix.resolveName(text)
		if t.Kind == Scalar {
			if idx := strings.LastIndex(text, "::"); idx >= 0 {
				return b.ix.resolveName(text[idx+2:])
			}
		}
		return t

	default:
		return &Type{Kind: Scalar, Name: result.NodeText(node)}
	}
}

// wrapDeclarator applies a declarator's pointer/array layers around a base
// type and extracts the declared name. Function declarators collapse to an
// uninspected scalar: a function type's return and parameter records are not
// part of the containing record's field reachability.
func (b *builder) wrapDeclarator(base *Type, node *sitter.Node, result *parser.ParseResult) (*Type, string) {
	if node == nil {
		return base, ""
	}

	switch node.Type() {
	case "field_identifier", "identifier", "type_identifier":
		return base, result.NodeText(node)

	case "pointer_declarator":
		t, name := b.wrapDeclarator(base, node.ChildByFieldName("declarator"), result)
		return &Type{Kind: Pointer, Elem: t}, name

	case "array_declarator":
		t, name := b.wrapDeclarator(base, node.ChildByFieldName("declarator"), result)
		return &Type{Kind: Array, Elem: t}, name

	case "function_declarator":
		return &Type{Kind: Scalar, Name: "function"}, declaratorName(node, result)

	case "parenthesized_declarator":
		for i := uint32(0); i < node.NamedChildCount(); i++ {
			return b.wrapDeclarator(base, node.NamedChild(int(i)), result)
		}
		return base, ""

	default:
		return base, declaratorName(node, result)
	}
}

// parseEnumExpr resolves an enumerator value expression. Supported forms are
// integer literals, character literals, negation, references to earlier
// enumerators of the same enum, parentheses and the common constant-folding
// operators. Anything else reports false and the caller falls back to
// previous+1.
func (b *builder) parseEnumExpr(result *parser.ParseResult, node *sitter.Node, seen map[string]int64) (int64, bool) {
	switch node.Type() {
	case "number_literal":
		text := strings.TrimRight(result.NodeText(node), "uUlL")
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return 0, false
		}
		return v, true

	case "char_literal":
		text := result.NodeText(node)
		if len(text) >= 3 && text[0] == '\'' && text[len(text)-1] == '\'' {
			body := text[1 : len(text)-1]
			if len(body) == 1 {
				return int64(body[0]), true
			}
			if body[0] == '\\' {
				return unescapeChar(body[1:])
			}
		}
		return 0, false

	case "identifier":
		v, ok := seen[result.NodeText(node)]
		return v, ok

	case "unary_expression":
		arg := node.ChildByFieldName("argument")
		op := node.ChildByFieldName("operator")
		if arg == nil || op == nil {
			return 0, false
		}
		v, ok := b.parseEnumExpr(result, arg, seen)
		if !ok {
			return 0, false
		}
		switch result.NodeText(op) {
		case "-":
			return -v, true
		case "+":
			return v, true
		case "~":
			return ^v, true
		}
		return 0, false

	case "binary_expression":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		op := node.ChildByFieldName("operator")
		if left == nil || right == nil || op == nil {
			return 0, false
		}
		lv, lok := b.parseEnumExpr(result, left, seen)
		rv, rok := b.parseEnumExpr(result, right, seen)
		if !lok || !rok {
			return 0, false
		}
		switch result.NodeText(op) {
		case "+":
			return lv + rv, true
		case "-":
			return lv - rv, true
		case "*":
			return lv * rv, true
		case "/":
			if rv == 0 {
				return 0, false
			}
			return lv / rv, true
		case "%":
			if rv == 0 {
				return 0, false
			}
			return lv % rv, true
		case "|":
			return lv | rv, true
		case "&":
			return lv & rv, true
		case "^":
			return lv ^ rv, true
		case "<<":
			return lv << uint64(rv), true
		case ">>":
			return lv >> uint64(rv), true
		}
		return 0, false

	case "parenthesized_expression":
		if node.NamedChildCount() > 0 {
			return b.parseEnumExpr(result, node.NamedChild(0), seen)
		}
		return 0, false

	default:
		return 0, false
	}
}

// unescapeChar resolves the content of a character escape sequence (the text
// after the backslash): named escapes, hex and octal forms.
func unescapeChar(s string) (int64, bool) {
	if len(s) == 1 {
		switch s[0] {
		case 'n':
			return '\n', true
		case 't':
			return '\t', true
		case 'r':
			return '\r', true
		case '0':
			return 0, true
		case '\\':
			return '\\', true
		case '\'':
			return '\'', true
		case '"':
			return '"', true
		case 'a':
			return '\a', true
		case 'b':
			return '\b', true
		case 'f':
			return '\f', true
		case 'v':
			return '\v', true
		}
		return 0, false
	}
	if s[0] == 'x' {
		v, err := strconv.ParseInt(s[1:], 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseInt(s, 8, 64)
	return v, err == nil
}

// declaratorName finds the innermost declared identifier of a declarator.
func declaratorName(node *sitter.Node, result *parser.ParseResult) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "field_identifier", "identifier", "type_identifier":
		return result.NodeText(node)
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if name := declaratorName(node.Child(int(i)), result); name != "" {
			return name
		}
	}
	return ""
}
