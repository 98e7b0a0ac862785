package facts

import "github.com/hargabyte/cfx/internal/typesys"

// collectNested resolves a field type down through pointer, array and alias
// layers and accumulates the name of every record definition reachable from
// it, recursing through the fields of each record it reaches. The root record
// being reported is passed as omit: reaching it again through a reference
// cycle must not list it as nested inside itself.
//
// The traversal uses an explicit worklist so arbitrarily deep type graphs
// cannot grow the call stack, and a visited set keyed on record declaration
// identity so self-referential and mutually-referential records terminate.
// The visited check guards the descent into a record's fields, not just the
// insertion of its name. Alias chains carry their own per-chain guard: a
// typedef cycle stops the unwrap and contributes no name.
//
// Naming: a record reached through a typedef is recorded under the innermost
// alias name adjacent to it; pointer and array layers reset the pending alias
// because they name the wrapper, not the record. Records with no alias in
// scope fall back to their own tag, then to the typedef name linked to an
// anonymous definition. A record that cannot be named any of these ways is
// still traversed for its own nested fields but contributes no entry.
func collectNested(root *typesys.Type, omit *typesys.Record, nested map[string]struct{}, visited map[*typesys.Record]struct{}) {
	type frame struct {
		t     *typesys.Type
		alias string
	}

	work := []frame{{t: root}}
	for len(work) > 0 {
		f := work[len(work)-1]
		work = work[:len(work)-1]

		t, alias := f.t, f.alias
		var chain map[*typesys.Alias]struct{}
		for t != nil {
			switch t.Kind {
			case typesys.Pointer, typesys.Array:
				t, alias = t.Elem, ""

			case typesys.AliasType:
				a := t.Alias
				if a == nil {
					t = nil
					break
				}
				if chain == nil {
					chain = make(map[*typesys.Alias]struct{})
				}
				if _, ok := chain[a]; ok {
					t = nil
					break
				}
				chain[a] = struct{}{}
				alias = a.Name
				t = a.Underlying

			case typesys.RecordType:
				rec := t.Record
				t = nil
				if rec == nil {
					break
				}

				if rec != omit {
					name := alias
					if name == "" {
						name = rec.Tag
					}
					if name == "" {
						name = rec.AliasName
					}
					if name != "" {
						nested[name] = struct{}{}
					}
				}

				if _, ok := visited[rec]; !ok {
					visited[rec] = struct{}{}
					for _, field := range rec.Fields {
						work = append(work, frame{t: field.Type})
					}
				}

			default:
				// scalars, enums, function types: nothing nested
				t = nil
			}
		}
	}
}
