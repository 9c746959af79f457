package planbuilder

import "github.com/brahmand-sql/cyphersql/cyphererr"

// varKind distinguishes what an alias was bound to, enough for the
// AliasConflict check; the analyzer's VariableResolver later refines this
// into a full VarSource (CteColumn/SchemaEntity/Parameter) per §3.6.
type varKind int

const (
	varNode varKind = iota
	varRel
	varPath
	varOther // UNWIND alias, WITH/RETURN projection alias, CALL YIELD column
)

type binding struct {
	kind  varKind
	label string // node label or relationship type; "" if untyped or not applicable
}

// scope is the alias-binding environment threaded through one clause
// sequence, grounded on the teacher's planbuilder `scope` type
// (sql/planbuilder/from.go in the pool): a thin map pushed/replaced at
// each WITH barrier rather than a general symbol table.
type scope struct {
	parent *scope
	vars   map[string]binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: map[string]binding{}}
}

// bind registers alias with kind/label. Rebinding the same alias with the
// same label (a pattern reusing a previously-bound variable) is fine; a
// conflicting label is AliasConflict.
func (s *scope) bind(alias string, kind varKind, label string) error {
	if alias == "" {
		return nil
	}
	existing, ok := s.vars[alias]
	if !ok {
		s.vars[alias] = binding{kind: kind, label: label}
		return nil
	}
	if existing.label != "" && label != "" && existing.label != label {
		return cyphererr.ErrAliasConflict.New(alias)
	}
	if existing.label == "" && label != "" {
		s.vars[alias] = binding{kind: kind, label: label}
	}
	return nil
}

func (s *scope) lookup(alias string) (binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[alias]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// names returns every alias visible from s, innermost scope first.
func (s *scope) names() []string {
	var out []string
	for cur := s; cur != nil; cur = cur.parent {
		for n := range cur.vars {
			out = append(out, n)
		}
	}
	return out
}
