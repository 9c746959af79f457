package analyzer

// varEntry is one binding in a VariableScope: what alias resolves to and,
// for a CteColumn, the CTE/column pair it resolves through.
type varEntry struct {
	source VarSource
	cte    string
	column string
}

// VariableScope is the stack of lexical scopes from §3.6: a WITH barrier
// pushes a new scope installing every exported name as a CteColumn: lookup
// walks inner-to-outer, same shape as planbuilder's own scope but carrying
// VarSource instead of a bare label.
type VariableScope struct {
	parent *VariableScope
	vars   map[string]varEntry
}

func newVariableScope(parent *VariableScope) *VariableScope {
	return &VariableScope{parent: parent, vars: map[string]varEntry{}}
}

func (s *VariableScope) bindCteColumn(alias, cte, column string) {
	s.vars[alias] = varEntry{source: SourceCteColumn, cte: cte, column: column}
}

func (s *VariableScope) bindSchemaEntity(alias string) {
	s.vars[alias] = varEntry{source: SourceSchemaEntity}
}

func (s *VariableScope) lookup(alias string) (varEntry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.vars[alias]; ok {
			return e, true
		}
	}
	return varEntry{}, false
}
