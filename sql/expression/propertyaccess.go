package expression

import "fmt"

// PropertyAccess is `alias.property` at the logical level, before the
// analyzer has decided which physical column (or CTE column) it resolves
// to. VariableResolver rewrites a PropertyAccess whose alias denotes a
// CteColumn into a Column; one whose alias denotes a SchemaEntity is
// expanded against the catalog during render-plan lowering.
type PropertyAccess struct {
	Alias    string
	Property string
}

func NewPropertyAccess(alias, property string) *PropertyAccess {
	return &PropertyAccess{Alias: alias, Property: property}
}

func (p *PropertyAccess) String() string {
	return fmt.Sprintf("%s.%s", p.Alias, p.Property)
}

func (p *PropertyAccess) Children() []Expression { return nil }

func (p *PropertyAccess) WithChildren(nc []Expression) (Expression, error) {
	return withNoChildren(p, nc)
}
