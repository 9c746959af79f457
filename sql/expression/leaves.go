package expression

import "fmt"

// Star is the `*` in `RETURN *`.
type Star struct{}

func NewStar() *Star                  { return &Star{} }
func (s *Star) String() string        { return "*" }
func (s *Star) Children() []Expression { return nil }
func (s *Star) WithChildren(c []Expression) (Expression, error) {
	return withNoChildren(s, c)
}

// TableAlias is a bare variable reference occurring in an expression
// position (e.g. the `u` in `RETURN u`), before VariableResolver has
// decided whether it denotes a CTE column or a schema entity.
type TableAlias struct {
	Name string
}

func NewTableAlias(name string) *TableAlias { return &TableAlias{Name: name} }
func (t *TableAlias) String() string        { return t.Name }
func (t *TableAlias) Children() []Expression { return nil }
func (t *TableAlias) WithChildren(c []Expression) (Expression, error) {
	return withNoChildren(t, c)
}

// ColumnAlias is a reference to an alias introduced earlier in the same
// projection list (`RETURN p.age AS a ORDER BY a`), distinct from a plain
// TableAlias because it never resolves against the catalog or a CTE
// column set, only against sibling projection items.
type ColumnAlias struct {
	Name string
}

func NewColumnAlias(name string) *ColumnAlias { return &ColumnAlias{Name: name} }
func (c *ColumnAlias) String() string         { return c.Name }
func (c *ColumnAlias) Children() []Expression { return nil }
func (c *ColumnAlias) WithChildren(nc []Expression) (Expression, error) {
	return withNoChildren(c, nc)
}

// Column is a fully-resolved physical column reference: Table is a render-
// time table/CTE alias, Name is the actual column name. PropertyAccess
// lowers to Column once the analyzer has resolved a property name against
// the catalog or a CTE's column list.
type Column struct {
	Table string
	Name  string
}

func NewColumn(table, name string) *Column { return &Column{Table: table, Name: name} }
func (c *Column) String() string {
	if c.Table == "" {
		return c.Name
	}
	return fmt.Sprintf("%s.%s", c.Table, c.Name)
}
func (c *Column) Children() []Expression { return nil }
func (c *Column) WithChildren(nc []Expression) (Expression, error) {
	return withNoChildren(c, nc)
}

// Parameter is a bind parameter reference, `$name`.
type Parameter struct {
	Name string
}

func NewParameter(name string) *Parameter { return &Parameter{Name: name} }
func (p *Parameter) String() string       { return "$" + p.Name }
func (p *Parameter) Children() []Expression { return nil }
func (p *Parameter) WithChildren(nc []Expression) (Expression, error) {
	return withNoChildren(p, nc)
}

// Raw is an escape hatch carrying opaque, already-rendered target SQL
// text, used for pre-rendered CTEs and rare unrepresentable fragments that
// a caller has pre-validated.
type Raw struct {
	SQL string
}

func NewRaw(sql string) *Raw          { return &Raw{SQL: sql} }
func (r *Raw) String() string         { return r.SQL }
func (r *Raw) Children() []Expression { return nil }
func (r *Raw) WithChildren(nc []Expression) (Expression, error) {
	return withNoChildren(r, nc)
}
