package plan

import "fmt"

// ViewScan is the physical leaf: a read of one catalog table. The plan
// builder leaves PropertyMapping empty; render-plan lowering resolves
// PropertyAccess against the catalog schema.
type ViewScan struct {
	SourceTable    string
	Alias          string
	ViewFilter     string // raw SQL predicate from the catalog entry, if any
	PropertyMapping map[string]string
	IDColumn       string
	OutputSchema   []string
	FromIDColumn   string // relationship tables only
	ToIDColumn     string // relationship tables only
	IsDenormalized bool
	UseFinal       bool
}

func NewViewScan(sourceTable, alias, idColumn string) *ViewScan {
	return &ViewScan{SourceTable: sourceTable, Alias: alias, IDColumn: idColumn}
}

func (v *ViewScan) String() string {
	final := ""
	if v.UseFinal {
		final = " FINAL"
	}
	return fmt.Sprintf("ViewScan(%s%s AS %s)", v.SourceTable, final, v.Alias)
}

func (v *ViewScan) Children() []Node { return nil }

func (v *ViewScan) WithChildren(nc []Node) (Node, error) {
	return withNoChildren(v, nc)
}
