package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeavesString(t *testing.T) {
	assert.Equal(t, "*", NewStar().String())
	assert.Equal(t, "u", NewTableAlias("u").String())
	assert.Equal(t, "a", NewColumnAlias("a").String())
	assert.Equal(t, "name", NewColumn("", "name").String())
	assert.Equal(t, "u.name", NewColumn("u", "name").String())
	assert.Equal(t, "$limit", NewParameter("limit").String())
	assert.Equal(t, "raw sql", NewRaw("raw sql").String())
	assert.Equal(t, "NULL", NewLiteral(nil).String())
	assert.Equal(t, "42", NewLiteral(42).String())
}

func TestLeavesRejectChildren(t *testing.T) {
	_, err := NewStar().WithChildren([]Expression{NewLiteral(1)})
	assert.Error(t, err)

	same, err := NewStar().WithChildren(nil)
	require.NoError(t, err)
	assert.Equal(t, NewStar(), same)
}

func TestPropertyAccess(t *testing.T) {
	pa := NewPropertyAccess("p", "age")
	assert.Equal(t, "p.age", pa.String())
	assert.Nil(t, pa.Children())
}

func TestOperatorApplicationBinary(t *testing.T) {
	e := NewBinary(OpEq, NewColumn("p", "age"), NewLiteral(30))
	assert.Equal(t, "(p.age = 30)", e.String())

	rebuilt, err := e.WithChildren([]Expression{NewColumn("p", "age"), NewLiteral(31)})
	require.NoError(t, err)
	assert.Equal(t, "(p.age = 31)", rebuilt.String())
}

func TestOperatorApplicationUnary(t *testing.T) {
	isNull := NewUnary(OpIsNull, NewColumn("p", "age"))
	assert.Equal(t, "(p.age IS NULL)", isNull.String())

	not := NewUnary(OpNot, NewColumn("p", "active"))
	assert.Equal(t, "(NOT p.active)", not.String())
}

func TestNewAndAndSplitConjuncts(t *testing.T) {
	assert.Nil(t, NewAnd())

	single := NewAnd(NewLiteral(true))
	assert.Equal(t, NewLiteral(true), single)

	e := NewAnd(
		NewBinary(OpEq, NewColumn("p", "age"), NewLiteral(30)),
		NewBinary(OpGt, NewColumn("p", "weight"), NewLiteral(10)),
		NewUnary(OpIsNotNull, NewColumn("p", "name")),
	)
	conjuncts := SplitConjuncts(e)
	require.Len(t, conjuncts, 3)
	assert.Equal(t, "(p.age = 30)", conjuncts[0].String())
	assert.Equal(t, "(p.weight > 10)", conjuncts[1].String())
	assert.Equal(t, "(p.name IS NOT NULL)", conjuncts[2].String())
}

func TestSplitConjunctsNonAnd(t *testing.T) {
	e := NewBinary(OpEq, NewColumn("p", "age"), NewLiteral(30))
	assert.Equal(t, []Expression{e}, SplitConjuncts(e))
}

func TestFreeAliases(t *testing.T) {
	e := NewBinary(OpEq, NewPropertyAccess("p", "age"), NewColumn("q", "age"))
	aliases := FreeAliases(e)
	assert.True(t, aliases["p"])
	assert.True(t, aliases["q"])
	assert.Len(t, aliases, 2)
}

func TestList(t *testing.T) {
	l := NewList(NewLiteral(1), NewLiteral(2), NewLiteral(3))
	assert.Equal(t, "[1, 2, 3]", l.String())

	rebuilt, err := l.WithChildren([]Expression{NewLiteral(4), NewLiteral(5), NewLiteral(6)})
	require.NoError(t, err)
	assert.Equal(t, "[4, 5, 6]", rebuilt.String())

	_, err = l.WithChildren([]Expression{NewLiteral(1)})
	assert.Error(t, err)
}

func TestScalarFnCall(t *testing.T) {
	f := NewScalarFnCall("toLower", NewColumn("p", "name"))
	assert.Equal(t, "toLower(p.name)", f.String())
}

func TestAggregateFnCall(t *testing.T) {
	f := NewAggregateFnCall("count", true, NewColumn("p", "id"))
	assert.Equal(t, "count(DISTINCT p.id)", f.String())

	f2 := NewAggregateFnCall("count", false, NewStar())
	assert.Equal(t, "count(*)", f2.String())
}

func TestCaseSearched(t *testing.T) {
	c := NewCase(nil, []WhenThen{
		{When: NewBinary(OpGt, NewColumn("p", "age"), NewLiteral(18)), Then: NewLiteral("adult")},
	}, NewLiteral("minor"))

	assert.Equal(t, "CASE WHEN (p.age > 18) THEN adult ELSE minor END", c.String())
	assert.Len(t, c.Children(), 3)

	rebuilt, err := c.WithChildren([]Expression{
		NewBinary(OpGt, NewColumn("p", "age"), NewLiteral(21)),
		NewLiteral("adult"),
		NewLiteral("minor"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN (p.age > 21) THEN adult ELSE minor END", rebuilt.String())
}

func TestCaseSimple(t *testing.T) {
	c := NewCase(NewColumn("p", "status"), []WhenThen{
		{When: NewLiteral("active"), Then: NewLiteral(1)},
	}, nil)
	assert.Equal(t, "CASE p.status WHEN active THEN 1 END", c.String())
	assert.Len(t, c.Children(), 3)
}

func TestCaseWithChildrenMismatch(t *testing.T) {
	c := NewCase(nil, []WhenThen{{When: NewLiteral(true), Then: NewLiteral(1)}}, nil)
	_, err := c.WithChildren([]Expression{NewLiteral(true)})
	assert.Error(t, err)
}

func TestPathPattern(t *testing.T) {
	p := NewPathPattern("p", "a", "r", "b")
	assert.Equal(t, "p = path(a, r, b)", p.String())
	assert.Nil(t, p.Children())
}

type stubPlanNode struct{ sql string }

func (s stubPlanNode) String() string { return s.sql }

func TestInSubquery(t *testing.T) {
	sub := NewInSubquery(NewColumn("p", "id"), stubPlanNode{"SELECT id FROM t"})
	assert.Equal(t, "(p.id IN (SELECT id FROM t))", sub.String())

	rebuilt, err := sub.WithChildren([]Expression{NewColumn("p", "pid")})
	require.NoError(t, err)
	assert.Equal(t, "(p.pid IN (SELECT id FROM t))", rebuilt.String())
}

func TestExistsSubquery(t *testing.T) {
	e := NewExistsSubquery(stubPlanNode{"SELECT 1"})
	assert.Equal(t, "EXISTS (SELECT 1)", e.String())
	assert.Nil(t, e.Children())
}
