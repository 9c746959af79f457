package planbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/cypher/parser"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

func socialSchema() *catalog.Schema {
	s := catalog.NewSchema("social")
	s.Nodes["Person"] = &catalog.NodeSchema{
		Label:      "Person",
		TableName:  "people",
		IDColumn:   "id",
		Properties: map[string]string{"name": "name", "age": "age"},
	}
	s.Relationships["FOLLOWS"] = &catalog.RelationshipSchema{
		TypeLabel:  "FOLLOWS",
		TableName:  "follows",
		FromColumn: "follower_id",
		ToColumn:   "followee_id",
		FromLabel:  "Person",
		ToLabel:    "Person",
	}
	return s
}

func build(t *testing.T, cypher string) plan.Node {
	t.Helper()
	q, err := parser.Parse(cypher)
	require.NoError(t, err)
	n, err := New(socialSchema()).Build(q)
	require.NoError(t, err)
	return n
}

func TestBuildSimpleMatchReturn(t *testing.T) {
	n := build(t, "MATCH (p:Person) RETURN p.name")
	proj, ok := n.(*plan.Projection)
	require.True(t, ok)
	require.Len(t, proj.Items, 1)
	pa, ok := proj.Items[0].Expr.(*expression.PropertyAccess)
	require.True(t, ok)
	assert.Equal(t, "p", pa.Alias)
	assert.Equal(t, "name", pa.Property)

	gn, ok := proj.Input.(*plan.GraphNode)
	require.True(t, ok)
	assert.Equal(t, "p", gn.Alias)
	assert.Equal(t, "Person", gn.Label)
	vs, ok := gn.Input.(*plan.ViewScan)
	require.True(t, ok)
	assert.Equal(t, "people", vs.SourceTable)
}

func TestBuildRelationshipPattern(t *testing.T) {
	n := build(t, "MATCH (a:Person)-[r:FOLLOWS]->(b:Person) RETURN a, b")
	proj := n.(*plan.Projection)
	gr, ok := proj.Input.(*plan.GraphRel)
	require.True(t, ok)
	assert.Equal(t, plan.DirOutgoing, gr.Direction)
	assert.Equal(t, []string{"FOLLOWS"}, gr.Labels)
	center, ok := gr.Center.(*plan.ViewScan)
	require.True(t, ok)
	assert.Equal(t, "follows", center.SourceTable)
	assert.Equal(t, "follower_id", center.FromIDColumn)
	assert.Equal(t, "followee_id", center.ToIDColumn)
}

func TestBuildUnknownLabelErrors(t *testing.T) {
	q, err := parser.Parse("MATCH (p:Nonexistent) RETURN p")
	require.NoError(t, err)
	_, err = New(socialSchema()).Build(q)
	require.Error(t, err)
}

func TestBuildWhereWrapsFilter(t *testing.T) {
	n := build(t, "MATCH (p:Person) WHERE p.age > 18 RETURN p")
	proj := n.(*plan.Projection)
	filter, ok := proj.Input.(*plan.Filter)
	require.True(t, ok)
	bin, ok := filter.Predicate.(*expression.OperatorApplication)
	require.True(t, ok)
	assert.Equal(t, expression.OpGt, bin.Op)
}

func TestBuildPropertyPatternBecomesFilter(t *testing.T) {
	n := build(t, "MATCH (p:Person {name: 'Ada'}) RETURN p")
	proj := n.(*plan.Projection)
	filter, ok := proj.Input.(*plan.Filter)
	require.True(t, ok)
	bin := filter.Predicate.(*expression.OperatorApplication)
	assert.Equal(t, expression.OpEq, bin.Op)
	pa := bin.Operands[0].(*expression.PropertyAccess)
	assert.Equal(t, "name", pa.Property)
}

func TestBuildCommaPatternsCartesianProduct(t *testing.T) {
	n := build(t, "MATCH (a:Person), (b:Person) RETURN a, b")
	proj := n.(*plan.Projection)
	_, ok := proj.Input.(*plan.CartesianProduct)
	assert.True(t, ok)
}

func TestBuildOptionalMatchFlagsOptional(t *testing.T) {
	n := build(t, "MATCH (a:Person) OPTIONAL MATCH (a)-[:FOLLOWS]->(b:Person) RETURN a, b")
	proj := n.(*plan.Projection)
	cp, ok := proj.Input.(*plan.CartesianProduct)
	require.True(t, ok)
	assert.True(t, cp.IsOptional)
}

func TestBuildWithThenReturn(t *testing.T) {
	n := build(t, "MATCH (p:Person) WITH p.name AS n RETURN n")
	proj := n.(*plan.Projection)
	alias := proj.Items[0].Expr.(*expression.TableAlias)
	assert.Equal(t, "n", alias.Name)

	wc, ok := proj.Input.(*plan.WithClause)
	require.True(t, ok)
	assert.Equal(t, []string{"n"}, wc.ExportedAliases)
}

func TestBuildUnwind(t *testing.T) {
	n := build(t, "UNWIND [1,2,3] AS x RETURN x")
	proj := n.(*plan.Projection)
	uw, ok := proj.Input.(*plan.Unwind)
	require.True(t, ok)
	assert.Equal(t, "x", uw.Alias)
}

func TestBuildUnionAll(t *testing.T) {
	q, err := parser.Parse("MATCH (a:Person) RETURN a.name AS v UNION ALL MATCH (b:Person) RETURN b.name AS v")
	require.NoError(t, err)
	n, err := New(socialSchema()).Build(q)
	require.NoError(t, err)
	u, ok := n.(*plan.Union)
	require.True(t, ok)
	assert.True(t, u.All)
}

func TestBuildPageRankCall(t *testing.T) {
	n := build(t, "CALL pagerank(10, 0.9) YIELD node, score RETURN node, score")
	proj := n.(*plan.Projection)
	pr, ok := proj.Input.(*plan.PageRank)
	require.True(t, ok)
	assert.Equal(t, 10, pr.Iterations)
	assert.InDelta(t, 0.9, pr.Damping, 0.0001)
	assert.Equal(t, "node", pr.NodeAlias)
	assert.Equal(t, "score", pr.ScoreAlias)
}

func TestBuildExistsPatternSubquery(t *testing.T) {
	n := build(t, "MATCH (p:Person) WHERE EXISTS { (p)-[:FOLLOWS]->(:Person) } RETURN p")
	proj := n.(*plan.Projection)
	filter := proj.Input.(*plan.Filter)
	ex, ok := filter.Predicate.(*expression.ExistsSubquery)
	require.True(t, ok)
	require.NotNil(t, ex.Plan)
}

func TestBuildAliasConflictErrors(t *testing.T) {
	q, err := parser.Parse("MATCH (a:Person)-[a:FOLLOWS]->(b:Person) RETURN a")
	require.NoError(t, err)
	_, err = New(socialSchema()).Build(q)
	require.Error(t, err)
	assert.True(t, cyphererr.ErrAliasConflict.Is(err))
}

func TestBuildVariableLengthPath(t *testing.T) {
	n := build(t, "MATCH (a:Person)-[:FOLLOWS*1..3]->(b:Person) RETURN b")
	proj := n.(*plan.Projection)
	gr := proj.Input.(*plan.GraphRel)
	require.NotNil(t, gr.VariableLength)
	assert.Equal(t, 1, gr.VariableLength.Min)
	assert.Equal(t, 3, gr.VariableLength.Max)
}

func TestBuildBareStarVariableLengthDefaultsMinToOne(t *testing.T) {
	n := build(t, "MATCH (a:Person)-[:FOLLOWS*]->(b:Person) RETURN b")
	proj := n.(*plan.Projection)
	gr := proj.Input.(*plan.GraphRel)
	require.NotNil(t, gr.VariableLength)
	assert.Equal(t, 1, gr.VariableLength.Min)
	assert.Equal(t, -1, gr.VariableLength.Max)
}
