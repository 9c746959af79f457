package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/cypher/ast"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	q, err := Parse("MATCH (p:Person) RETURN p.name")
	require.NoError(t, err)
	require.Len(t, q.Parts, 1)

	part := q.Parts[0]
	require.Len(t, part.Clauses, 1)
	m := part.Clauses[0].(*ast.Match)
	assert.False(t, m.Optional)
	require.Len(t, m.Patterns, 1)
	require.Len(t, m.Patterns[0].Nodes, 1)
	assert.Equal(t, "p", m.Patterns[0].Nodes[0].Variable)
	assert.Equal(t, []string{"Person"}, m.Patterns[0].Nodes[0].Labels)

	require.NotNil(t, part.Return)
	require.Len(t, part.Return.Items, 1)
	pa := part.Return.Items[0].Expr.(*ast.PropertyAccess)
	assert.Equal(t, "name", pa.Property)
	assert.Equal(t, "p", pa.Base.(*ast.Variable).Name)
}

func TestParseOptionalMatchWithWhere(t *testing.T) {
	q, err := Parse("OPTIONAL MATCH (p:Person) WHERE p.age > 18 RETURN p")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	assert.True(t, m.Optional)
	require.NotNil(t, m.Where)
	bin := m.Where.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpGt, bin.Op)
}

func TestParseRelationshipPattern(t *testing.T) {
	q, err := Parse("MATCH (a:Person)-[r:FOLLOWS]->(b:Person) RETURN a, b")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	pat := m.Patterns[0]
	require.Len(t, pat.Rels, 1)
	rel := pat.Rels[0]
	assert.Equal(t, "r", rel.Variable)
	assert.Equal(t, []string{"FOLLOWS"}, rel.Types)
	assert.Equal(t, ast.DirOutgoing, rel.Direction)
}

func TestParseVariableLengthPath(t *testing.T) {
	q, err := Parse("MATCH (a)-[:KNOWS*1..3]->(b) RETURN b")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	rel := m.Patterns[0].Rels[0]
	require.NotNil(t, rel.VarLength)
	assert.Equal(t, 1, rel.VarLength.Min)
	assert.Equal(t, 3, rel.VarLength.Max)
}

func TestParseUndirectedRelationship(t *testing.T) {
	q, err := Parse("MATCH (a)-[:KNOWS]-(b) RETURN b")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	assert.Equal(t, ast.DirEither, m.Patterns[0].Rels[0].Direction)
}

func TestParseIncomingRelationship(t *testing.T) {
	q, err := Parse("MATCH (a)<-[:KNOWS]-(b) RETURN b")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	assert.Equal(t, ast.DirIncoming, m.Patterns[0].Rels[0].Direction)
}

func TestParseWithAndUnwind(t *testing.T) {
	q, err := Parse("MATCH (p:Person) WITH p.name AS n UNWIND [1,2,3] AS x RETURN n, x")
	require.NoError(t, err)
	require.Len(t, q.Parts[0].Clauses, 3)
	w := q.Parts[0].Clauses[1].(*ast.With)
	assert.Equal(t, "n", w.Items[0].Alias)
	u := q.Parts[0].Clauses[2].(*ast.Unwind)
	assert.Equal(t, "x", u.Alias)
	lst := u.List.(*ast.ListLiteral)
	assert.Len(t, lst.Items, 3)
}

func TestParseUnionAll(t *testing.T) {
	q, err := Parse("MATCH (a:A) RETURN a.x AS v UNION ALL MATCH (b:B) RETURN b.y AS v")
	require.NoError(t, err)
	require.Len(t, q.Parts, 2)
	require.Len(t, q.UnionAll, 1)
	assert.True(t, q.UnionAll[0])
}

func TestParseCallPageRank(t *testing.T) {
	q, err := Parse("CALL pagerank(20, 0.85) YIELD node, score RETURN node, score")
	require.NoError(t, err)
	c := q.Parts[0].Clauses[0].(*ast.Call)
	assert.Equal(t, "pagerank", c.Procedure)
	assert.Equal(t, []string{"node", "score"}, c.Yield)
	require.Len(t, c.Args, 2)
}

func TestParseCaseSearched(t *testing.T) {
	q, err := Parse("MATCH (p) RETURN CASE WHEN p.age > 18 THEN 'adult' ELSE 'minor' END AS bucket")
	require.NoError(t, err)
	c := q.Parts[0].Return.Items[0].Expr.(*ast.CaseExpr)
	assert.Nil(t, c.Subject)
	require.Len(t, c.Whens, 1)
	assert.NotNil(t, c.Else)
}

func TestParseStringPredicatesAndRegex(t *testing.T) {
	q, err := Parse("MATCH (p) WHERE p.name STARTS WITH 'A' AND p.email =~ '.*@x.com' RETURN p")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	and := m.Where.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAnd, and.Op)
	left := and.Left.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpStartsWith, left.Op)
	right := and.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpRegexMatch, right.Op)
}

func TestParseExistsPattern(t *testing.T) {
	q, err := Parse("MATCH (p) WHERE EXISTS { (p)-[:FOLLOWS]->(:Person) } RETURN p")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	pe := m.Where.(*ast.PatternExpr)
	assert.Len(t, pe.Pattern.Rels, 1)
}

func TestParseShortestPath(t *testing.T) {
	q, err := Parse("MATCH p = shortestPath((a)-[:KNOWS*]-(b)) RETURN p")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	require.Len(t, m.Patterns, 1)
	assert.Equal(t, "p", m.Patterns[0].Variable)
}

func TestParseLimitSkipOrderBy(t *testing.T) {
	q, err := Parse("MATCH (p) RETURN p ORDER BY p.age DESC SKIP 5 LIMIT 10")
	require.NoError(t, err)
	ret := q.Parts[0].Return
	require.Len(t, ret.OrderBy, 1)
	assert.True(t, ret.OrderBy[0].Descending)
	require.NotNil(t, ret.Skip)
	require.NotNil(t, ret.Limit)
}

func TestParseAggregateDistinct(t *testing.T) {
	q, err := Parse("MATCH (p) RETURN count(DISTINCT p.id) AS total")
	require.NoError(t, err)
	call := q.Parts[0].Return.Items[0].Expr.(*ast.FunctionCall)
	assert.Equal(t, "count", call.Name)
	assert.True(t, call.Distinct)
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := Parse("MATCH (p RETURN p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at position 9")
}

func TestParseUseDatabase(t *testing.T) {
	q, err := Parse("USE social MATCH (p) RETURN p")
	require.NoError(t, err)
	assert.Equal(t, "social", q.UseDatabase)
}

func TestParseParameterInWhere(t *testing.T) {
	q, err := Parse("MATCH (p) WHERE p.age > $minAge RETURN p")
	require.NoError(t, err)
	m := q.Parts[0].Clauses[0].(*ast.Match)
	bin := m.Where.(*ast.BinaryExpr)
	param := bin.Right.(*ast.Parameter)
	assert.Equal(t, "minAge", param.Name)
}

func TestParseParameterInPropertyPatternErrors(t *testing.T) {
	_, err := Parse("MATCH (p:Person {age: $age}) RETURN p")
	require.Error(t, err)
}
