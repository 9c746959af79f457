package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cypher/parser"
	"github.com/brahmand-sql/cyphersql/render"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/optimizer"
	"github.com/brahmand-sql/cyphersql/sql/planbuilder"
)

// peopleSchema mirrors §8's worked end-to-end scenarios: Person/Company
// nodes, FOLLOWS/WORKS_AT relationships.
func peopleSchema() *catalog.Schema {
	s := catalog.NewSchema("social")
	s.Nodes["Person"] = &catalog.NodeSchema{
		Label:      "Person",
		TableName:  "person",
		IDColumn:   "id",
		Properties: map[string]string{"name": "name", "age": "age"},
	}
	s.Nodes["Company"] = &catalog.NodeSchema{
		Label:      "Company",
		TableName:  "company",
		IDColumn:   "id",
		Properties: map[string]string{"name": "name"},
	}
	s.Relationships["FOLLOWS"] = &catalog.RelationshipSchema{
		TypeLabel:  "FOLLOWS",
		TableName:  "follows",
		FromColumn: "from_id",
		ToColumn:   "to_id",
		FromLabel:  "Person",
		ToLabel:    "Person",
	}
	s.Relationships["WORKS_AT"] = &catalog.RelationshipSchema{
		TypeLabel:  "WORKS_AT",
		TableName:  "works_at",
		FromColumn: "from_id",
		ToColumn:   "to_id",
		FromLabel:  "Person",
		ToLabel:    "Company",
	}
	return s
}

func genSQL(t *testing.T, schema *catalog.Schema, cypher string) string {
	t.Helper()
	q, err := parser.Parse(cypher)
	require.NoError(t, err)
	n, err := planbuilder.New(schema).Build(q)
	require.NoError(t, err)
	analyzed, pctx, err := analyzer.Analyze(sql.NewEmptyContext(), schema, n)
	require.NoError(t, err)
	optimized, err := optimizer.Optimize(sql.NewEmptyContext(), pctx, schema, analyzed)
	require.NoError(t, err)
	rp, err := render.Lower(sql.NewEmptyContext(), pctx, schema, optimized)
	require.NoError(t, err)
	sqlText, err := Generate(rp, Config{MaxRecursiveDepth: 100})
	require.NoError(t, err)
	return sqlText
}

func TestGenerateSimpleFilteredScan(t *testing.T) {
	got := genSQL(t, peopleSchema(), "MATCH (u:Person) WHERE u.age > 30 RETURN u.name")
	assert.Equal(t, "SELECT u.name FROM person AS u WHERE (u.age > 30)", got)
}

func TestGenerateTwoHopPattern(t *testing.T) {
	got := genSQL(t, peopleSchema(),
		"MATCH (a:Person)-[:FOLLOWS]->(b:Person)-[:FOLLOWS]->(c:Person) WHERE a.name = 'Alice' RETURN c.name")
	assert.Contains(t, got, "FROM person AS a")
	assert.Contains(t, got, "INNER JOIN follows AS")
	assert.Contains(t, got, "INNER JOIN person AS b ON")
	assert.Contains(t, got, "INNER JOIN person AS c ON")
	assert.Contains(t, got, "WHERE (a.name = 'Alice')")
}

func TestGenerateOptionalMatch(t *testing.T) {
	got := genSQL(t, peopleSchema(),
		"MATCH (p:Person) OPTIONAL MATCH (p)-[:WORKS_AT]->(c:Company) RETURN p.name, c.name")
	assert.Contains(t, got, "LEFT JOIN works_at AS")
	assert.Contains(t, got, "LEFT JOIN company AS c ON")
}

func TestGenerateVariableLengthPathEmitsRecursiveCTEAndSettings(t *testing.T) {
	got := genSQL(t, peopleSchema(),
		"MATCH (a:Person)-[:FOLLOWS*1..3]->(b:Person) WHERE a.name = 'Alice' RETURN b.name")
	assert.Contains(t, got, "WITH RECURSIVE")
	assert.Contains(t, got, "UNION ALL")
	assert.Contains(t, got, "NOT has(prev.path")
	assert.Contains(t, got, "SETTINGS max_recursive_cte_evaluation_depth = 3")
}

func TestGenerateWithBarrierAggregate(t *testing.T) {
	got := genSQL(t, peopleSchema(),
		"MATCH (p:Person)-[:FOLLOWS]->(f:Person) WITH p, count(f) AS friends WHERE friends > 5 RETURN p.name, friends")
	assert.Contains(t, got, "WITH ")
	assert.Contains(t, got, "count(")
	assert.Contains(t, got, "GROUP BY")
	assert.Contains(t, got, "WHERE")
	assert.Contains(t, got, "friends > 5)")
}

func TestGenerateUnionAll(t *testing.T) {
	got := genSQL(t, peopleSchema(),
		"MATCH (p:Person) RETURN p.name UNION ALL MATCH (p:Person) RETURN p.name")
	assert.Contains(t, got, " UNION ALL ")
}

func TestLiteralSQL(t *testing.T) {
	assert.Equal(t, "NULL", literalSQL(nil))
	assert.Equal(t, "true", literalSQL(true))
	assert.Equal(t, "false", literalSQL(false))
	assert.Equal(t, "42", literalSQL(42))
	assert.Equal(t, `'it\'s'`, literalSQL(`it's`))
}

func TestQuoteIdentPassesThroughPlainNames(t *testing.T) {
	assert.Equal(t, "people", quoteIdent("people"))
	assert.Equal(t, "`weird name`", quoteIdent("weird name"))
}

func TestExprCaseSearched(t *testing.T) {
	g := &generator{}
	c := expression.NewCase(nil, []expression.WhenThen{
		{When: expression.NewBinary(expression.OpGt, expression.NewColumn("p", "age"), expression.NewLiteral(18)), Then: expression.NewLiteral("adult")},
	}, expression.NewLiteral("minor"))
	got, err := g.expr(c)
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN (p.age > 18) THEN 'adult' ELSE 'minor' END", got)
}

func TestExprCaseSimple(t *testing.T) {
	g := &generator{}
	c := expression.NewCase(expression.NewColumn("p", "status"), []expression.WhenThen{
		{When: expression.NewLiteral("active"), Then: expression.NewLiteral(1)},
	}, nil)
	got, err := g.expr(c)
	require.NoError(t, err)
	assert.Equal(t, "caseWithExpression(p.status, 'active', 1, NULL)", got)
}

func TestExprRegexAndStringPredicates(t *testing.T) {
	g := &generator{}
	m, err := g.expr(expression.NewBinary(expression.OpRegexMatch, expression.NewColumn("p", "name"), expression.NewLiteral("^A")))
	require.NoError(t, err)
	assert.Equal(t, "match(p.name, '^A')", m)

	sw, err := g.expr(expression.NewBinary(expression.OpStartsWith, expression.NewColumn("p", "name"), expression.NewLiteral("A")))
	require.NoError(t, err)
	assert.Equal(t, "startsWith(p.name, 'A')", sw)

	ct, err := g.expr(expression.NewBinary(expression.OpContains, expression.NewColumn("p", "name"), expression.NewLiteral("li")))
	require.NoError(t, err)
	assert.Equal(t, "(position(p.name, 'li') > 0)", ct)
}

func TestExprInWithLiteralListBecomesTuple(t *testing.T) {
	g := &generator{}
	in := expression.NewBinary(expression.OpIn, expression.NewColumn("p", "age"),
		expression.NewList(expression.NewLiteral(1), expression.NewLiteral(2), expression.NewLiteral(3)))
	got, err := g.expr(in)
	require.NoError(t, err)
	assert.Equal(t, "(p.age IN tuple(1, 2, 3))", got)
}

func TestExprConcatDetectedFromStringLiteral(t *testing.T) {
	g := &generator{}
	e := expression.NewBinary(expression.OpAdd, expression.NewLiteral("hello "), expression.NewColumn("p", "name"))
	got, err := g.expr(e)
	require.NoError(t, err)
	assert.Equal(t, "concat('hello ', p.name)", got)
}

func TestExprPlainArithmeticAddUnaffected(t *testing.T) {
	g := &generator{}
	e := expression.NewBinary(expression.OpAdd, expression.NewColumn("p", "age"), expression.NewLiteral(1))
	got, err := g.expr(e)
	require.NoError(t, err)
	assert.Equal(t, "(p.age + 1)", got)
}

func TestExprUnresolvedPropertyAccessErrors(t *testing.T) {
	g := &generator{}
	_, err := g.expr(expression.NewPropertyAccess("p", "name"))
	assert.Error(t, err)
}
