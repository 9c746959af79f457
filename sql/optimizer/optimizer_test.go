package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cypher/parser"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
	"github.com/brahmand-sql/cyphersql/sql/planbuilder"
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

func analyzedPlan(t *testing.T, schema *catalog.Schema, cypher string) (plan.Node, *analyzer.PlanCtx) {
	t.Helper()
	q, err := parser.Parse(cypher)
	require.NoError(t, err)
	n, err := planbuilder.New(schema).Build(q)
	require.NoError(t, err)
	out, pctx, err := analyzer.Analyze(sql.NewEmptyContext(), schema, n)
	require.NoError(t, err)
	return out, pctx
}

func TestFilterIntoScanWrapsStandaloneNode(t *testing.T) {
	schema := socialSchema()
	n, pctx := analyzedPlan(t, schema, "MATCH (p:Person) WHERE p.age > 21 RETURN p.name")
	require.Len(t, pctx.Table("p").Filters, 1)

	out, same, err := FilterIntoScan(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)
	assert.Empty(t, pctx.Table("p").Filters)

	proj := out.(*plan.Projection)
	gn := proj.Input.(*plan.GraphNode)
	_, ok := gn.Input.(*plan.Filter)
	assert.True(t, ok)
}

func TestFilterIntoGraphRelPushesOntoJoinCondition(t *testing.T) {
	schema := socialSchema()
	n, pctx := analyzedPlan(t, schema,
		"MATCH (p:Person)-[:FOLLOWS]->(q:Person) WHERE p.age > 21 AND q.age < 40 RETURN p.name")
	require.Len(t, pctx.Table("p").Filters, 1)
	require.Len(t, pctx.Table("q").Filters, 1)

	out, same, err := FilterIntoGraphRel(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	proj := out.(*plan.Projection)
	gj := proj.Input.(*plan.GraphJoins)
	_, ok := gj.Input.(*plan.Filter)
	assert.True(t, ok, "anchor alias filter should wrap the anchor scan")

	found := false
	for _, j := range gj.Joins {
		if j.Alias == "q" {
			bin := j.On.(*expression.OperatorApplication)
			assert.Equal(t, expression.OpAnd, bin.Op)
			found = true
		}
	}
	assert.True(t, found)
}

func TestCartesianJoinExtractionPromotesStraddlingConjunct(t *testing.T) {
	schema := socialSchema()
	n, pctx := analyzedPlan(t, schema, "MATCH (p:Person), (q:Person) WHERE p.age > q.age RETURN p.name")

	out, same, err := CartesianJoinExtraction(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	proj := out.(*plan.Projection)
	cp, ok := proj.Input.(*plan.CartesianProduct)
	require.True(t, ok)
	require.NotNil(t, cp.JoinCondition)
}

func TestCollectUnwindEliminationRemovesBothStages(t *testing.T) {
	schema := socialSchema()
	n, pctx := analyzedPlan(t, schema,
		"MATCH (p:Person) WITH collect(p) AS people UNWIND people AS n RETURN n")

	out, same, err := CollectUnwindElimination(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	proj := out.(*plan.Projection)
	ta, ok := proj.Items[0].Expr.(*expression.TableAlias)
	require.True(t, ok)
	assert.Equal(t, "p", ta.Name)

	_, isUnwind := proj.Input.(*plan.Unwind)
	assert.False(t, isUnwind)
}
