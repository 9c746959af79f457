package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cypher/parser"
	"github.com/brahmand-sql/cyphersql/sql"
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
	s.Nodes["City"] = &catalog.NodeSchema{
		Label:      "City",
		TableName:  "cities",
		IDColumn:   "id",
		Properties: map[string]string{"name": "name"},
	}
	s.Relationships["FOLLOWS"] = &catalog.RelationshipSchema{
		TypeLabel:  "FOLLOWS",
		TableName:  "follows",
		FromColumn: "follower_id",
		ToColumn:   "followee_id",
		FromLabel:  "Person",
		ToLabel:    "Person",
	}
	s.Relationships["LIVES_IN"] = &catalog.RelationshipSchema{
		TypeLabel:  "LIVES_IN",
		TableName:  "lives_in",
		FromColumn: "person_id",
		ToColumn:   "city_id",
		FromLabel:  "Person",
		ToLabel:    "City",
	}
	return s
}

func buildPlan(t *testing.T, schema *catalog.Schema, cypher string) plan.Node {
	t.Helper()
	q, err := parser.Parse(cypher)
	require.NoError(t, err)
	n, err := planbuilder.New(schema).Build(q)
	require.NoError(t, err)
	return n
}

func TestScopeSplitterAssignsNameAndBarrierAliases(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person) WITH p, p.age AS a RETURN a")
	pctx := NewPlanCtx(schema)
	out, _, err := ScopeSplitter(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)

	proj, ok := out.(*plan.Projection)
	require.True(t, ok)
	wc, ok := proj.Input.(*plan.WithClause)
	require.True(t, ok)
	require.NotEmpty(t, wc.Name)
	aliases, ok := pctx.BarrierAliases[wc.Name]
	require.True(t, ok)
	assert.ElementsMatch(t, wc.ExportedAliases, aliases)
}

func TestFilterTaggingMovesSingleAliasConjuncts(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person) WHERE p.age > 21 RETURN p.name")
	pctx := NewPlanCtx(schema)
	out, same, err := FilterTagging(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	proj, ok := out.(*plan.Projection)
	require.True(t, ok)
	// the Filter dissolved entirely since its only conjunct moved.
	_, isFilter := proj.Input.(*plan.Filter)
	assert.False(t, isFilter)

	tc := pctx.Table("p")
	require.Len(t, tc.Filters, 1)
}

func TestFilterTaggingKeepsMultiAliasConjuncts(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person), (q:Person) WHERE p.age > q.age RETURN p.name")
	pctx := NewPlanCtx(schema)
	out, same, err := FilterTagging(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.SameTree, same)

	proj, ok := out.(*plan.Projection)
	require.True(t, ok)
	_, isFilter := proj.Input.(*plan.Filter)
	assert.True(t, isFilter)
	assert.Empty(t, pctx.Table("p").Filters)
}

func TestGroupByInsertionWrapsAggregateProjection(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person) RETURN p.name, count(p) AS c")
	pctx := NewPlanCtx(schema)
	out, same, err := GroupByInsertion(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	proj, ok := out.(*plan.Projection)
	require.True(t, ok)
	gb, ok := proj.Input.(*plan.GroupBy)
	require.True(t, ok)
	require.Len(t, gb.Keys, 1)

	// idempotent: running it again over the already-wrapped plan is a no-op.
	out2, same2, err := GroupByInsertion(sql.NewEmptyContext(), pctx, out, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.SameTree, same2)
	assert.Same(t, out, out2)
}

func TestGroupByInsertionSkipsNonAggregateProjection(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person) RETURN p.name")
	pctx := NewPlanCtx(schema)
	out, same, err := GroupByInsertion(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.SameTree, same)
	assert.Same(t, n, out)
}

func TestDuplicateScanEliminationCollapsesRepeatedAlias(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person), (p:Person) RETURN p.name")
	pctx := NewPlanCtx(schema)
	out, same, err := DuplicateScanElimination(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	count := 0
	var walk func(plan.Node)
	walk = func(node plan.Node) {
		if node == nil {
			return
		}
		if gn, ok := node.(*plan.GraphNode); ok {
			if _, empty := gn.Input.(*plan.Empty); !empty {
				count++
			}
		}
		for _, c := range node.Children() {
			walk(c)
		}
	}
	walk(out)
	assert.Equal(t, 1, count)
}

func TestGraphJoinInferenceSingleHop(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person)-[:FOLLOWS]->(q:Person) RETURN p.name, q.name")
	pctx := NewPlanCtx(schema)
	out, same, err := GraphJoinInference(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)
	assert.Equal(t, sql.NewTree, same)

	proj, ok := out.(*plan.Projection)
	require.True(t, ok)
	gj, ok := proj.Input.(*plan.GraphJoins)
	require.True(t, ok)
	assert.Equal(t, "people", gj.AnchorTable)
	assert.Equal(t, "p", gj.AnchorAlias)
	require.Len(t, gj.Joins, 2)
	assert.Equal(t, "follows", gj.Joins[0].Table)
	assert.Equal(t, "people", gj.Joins[1].Table)
	assert.Equal(t, plan.JoinInner, gj.Joins[0].Kind)
}

func TestGraphJoinInferenceMultiHop(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person)-[:FOLLOWS]->(q:Person)-[:LIVES_IN]->(c:City) RETURN p.name, c.name")
	pctx := NewPlanCtx(schema)
	out, _, err := GraphJoinInference(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)

	proj, ok := out.(*plan.Projection)
	require.True(t, ok)
	gj, ok := proj.Input.(*plan.GraphJoins)
	require.True(t, ok)
	require.Len(t, gj.Joins, 4)
	assert.Equal(t, "follows", gj.Joins[0].Table)
	assert.Equal(t, "people", gj.Joins[1].Table)
	assert.Equal(t, "lives_in", gj.Joins[2].Table)
	assert.Equal(t, "cities", gj.Joins[3].Table)
}

func TestGraphJoinInferenceIncomingSwapsColumns(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person)<-[:FOLLOWS]-(q:Person) RETURN p.name")
	pctx := NewPlanCtx(schema)
	out, _, err := GraphJoinInference(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)

	proj := out.(*plan.Projection)
	gj := proj.Input.(*plan.GraphJoins)
	bin, ok := gj.Joins[0].On.(*expression.OperatorApplication)
	require.True(t, ok)
	require.Len(t, bin.Operands, 2)
	right, ok := bin.Operands[1].(*expression.PropertyAccess)
	require.True(t, ok)
	assert.Equal(t, "followee_id", right.Property)
}

func TestGraphJoinInferenceOptionalUsesLeftJoin(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "OPTIONAL MATCH (p:Person)-[:FOLLOWS]->(q:Person) RETURN p.name")
	pctx := NewPlanCtx(schema)
	out, _, err := GraphJoinInference(sql.NewEmptyContext(), pctx, n, schema)
	require.NoError(t, err)

	proj := out.(*plan.Projection)
	gj := proj.Input.(*plan.GraphJoins)
	assert.Equal(t, plan.JoinLeft, gj.Joins[0].Kind)
	assert.Equal(t, plan.JoinLeft, gj.Joins[1].Kind)
}

func TestAnalyzeFullPipeline(t *testing.T) {
	schema := socialSchema()
	n := buildPlan(t, schema, "MATCH (p:Person)-[:FOLLOWS]->(q:Person) WHERE p.age > 21 RETURN p.name, count(q) AS followees")
	out, pctx, err := Analyze(sql.NewEmptyContext(), schema, n)
	require.NoError(t, err)
	require.NotNil(t, pctx)

	proj, ok := out.(*plan.Projection)
	require.True(t, ok)
	gb, ok := proj.Input.(*plan.GroupBy)
	require.True(t, ok)
	_, ok = gb.Input.(*plan.GraphJoins)
	require.True(t, ok)
	assert.Len(t, pctx.Table("p").Filters, 1)
}
