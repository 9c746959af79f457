package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sqlgen"
)

func peopleSchema() *catalog.Schema {
	s := catalog.NewSchema("social")
	s.Nodes["Person"] = &catalog.NodeSchema{
		Label:      "Person",
		TableName:  "person",
		IDColumn:   "id",
		Properties: map[string]string{"name": "name", "age": "age"},
	}
	s.Relationships["FOLLOWS"] = &catalog.RelationshipSchema{
		TypeLabel:  "FOLLOWS",
		TableName:  "follows",
		FromColumn: "from_id",
		ToColumn:   "to_id",
		FromLabel:  "Person",
		ToLabel:    "Person",
	}
	return s
}

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	reg := catalog.NewRegistry()
	require.NoError(t, reg.Register(peopleSchema()))
	return New(reg, Config{Generator: sqlgen.Config{MaxRecursiveDepth: 100}})
}

func TestCompileSimpleQuery(t *testing.T) {
	c := newTestCompiler(t)
	out, err := c.Compile(sql.NewEmptyContext(), "MATCH (u:Person) WHERE u.age > $minAge RETURN u.name", "social",
		map[string]interface{}{"minAge": 30})
	require.NoError(t, err)
	assert.Equal(t, "SELECT u.name FROM person AS u WHERE (u.age > 30)", out.SQL)
	assert.NotEmpty(t, out.TemplateID)
	assert.False(t, out.CacheHit)
}

func TestCompileSecondCallHitsCache(t *testing.T) {
	c := newTestCompiler(t)
	ctx := sql.NewEmptyContext()
	query := "MATCH (u:Person) WHERE u.age > $minAge RETURN u.name"

	first, err := c.Compile(ctx, query, "social", map[string]interface{}{"minAge": 30})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := c.Compile(ctx, query, "social", map[string]interface{}{"minAge": 40})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.TemplateID, second.TemplateID)
	assert.Equal(t, "SELECT u.name FROM person AS u WHERE (u.age > 40)", second.SQL)
	assert.Equal(t, "SELECT u.name FROM person AS u WHERE (u.age > 30)", first.SQL)
}

func TestCompileUnknownSchemaErrors(t *testing.T) {
	c := newTestCompiler(t)
	_, err := c.Compile(sql.NewEmptyContext(), "MATCH (u:Person) RETURN u.name", "nope", nil)
	require.Error(t, err)
	assert.Equal(t, cyphererr.CategorySchema, cyphererr.Category(err))
}

func TestCompileMissingParameterErrors(t *testing.T) {
	c := newTestCompiler(t)
	_, err := c.Compile(sql.NewEmptyContext(), "MATCH (u:Person) WHERE u.age > $minAge RETURN u.name", "social", nil)
	require.Error(t, err)
	assert.Equal(t, cyphererr.CategoryParameter, cyphererr.Category(err))
}

func TestCompileReplanForceBypassesCacheLookupButStillCaches(t *testing.T) {
	c := newTestCompiler(t)
	ctx := sql.NewEmptyContext()
	query := "MATCH (u:Person) RETURN u.name"

	first, err := c.Compile(ctx, query, "social", nil)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	forced, err := c.Compile(ctx, "CYPHER replan=force\n"+query, "social", nil)
	require.NoError(t, err)
	assert.False(t, forced.CacheHit, "a forced replan must not report a cache hit")
	assert.Equal(t, first.TemplateID, forced.TemplateID, "force still writes back into the same cache slot")

	third, err := c.Compile(ctx, query, "social", nil)
	require.NoError(t, err)
	assert.True(t, third.CacheHit, "the forced replan's result should now be cached")
}

func TestCompileReplanSkipNeverTouchesCache(t *testing.T) {
	c := newTestCompiler(t)
	ctx := sql.NewEmptyContext()
	query := "MATCH (u:Person) RETURN u.name"

	out, err := c.Compile(ctx, "CYPHER replan=skip\n"+query, "social", nil)
	require.NoError(t, err)
	assert.False(t, out.CacheHit)
	assert.Empty(t, out.TemplateID)
	assert.Equal(t, 0, c.cache.Len())

	again, err := c.Compile(ctx, query, "social", nil)
	require.NoError(t, err)
	assert.False(t, again.CacheHit, "the skipped compile must not have seeded the cache")
}

func TestCompileSchemaReloadInvalidatesCache(t *testing.T) {
	c := newTestCompiler(t)
	ctx := sql.NewEmptyContext()
	query := "MATCH (u:Person) RETURN u.name"

	_, err := c.Compile(ctx, query, "social", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.cache.Len())

	require.NoError(t, c.RegisterSchema(peopleSchema()))
	assert.Equal(t, 0, c.cache.Len(), "re-registering a schema must drop its cached templates")
}

func TestCompileParseErrorPropagatesCategory(t *testing.T) {
	c := newTestCompiler(t)
	_, err := c.Compile(sql.NewEmptyContext(), "MATCH (u:Person RETURN u.name", "social", nil)
	require.Error(t, err)
	assert.Equal(t, cyphererr.CategoryParse, cyphererr.Category(err))
}
