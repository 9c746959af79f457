package querycache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutThenGetHits(t *testing.T) {
	c := New(10)
	tmpl := c.Put(NormalizeQuery("MATCH (p:Person) RETURN p.name"), "social", "SELECT p.name FROM person AS p")
	require.NotEmpty(t, tmpl.ID)

	got, ok := c.Get(NormalizeQuery("MATCH (p:Person) RETURN p.name"), "social")
	require.True(t, ok)
	assert.Equal(t, tmpl.ID, got.ID)
	assert.Equal(t, "SELECT p.name FROM person AS p", got.SQL)
}

func TestCacheMissForDifferentSchema(t *testing.T) {
	c := New(10)
	c.Put("MATCH (p:Person) RETURN p.name", "social", "SELECT p.name FROM person AS p")
	_, ok := c.Get("MATCH (p:Person) RETURN p.name", "other")
	assert.False(t, ok)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Put("q1", "s", "sql1")
	c.Put("q2", "s", "sql2")
	// touch q1 so q2 becomes the least recently used
	_, _ = c.Get("q1", "s")
	c.Put("q3", "s", "sql3")

	_, ok := c.Get("q2", "s")
	assert.False(t, ok, "q2 should have been evicted")
	_, ok = c.Get("q1", "s")
	assert.True(t, ok)
	_, ok = c.Get("q3", "s")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCacheInvalidateSchemaDropsOnlyThatSchema(t *testing.T) {
	c := New(10)
	c.Put("q1", "social", "sql1")
	c.Put("q2", "billing", "sql2")
	c.InvalidateSchema("social")

	_, ok := c.Get("q1", "social")
	assert.False(t, ok)
	_, ok = c.Get("q2", "billing")
	assert.True(t, ok)
}

func TestCachePutReplacesKeepsStableID(t *testing.T) {
	c := New(10)
	first := c.Put("q1", "social", "sql v1")
	second := c.Put("q1", "social", "sql v2")
	assert.Equal(t, first.ID, second.ID)
	got, ok := c.Get("q1", "social")
	require.True(t, ok)
	assert.Equal(t, "sql v2", got.SQL)
}

func TestStripReplanDirective(t *testing.T) {
	rest, mode := StripReplanDirective("CYPHER replan=force\nMATCH (p) RETURN p")
	assert.Equal(t, ReplanForce, mode)
	assert.Equal(t, "MATCH (p) RETURN p", rest)

	rest, mode = StripReplanDirective("MATCH (p) RETURN p")
	assert.Equal(t, ReplanDefault, mode)
	assert.Equal(t, "MATCH (p) RETURN p", rest)

	rest, mode = StripReplanDirective("CYPHER replan=skip\nMATCH (p) RETURN p")
	assert.Equal(t, ReplanSkip, mode)
	assert.Equal(t, "MATCH (p) RETURN p", rest)
}

func TestNormalizeQueryCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "MATCH (p) RETURN p", NormalizeQuery("  MATCH (p)\n  RETURN   p \n"))
}

func TestSubstituteFillsPlaceholders(t *testing.T) {
	out, err := Substitute("SELECT * FROM person WHERE age > $minAge AND name = $name",
		map[string]interface{}{"minAge": 30, "name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM person WHERE age > 30 AND name = 'Alice'", out)
}

func TestSubstituteEscapesQuotes(t *testing.T) {
	out, err := Substitute("SELECT $v", map[string]interface{}{"v": "it's"})
	require.NoError(t, err)
	assert.Equal(t, `SELECT 'it\'s'`, out)
}

func TestSubstituteMissingParameterErrors(t *testing.T) {
	_, err := Substitute("SELECT $missing", map[string]interface{}{})
	assert.Error(t, err)
}

func TestSubstituteBoolAndNull(t *testing.T) {
	out, err := Substitute("SELECT $a, $b", map[string]interface{}{"a": true, "b": nil})
	require.NoError(t, err)
	assert.Equal(t, "SELECT true, NULL", out)
}

func TestParamSignatureStableAcrossValueChangesSameShape(t *testing.T) {
	s1, err := ParamSignature(map[string]interface{}{"age": 30, "name": "Alice"})
	require.NoError(t, err)
	s2, err := ParamSignature(map[string]interface{}{"age": 99, "name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	s3, err := ParamSignature(map[string]interface{}{"age": 30, "name": 1})
	require.NoError(t, err)
	assert.NotEqual(t, s1, s3)
}

func TestSubstitutionCachePutThenGet(t *testing.T) {
	sc := NewSubstitutionCache(10)
	params := map[string]interface{}{"age": 30}
	_, ok, err := sc.Get("tmpl-1", params)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sc.Put("tmpl-1", params, "SELECT * FROM person WHERE age > 30"))
	got, ok, err := sc.Get("tmpl-1", params)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM person WHERE age > 30", got)
}

func TestSubstitutionCacheDistinguishesParamValues(t *testing.T) {
	sc := NewSubstitutionCache(10)
	require.NoError(t, sc.Put("tmpl-1", map[string]interface{}{"age": 30}, "sql-30"))
	_, ok, err := sc.Get("tmpl-1", map[string]interface{}{"age": 31})
	require.NoError(t, err)
	assert.False(t, ok)
}
