package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

func TestResolveScalarRenamesStringFunctions(t *testing.T) {
	e, ok := ResolveScalar("toUpper", []expression.Expression{expression.NewPropertyAccess("p", "name")})
	require.True(t, ok)
	assert.Equal(t, "upper(p.name)", e.String())
}

func TestResolveScalarSubstringAdjustsStartIndex(t *testing.T) {
	e, ok := ResolveScalar("substring", []expression.Expression{
		expression.NewPropertyAccess("p", "name"),
		expression.NewLiteral(0),
	})
	require.True(t, ok)
	assert.Equal(t, "substring(p.name, (0 + 1))", e.String())
}

func TestResolveScalarSplitSwapsArguments(t *testing.T) {
	e, ok := ResolveScalar("split", []expression.Expression{
		expression.NewPropertyAccess("p", "tags"),
		expression.NewLiteral(","),
	})
	require.True(t, ok)
	assert.Equal(t, "splitByChar(,, p.tags)", e.String())
}

func TestResolveScalarLeftAndRight(t *testing.T) {
	left, ok := ResolveScalar("left", []expression.Expression{expression.NewTableAlias("s"), expression.NewLiteral(3)})
	require.True(t, ok)
	assert.Equal(t, "substring(s, 1, 3)", left.String())

	right, ok := ResolveScalar("right", []expression.Expression{expression.NewTableAlias("s"), expression.NewLiteral(3)})
	require.True(t, ok)
	assert.Equal(t, "substring(s, (- 3))", right.String())
}

func TestResolveScalarHeadAndTail(t *testing.T) {
	head, ok := ResolveScalar("head", []expression.Expression{expression.NewTableAlias("l")})
	require.True(t, ok)
	assert.Equal(t, "arrayElement(l, 1)", head.String())

	tail, ok := ResolveScalar("tail", []expression.Expression{expression.NewTableAlias("l")})
	require.True(t, ok)
	assert.Equal(t, "arraySlice(l, 2)", tail.String())

	last, ok := ResolveScalar("last", []expression.Expression{expression.NewTableAlias("l")})
	require.True(t, ok)
	assert.Equal(t, "arrayElement(l, -1)", last.String())
}

func TestResolveScalarZeroArgDatetimeUsesLiteralForm(t *testing.T) {
	e, ok := ResolveScalar("datetime", nil)
	require.True(t, ok)
	assert.Equal(t, "now64(3)", e.String())
}

func TestResolveScalarToBooleanBecomesIf(t *testing.T) {
	e, ok := ResolveScalar("toBoolean", []expression.Expression{expression.NewTableAlias("x")})
	require.True(t, ok)
	assert.Equal(t, "if(x, 1, 0)", e.String())
}

func TestResolveScalarChPrefixPassesThroughVerbatim(t *testing.T) {
	e, ok := ResolveScalar("ch.murmurHash3_64", []expression.Expression{expression.NewTableAlias("x")})
	require.True(t, ok)
	assert.Equal(t, "murmurHash3_64(x)", e.String())
}

func TestResolveScalarUnknownFunctionIsNotOK(t *testing.T) {
	_, ok := ResolveScalar("nonesuch", nil)
	assert.False(t, ok)
}

func TestResolveScalarDurationSumsIntervalTerms(t *testing.T) {
	arg := expression.NewList(
		expression.NewRaw("days"), expression.NewLiteral(2),
		expression.NewRaw("hours"), expression.NewLiteral(3),
	)
	e, ok := ResolveScalar("duration", []expression.Expression{arg})
	require.True(t, ok)
	assert.Equal(t, "(toIntervalDay(2) + toIntervalHour(3))", e.String())
}

func TestIsAggregateAndResolveAggregate(t *testing.T) {
	assert.True(t, IsAggregate("collect"))
	assert.True(t, IsAggregate("COUNT"))
	assert.True(t, IsAggregate("chagg.anyLast"))
	assert.False(t, IsAggregate("toUpper"))

	target, ok := ResolveAggregate("collect")
	require.True(t, ok)
	assert.Equal(t, "groupArray", target)

	target, ok = ResolveAggregate("chagg.quantile")
	require.True(t, ok)
	assert.Equal(t, "quantile", target)

	target, ok = ResolveAggregate("stdev")
	require.True(t, ok)
	assert.Equal(t, "stdev", target)
}
