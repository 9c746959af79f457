// Package function implements the Function Registry (C9) from
// SPEC_FULL.md §4.7: a static table mapping openCypher function names onto
// their target-dialect equivalents, with an optional argument transform for
// the handful of functions whose call shape doesn't survive a straight
// rename (index-adjusted substring, argument-swapped split, the rand()
// normalization, duration's sum-of-intervals expansion). It supersedes the
// provisional aggregateFunctionNames set sql/planbuilder carried until this
// package existed.
package function

import (
	"strings"

	"github.com/brahmand-sql/cyphersql/sql/expression"
)

// Resolver produces the rewritten scalar expression for a call whose
// arguments have already been lowered by the caller.
type Resolver func(args []expression.Expression) expression.Expression

var scalars = map[string]Resolver{
	// DateTime
	"datetime":  zeroArgOr("now64(3)", rename1("parseDateTime64BestEffort")),
	"date":      zeroArgOr("today()", rename1("toDate")),
	"timestamp": zeroArgOr("now()", rename1("toDateTime")),

	// String
	"toupper":   rename1("upper"),
	"tolower":   rename1("lower"),
	"size":      rename1("length"),
	"substring": substringCall,
	"split":     splitCall,
	"left":      leftCall,
	"right":     rightCall,
	"replace":   rename1("replaceAll"),
	"reverse":   rename1("reverse"),
	"trim":      rename1("trimBoth"),

	// Math
	"abs":   rename1("abs"),
	"ceil":  rename1("ceiling"),
	"floor": rename1("floor"),
	"round": rename1("round"),
	"sqrt":  rename1("sqrt"),
	"sign":  rename1("sign"),
	"rand":  randCall,

	// List
	"head":  arrayElementCall(1),
	"tail":  arraySliceCall(2),
	"last":  arrayElementCall(-1),
	"range": rename1("range"),

	// Type conversion
	"tointeger": rename1("toInt64"),
	"tofloat":   rename1("toFloat64"),
	"tostring":  rename1("toString"),
	"toboolean": toBooleanCall,

	// Duration
	"duration": durationCall,
}

// aggregates maps an openCypher aggregate name onto its engine-native
// equivalent. collect is the one renamed call; the rest pass straight
// through unchanged.
var aggregates = map[string]string{
	"count":   "count",
	"sum":     "sum",
	"avg":     "avg",
	"min":     "min",
	"max":     "max",
	"collect": "groupArray",
}

const (
	passthroughScalarPrefix    = "ch."
	passthroughAggregatePrefix = "chagg."
)

// ResolveScalar rewrites a non-aggregate call, given its already-lowered
// arguments. ok is false for a name the registry doesn't recognize (the
// caller passes the call through unchanged with a logged warning, per
// §4.7's "unknown Cypher functions fall through with a warning").
func ResolveScalar(name string, args []expression.Expression) (expression.Expression, bool) {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, passthroughScalarPrefix) {
		return expression.NewScalarFnCall(name[len(passthroughScalarPrefix):], args...), true
	}
	fn, ok := scalars[lower]
	if !ok {
		return nil, false
	}
	return fn(args), true
}

// ResolveAggregate maps an aggregate call's name onto its target form. ok
// is false when name is neither in the static aggregate table, carries the
// chagg. prefix, nor is independently recognized by IsAggregate (the
// engine-native-aggregate passthrough set) — a caller should not normally
// reach that case, since IsAggregate is expected to have gated the call
// first.
func ResolveAggregate(name string) (string, bool) {
	lower := strings.ToLower(name)
	if stripped, ok := strings.CutPrefix(lower, passthroughAggregatePrefix); ok {
		return stripped, true
	}
	if target, ok := aggregates[lower]; ok {
		return target, true
	}
	if knownEngineAggregates[lower] {
		return lower, true
	}
	return "", false
}

// knownEngineAggregates lets an un-prefixed, engine-native aggregate name
// (one GroupByInsertion's provisional set already recognized, before this
// package existed) continue to be treated as an aggregate even though it
// has no entry in the openCypher-facing aggregates table above.
var knownEngineAggregates = map[string]bool{
	"stdev":          true,
	"stdevp":         true,
	"percentilecont": true,
	"percentiledisc": true,
	"any":            true,
	"anylast":        true,
	"uniq":           true,
	"uniqexact":      true,
}

// IsAggregate reports whether name should be treated as an aggregate call
// for GROUP BY resolution purposes: the chagg. prefix, the static
// aggregates table, or the known-engine-aggregates passthrough set.
func IsAggregate(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, passthroughAggregatePrefix) {
		return true
	}
	if _, ok := aggregates[lower]; ok {
		return true
	}
	return knownEngineAggregates[lower]
}

func rename1(target string) Resolver {
	return func(args []expression.Expression) expression.Expression {
		return expression.NewScalarFnCall(target, args...)
	}
}

// zeroArgOr picks literalTarget as a bare Raw expression for a 0-arg call
// (datetime(), date(), timestamp()), and falls back to the given resolver
// otherwise.
func zeroArgOr(literalTarget string, otherwise Resolver) Resolver {
	return func(args []expression.Expression) expression.Expression {
		if len(args) == 0 {
			return expression.NewRaw(literalTarget)
		}
		return otherwise(args)
	}
}

// substringCall adjusts Cypher's 0-indexed substring(s, start[, len]) to
// the target dialect's 1-indexed substring(s, start, len).
func substringCall(args []expression.Expression) expression.Expression {
	if len(args) == 0 {
		return expression.NewScalarFnCall("substring", args...)
	}
	out := append([]expression.Expression{}, args...)
	if len(out) >= 2 {
		out[1] = expression.NewBinary(expression.OpAdd, out[1], expression.NewLiteral(1))
	}
	return expression.NewScalarFnCall("substring", out...)
}

// splitCall swaps split(s, delimiter) into splitByChar(delimiter, s).
func splitCall(args []expression.Expression) expression.Expression {
	if len(args) != 2 {
		return expression.NewScalarFnCall("splitByChar", args...)
	}
	return expression.NewScalarFnCall("splitByChar", args[1], args[0])
}

// leftCall rewrites left(s, n) as substring(s, 1, n).
func leftCall(args []expression.Expression) expression.Expression {
	if len(args) != 2 {
		return expression.NewScalarFnCall("substring", args...)
	}
	return expression.NewScalarFnCall("substring", args[0], expression.NewLiteral(1), args[1])
}

// rightCall rewrites right(s, n) as substring(s, -n): a negative start
// offset counts from the end of the string in the target dialect.
func rightCall(args []expression.Expression) expression.Expression {
	if len(args) != 2 {
		return expression.NewScalarFnCall("substring", args...)
	}
	return expression.NewScalarFnCall("substring", args[0], expression.NewUnary(expression.OpNeg, args[1]))
}

// arrayElementCall builds the head()/last() rewrite to arrayElement(l, idx).
func arrayElementCall(idx int) Resolver {
	return func(args []expression.Expression) expression.Expression {
		if len(args) != 1 {
			return expression.NewScalarFnCall("arrayElement", args...)
		}
		return expression.NewScalarFnCall("arrayElement", args[0], expression.NewLiteral(idx))
	}
}

// arraySliceCall builds the tail() rewrite to arraySlice(l, offset).
func arraySliceCall(offset int) Resolver {
	return func(args []expression.Expression) expression.Expression {
		if len(args) != 1 {
			return expression.NewScalarFnCall("arraySlice", args...)
		}
		return expression.NewScalarFnCall("arraySlice", args[0], expression.NewLiteral(offset))
	}
}

// randCall normalizes rand()'s native uint32 range down to [0, 1) by
// dividing by 2^32, since Cypher's rand() is documented to return a float
// in that range.
func randCall(args []expression.Expression) expression.Expression {
	return expression.NewBinary(expression.OpDiv, expression.NewScalarFnCall("rand"), expression.NewLiteral(4294967296.0))
}

// toBooleanCall rewrites toBoolean(x) as if(x, 1, 0): there is no direct
// boolean cast in the target dialect's type system.
func toBooleanCall(args []expression.Expression) expression.Expression {
	if len(args) != 1 {
		return expression.NewScalarFnCall("if", args...)
	}
	return expression.NewScalarFnCall("if", args[0], expression.NewLiteral(1), expression.NewLiteral(0))
}

// durationUnits is the fixed key order duration({...}) is allowed to carry,
// paired with the interval function each key sums into. Sub-second units
// divide into toIntervalSecond per §4.7 rather than getting their own
// interval constructor.
var durationUnits = []struct {
	key    string
	target string
}{
	{"years", "toIntervalYear"},
	{"months", "toIntervalMonth"},
	{"weeks", "toIntervalWeek"},
	{"days", "toIntervalDay"},
	{"hours", "toIntervalHour"},
	{"minutes", "toIntervalMinute"},
	{"seconds", "toIntervalSecond"},
}

// durationCall expects its single argument to already carry one
// expression.List alternating key literals and value expressions (the plan
// builder's lowering of the map literal `{days: n, hours: m, ...}`); it
// sums a toIntervalX(n) term for every key present, and folds milliseconds/
// microseconds into fractional toIntervalSecond terms.
func durationCall(args []expression.Expression) expression.Expression {
	fields := durationFields(args)
	var sum expression.Expression
	for _, u := range durationUnits {
		v, ok := fields[u.key]
		if !ok {
			continue
		}
		term := expression.NewScalarFnCall(u.target, v)
		if sum == nil {
			sum = term
			continue
		}
		sum = expression.NewBinary(expression.OpAdd, sum, term)
	}
	if ms, ok := fields["milliseconds"]; ok {
		term := expression.NewScalarFnCall("toIntervalSecond", expression.NewBinary(expression.OpDiv, ms, expression.NewLiteral(1000.0)))
		if sum == nil {
			sum = term
		} else {
			sum = expression.NewBinary(expression.OpAdd, sum, term)
		}
	}
	if us, ok := fields["microseconds"]; ok {
		term := expression.NewScalarFnCall("toIntervalSecond", expression.NewBinary(expression.OpDiv, us, expression.NewLiteral(1000000.0)))
		if sum == nil {
			sum = term
		} else {
			sum = expression.NewBinary(expression.OpAdd, sum, term)
		}
	}
	if sum == nil {
		return expression.NewScalarFnCall("toIntervalSecond", expression.NewLiteral(0))
	}
	return sum
}

// durationFields reads the flattened key/value list a map-literal argument
// lowers to (PropertyAccess-free: the plan builder emits a bare key name as
// a Raw carrying just the field name, paired with its value expression).
func durationFields(args []expression.Expression) map[string]expression.Expression {
	out := map[string]expression.Expression{}
	if len(args) != 1 {
		return out
	}
	list, ok := args[0].(*expression.List)
	if !ok {
		return out
	}
	for i := 0; i+1 < len(list.Items); i += 2 {
		key, ok := list.Items[i].(*expression.Raw)
		if !ok {
			continue
		}
		out[strings.ToLower(key.SQL)] = list.Items[i+1]
	}
	return out
}
