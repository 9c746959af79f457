// Package cyphererr declares the stable error categories the compiler can
// return, per the error handling design: every pass may fail with one of
// these kinds, and callers switch on Category(err) rather than string
// matching messages.
package cyphererr

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// Category is the stable, machine-checkable error class of a compile error.
type Category string

const (
	CategoryParse      Category = "parse_error"
	CategorySchema     Category = "schema_error"
	CategoryPlanning   Category = "planning_error"
	CategoryLowering   Category = "lowering_error"
	CategoryGeneration Category = "generation_error"
	CategoryParameter  Category = "parameter_error"
	CategoryUnknown    Category = "unknown_error"
)

// Kind groups a *goerrors.Kind with the Category it belongs to, so Category
// can recover the class of an error produced anywhere in the pipeline.
type Kind struct {
	*goerrors.Kind
	category Category
}

func newKind(category Category, message string) *Kind {
	k := &Kind{Kind: goerrors.NewKind(message), category: category}
	registry = append(registry, k)
	return k
}

var registry []*Kind

// Category returns the stable category of err, or CategoryUnknown if err
// was not raised through one of the Kinds in this package.
func Category(err error) Category {
	for _, k := range registry {
		if k.Is(err) {
			return k.category
		}
	}
	return CategoryUnknown
}

// Parse errors: malformed syntax.
var (
	ErrUnexpectedToken = newKind(CategoryParse, "unexpected token %q at position %d: %s")
	ErrUnexpectedEOF   = newKind(CategoryParse, "unexpected end of input: %s")
	ErrInvalidLiteral  = newKind(CategoryParse, "invalid literal %q: %s")
)

// Schema errors: catalog lookups that fail.
var (
	ErrSchemaNotFound       = newKind(CategorySchema, "schema %q is not registered%s")
	ErrLabelNotFound        = newKind(CategorySchema, "node label %q not found in schema%s")
	ErrRelationshipNotFound = newKind(CategorySchema, "relationship type %q not found in schema%s")
	ErrPropertyNotFound     = newKind(CategorySchema, "property %q not found on %q%s")
	ErrEndpointUnresolved   = newKind(CategorySchema, "polymorphic endpoint for relationship %q could not be resolved from pattern context")
	ErrIDColumnMissing      = newKind(CategorySchema, "node label %q has no id column configured")
)

// Planning errors: plan-building / analyzer failures.
var (
	ErrAliasConflict          = newKind(CategoryPlanning, "alias %q is already bound to a different label")
	ErrFoundParamInProperties = newKind(CategoryPlanning, "parameters are not supported inside property patterns (alias %q)")
	ErrWriteNotSupported      = newKind(CategoryPlanning, "write operation %q submitted to a read-only core")
	ErrUnsupportedConstruct   = newKind(CategoryPlanning, "unsupported construct: %s")
	ErrUnresolvedVariable     = newKind(CategoryPlanning, "variable %q could not be resolved in this scope")
)

// Lowering errors: render-plan / expression lowering failures.
var (
	ErrUnrepresentable       = newKind(CategoryLowering, "expression %s has no representation in the target dialect")
	ErrCorrelatedSubquery    = newKind(CategoryLowering, "correlated subquery is not permitted in this position: %s")
	ErrVariableLengthBounds  = newKind(CategoryLowering, "variable-length bounds are invalid: min=%d max=%d")
)

// Generation errors: internal invariant violations at SQL emission time.
var (
	ErrInternalInvariant = newKind(CategoryGeneration, "internal invariant violated while generating SQL: %s")
	ErrEmptyJoinList     = newKind(CategoryGeneration, "join node %q has no join conditions and is not a cross join")
)

// Parameter errors: bind-parameter mismatches at cache-substitution time.
var (
	ErrParameterMissing      = newKind(CategoryParameter, "parameter %q referenced by the template but not provided")
	ErrParameterTypeMismatch = newKind(CategoryParameter, "parameter %q has type %s, expected %s")
)
