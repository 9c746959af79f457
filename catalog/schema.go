// Package catalog holds the Graph Catalog (component C1): the declarative
// mapping from Cypher node/relationship labels onto the relational tables
// and columns that back them. It is read-mostly at compile time; schema
// reloads are rare, coarse-grained events driven by an external management
// surface (§6.3 of SPEC_FULL.md).
package catalog

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/brahmand-sql/cyphersql/internal/similartext"
	"github.com/brahmand-sql/cyphersql/cyphererr"
)

// AnyLabel is the sentinel used for a polymorphic relationship endpoint
// whose concrete node label is resolved dynamically from pattern context
// rather than fixed in the schema.
const AnyLabel = "$any"

// NodeSchema maps a Cypher node label onto a table.
type NodeSchema struct {
	Label      string
	TableName  string
	IDColumn   string
	Properties map[string]string // cypher property name -> column/expression
	// Denormalized is true when Label has no table of its own; its
	// properties live on the edge rows of whichever relationship
	// references it (see RelationshipSchema.Properties for the
	// far-endpoint label).
	Denormalized bool
}

// Column resolves a Cypher property name to its backing column/expression.
// ok is false if the property is not mapped for this label.
func (n *NodeSchema) Column(property string) (string, bool) {
	col, ok := n.Properties[property]
	return col, ok
}

// PropertyNames returns the mapped property names, for "did you mean"
// suggestions.
func (n *NodeSchema) PropertyNames() []string {
	names := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		names = append(names, k)
	}
	return names
}

// RelationshipSchema maps a Cypher relationship type onto an edge table, or
// onto a slice of a heterogeneous edge table selected by TypeColumn/
// TypeValues.
type RelationshipSchema struct {
	TypeLabel  string
	TableName  string
	FromColumn string
	ToColumn   string

	// FromLabel/ToLabel constrain the endpoint node labels. Empty means
	// "inferred from the pattern"; AnyLabel means "polymorphic, resolved
	// per query".
	FromLabel string
	ToLabel   string

	Properties map[string]string

	// TypeColumn/TypeValues select this relationship's rows out of a
	// table shared by several relationship types (a heterogeneous edge
	// table), e.g. TypeColumn="rel_type", TypeValues=["FOLLOWS"].
	TypeColumn string
	TypeValues []string

	// IncidenceBitmap, when non-nil, is a pre-materialized incidence set
	// over this relationship's endpoint ids. GraphJoinInference records its
	// presence on the relationship alias's TableCtx.UseBitmapStrategy; the
	// joins it emits are the same edge-list joins either way (§4.3, §4.10
	// of SPEC_FULL.md).
	IncidenceBitmap *roaring.Bitmap
}

// IsBitmapBacked reports whether this relationship has a usable
// pre-materialized incidence view.
func (r *RelationshipSchema) IsBitmapBacked() bool {
	return r.IncidenceBitmap != nil && !r.IncidenceBitmap.IsEmpty()
}

// IsHeterogeneous reports whether this relationship shares its table with
// other relationship types, distinguished by TypeColumn/TypeValues.
func (r *RelationshipSchema) IsHeterogeneous() bool {
	return r.TypeColumn != "" && len(r.TypeValues) > 0
}

func (r *RelationshipSchema) Column(property string) (string, bool) {
	col, ok := r.Properties[property]
	return col, ok
}

func (r *RelationshipSchema) PropertyNames() []string {
	names := make([]string, 0, len(r.Properties))
	for k := range r.Properties {
		names = append(names, k)
	}
	return names
}

// Schema is a named bundle of node and relationship view declarations.
type Schema struct {
	Name          string
	Nodes         map[string]*NodeSchema
	Relationships map[string]*RelationshipSchema
}

// NewSchema builds an empty, named Schema ready for Nodes/Relationships to
// be populated by a loader (out of scope here; see SPEC_FULL.md §6.3).
func NewSchema(name string) *Schema {
	return &Schema{
		Name:          name,
		Nodes:         map[string]*NodeSchema{},
		Relationships: map[string]*RelationshipSchema{},
	}
}

// Node looks up a node label, returning a schema-error with a "did you
// mean" suggestion when the label is unknown.
func (s *Schema) Node(label string) (*NodeSchema, error) {
	if n, ok := s.Nodes[label]; ok {
		return n, nil
	}
	return nil, cyphererr.ErrLabelNotFound.New(label, similartext.FindFromMap(s.Nodes, label))
}

// Relationship looks up a relationship type, same suggestion behavior as
// Node.
func (s *Schema) Relationship(typeLabel string) (*RelationshipSchema, error) {
	if r, ok := s.Relationships[typeLabel]; ok {
		return r, nil
	}
	return nil, cyphererr.ErrRelationshipNotFound.New(typeLabel, similartext.FindFromMap(s.Relationships, typeLabel))
}

// Validate checks the schema invariants from SPEC_FULL.md §3.1: every
// relationship endpoint label is either AnyLabel or an existing node label,
// and every node has an id column unless it is denormalized (in which case
// it is identified by its owning relationship's endpoint id instead).
func (s *Schema) Validate() error {
	for _, n := range s.Nodes {
		if !n.Denormalized && n.IDColumn == "" {
			return cyphererr.ErrIDColumnMissing.New(n.Label)
		}
	}
	for _, r := range s.Relationships {
		for _, lbl := range []string{r.FromLabel, r.ToLabel} {
			if lbl == "" || lbl == AnyLabel {
				continue
			}
			if _, ok := s.Nodes[lbl]; !ok {
				return cyphererr.ErrLabelNotFound.New(lbl, similartext.FindFromMap(s.Nodes, lbl))
			}
		}
	}
	return nil
}
