package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmand-sql/cyphersql/cyphererr"
)

func personSchema() *Schema {
	s := NewSchema("social")
	s.Nodes["Person"] = &NodeSchema{
		Label:      "Person",
		TableName:  "people",
		IDColumn:   "id",
		Properties: map[string]string{"name": "full_name", "age": "age"},
	}
	s.Relationships["FOLLOWS"] = &RelationshipSchema{
		TypeLabel:  "FOLLOWS",
		TableName:  "follows",
		FromColumn: "follower_id",
		ToColumn:   "followee_id",
		FromLabel:  "Person",
		ToLabel:    "Person",
	}
	return s
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(personSchema()))

	got, ok := r.Get("social")
	require.True(t, ok)
	assert.Equal(t, "social", got.Name)
}

func TestRegistryRegisterRejectsInvalidSchema(t *testing.T) {
	r := NewRegistry()
	bad := NewSchema("broken")
	bad.Nodes["Orphan"] = &NodeSchema{Label: "Orphan", TableName: "orphans"}

	err := r.Register(bad)
	require.Error(t, err)
	assert.Equal(t, cyphererr.CategorySchema, cyphererr.Category(err))
}

func TestRegistryResolveUnknownSuggests(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(personSchema()))

	_, err := r.Resolve("socal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe you mean social")
}

type fakeInvalidator struct{ invalidated []string }

func (f *fakeInvalidator) InvalidateSchema(name string) { f.invalidated = append(f.invalidated, name) }

func TestRegistryNotifiesInvalidatorsOnRegister(t *testing.T) {
	r := NewRegistry()
	inv := &fakeInvalidator{}
	r.OnInvalidate(inv)

	require.NoError(t, r.Register(personSchema()))
	assert.Equal(t, []string{"social"}, inv.invalidated)
}

func TestSchemaNodeNotFoundSuggestion(t *testing.T) {
	s := personSchema()
	_, err := s.Node("Persom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe you mean Person")
}

func TestSchemaValidateMissingIDColumn(t *testing.T) {
	s := NewSchema("broken")
	s.Nodes["Thing"] = &NodeSchema{Label: "Thing", TableName: "things"}
	err := s.Validate()
	require.Error(t, err)
	assert.Equal(t, cyphererr.CategorySchema, cyphererr.Category(err))
}

func TestRelationshipIsBitmapBackedFalseWhenNil(t *testing.T) {
	r := &RelationshipSchema{}
	assert.False(t, r.IsBitmapBacked())
}

func TestRelationshipIsHeterogeneous(t *testing.T) {
	r := &RelationshipSchema{TypeColumn: "rel_type", TypeValues: []string{"FOLLOWS"}}
	assert.True(t, r.IsHeterogeneous())

	plain := &RelationshipSchema{}
	assert.False(t, plain.IsHeterogeneous())
}
