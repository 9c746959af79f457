package catalog

import (
	"sync"

	"github.com/brahmand-sql/cyphersql/cyphererr"
	"github.com/brahmand-sql/cyphersql/internal/similartext"
)

// Invalidator is implemented by the query cache; the registry calls it on
// every schema reload so cached templates scoped to that schema are
// dropped (SPEC_FULL.md §5, §8 "Cache coherence").
type Invalidator interface {
	InvalidateSchema(name string)
}

// Registry is the process-wide, read-mostly table of graph schemas. Reads
// take a shared lock; a reload takes the exclusive lock and notifies any
// registered Invalidator.
type Registry struct {
	mu            sync.RWMutex
	schemas       map[string]*Schema
	invalidators  []Invalidator
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: map[string]*Schema{}}
}

// Register validates and installs schema, replacing any prior schema of
// the same name and invalidating cache entries scoped to it.
func (r *Registry) Register(schema *Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.schemas[schema.Name] = schema
	invalidators := append([]Invalidator(nil), r.invalidators...)
	r.mu.Unlock()

	for _, inv := range invalidators {
		inv.InvalidateSchema(schema.Name)
	}
	return nil
}

// OnInvalidate subscribes inv to schema-reload notifications.
func (r *Registry) OnInvalidate(inv Invalidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidators = append(r.invalidators, inv)
}

// Get returns the named schema. The bool is false if no such schema has
// been registered.
func (r *Registry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Resolve is Get with the ErrSchemaNotFound error the compiler's boundary
// contract (SPEC_FULL.md §6.1) returns for an unknown schema name.
func (r *Registry) Resolve(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.schemas[name]; ok {
		return s, nil
	}
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	return nil, cyphererr.ErrSchemaNotFound.New(name, similartext.Find(names, name))
}

// Names returns the currently-registered schema names, used for "did you
// mean" suggestions on an unknown schema name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	return names
}
