// Package querycache implements the Query Cache (C10) from SPEC_FULL.md
// §4.8: a bounded in-memory map from (normalized query text, schema name)
// to a generated SQL template, grounded on the teacher's own
// PreparedDataCache (engine.go) — a mutex-guarded, per-key nested map — but
// extended with an eviction bound the teacher's session-scoped cache never
// needed.
package querycache

import (
	"container/list"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	uuid "github.com/satori/go.uuid"
)

// Template is one cached compilation result: the generated SQL text, still
// carrying unbound `$name` parameter placeholders, plus the stable id a
// cache hit reports back to the caller (SPEC_FULL.md §6.1).
type Template struct {
	ID     string
	SQL    string
	Schema string
}

// Cache is a bounded, schema-invalidatable map of Template values. The zero
// value is not usable; construct with New. Cache implements
// catalog.Invalidator so a Registry can wire it up with OnInvalidate.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	index      map[uint64]*list.Element
	order      *list.List // front = most recently used
}

type cacheEntry struct {
	key  uint64
	tmpl *Template
}

// New returns an empty Cache holding at most maxEntries templates. A
// non-positive maxEntries means unbounded, matching the teacher's own
// PreparedDataCache (no eviction at all).
func New(maxEntries int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		index:      map[uint64]*list.Element{},
		order:      list.New(),
	}
}

// NormalizeQuery collapses runs of whitespace and trims the ends, so
// cosmetic differences in an otherwise identical query text share one
// cache entry.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func cacheKey(normalizedQuery, schemaName string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(normalizedQuery)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(schemaName)
	return h.Sum64()
}

// Get looks up the template for (normalizedQuery, schemaName), promoting it
// to most-recently-used on a hit.
func (c *Cache) Get(normalizedQuery, schemaName string) (*Template, bool) {
	key := cacheKey(normalizedQuery, schemaName)

	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).tmpl, true
}

// Put stores sql as the template for (normalizedQuery, schemaName),
// assigning it a fresh template id, and evicts the least-recently-used
// entry if this insertion pushes the cache over its bound. An existing
// entry for the same key is replaced in place, keeping its id stable
// across a re-compile of an unchanged query (the id identifies a cache
// slot, not a specific SQL string).
func (c *Cache) Put(normalizedQuery, schemaName, sql string) *Template {
	key := cacheKey(normalizedQuery, schemaName)

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.tmpl.SQL = sql
		c.order.MoveToFront(el)
		return entry.tmpl
	}

	tmpl := &Template{ID: uuid.NewV4().String(), SQL: sql, Schema: schemaName}
	el := c.order.PushFront(&cacheEntry{key: key, tmpl: tmpl})
	c.index[key] = el

	if c.maxEntries > 0 {
		for c.order.Len() > c.maxEntries {
			oldest := c.order.Back()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*cacheEntry).key)
		}
	}
	return tmpl
}

// InvalidateSchema drops every cached template scoped to schemaName,
// satisfying catalog.Invalidator so a Registry reload can wire straight
// into this cache via Registry.OnInvalidate.
func (c *Cache) InvalidateSchema(schemaName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, el := range c.index {
		if el.Value.(*cacheEntry).tmpl.Schema == schemaName {
			c.order.Remove(el)
			delete(c.index, key)
		}
	}
}

// Len reports the current entry count, for tests and metrics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// ReplanMode controls whether Compile consults/populates the cache, driven
// by a leading `CYPHER replan=...` directive (§4.8, §6.4).
type ReplanMode int

const (
	ReplanDefault ReplanMode = iota
	ReplanSkip
	ReplanForce
)

// StripReplanDirective removes a leading `CYPHER replan=skip|force|default`
// token from query, returning the remaining query text and the mode it
// selected. Absence of the directive is ReplanDefault.
func StripReplanDirective(query string) (string, ReplanMode) {
	trimmed := strings.TrimSpace(query)
	const prefix = "CYPHER"
	if !strings.HasPrefix(strings.ToUpper(trimmed), prefix) {
		return query, ReplanDefault
	}
	rest := strings.TrimSpace(trimmed[len(prefix):])
	if !strings.HasPrefix(strings.ToLower(rest), "replan=") {
		return query, ReplanDefault
	}
	directive, remainder := rest, ""
	if i := strings.IndexAny(rest, " \t\r\n"); i >= 0 {
		directive, remainder = rest[:i], rest[i+1:]
	}
	value := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(directive, "replan=")))
	switch value {
	case "skip":
		return remainder, ReplanSkip
	case "force":
		return remainder, ReplanForce
	case "default":
		return remainder, ReplanDefault
	default:
		return query, ReplanDefault
	}
}
