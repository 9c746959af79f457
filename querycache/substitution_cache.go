package querycache

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// SubstitutionCache memoizes Substitute's output for a given (template id,
// parameter values) pair, so a hot query re-run with the same literal
// arguments skips the placeholder-rewrite pass entirely. It is a separate,
// independently-bounded cache from Cache itself: Cache holds one entry per
// distinct query text, this one holds one entry per distinct (template,
// parameter values) combination, which can be far larger for a
// heavily-parameterized query hit from many callers.
type SubstitutionCache struct {
	mu         sync.Mutex
	maxEntries int
	index      map[uint64]*list.Element
	order      *list.List
}

type substitutionEntry struct {
	key uint64
	sql string
}

// NewSubstitutionCache returns an empty SubstitutionCache holding at most
// maxEntries entries; a non-positive maxEntries leaves it unbounded.
func NewSubstitutionCache(maxEntries int) *SubstitutionCache {
	return &SubstitutionCache{
		maxEntries: maxEntries,
		index:      map[uint64]*list.Element{},
		order:      list.New(),
	}
}

func substitutionKey(templateID string, params map[string]interface{}) (uint64, error) {
	paramHash, err := hashedParams(params)
	if err != nil {
		return 0, err
	}
	h := xxhash.New()
	_, _ = h.WriteString(templateID)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(paramHash >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64(), nil
}

// Get returns the memoized substitution, if any.
func (c *SubstitutionCache) Get(templateID string, params map[string]interface{}) (string, bool, error) {
	key, err := substitutionKey(templateID, params)
	if err != nil {
		return "", false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return "", false, nil
	}
	c.order.MoveToFront(el)
	return el.Value.(*substitutionEntry).sql, true, nil
}

// Put memoizes sql as the substitution result for (templateID, params).
func (c *SubstitutionCache) Put(templateID string, params map[string]interface{}, sql string) error {
	key, err := substitutionKey(templateID, params)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		el.Value.(*substitutionEntry).sql = sql
		c.order.MoveToFront(el)
		return nil
	}
	el := c.order.PushFront(&substitutionEntry{key: key, sql: sql})
	c.index[key] = el
	if c.maxEntries > 0 {
		for c.order.Len() > c.maxEntries {
			oldest := c.order.Back()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*substitutionEntry).key)
		}
	}
	return nil
}

// Len reports the current entry count.
func (c *SubstitutionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
