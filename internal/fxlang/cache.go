package fxlang

import "container/list"

// CallbackTable is the parsed form of one effect template's `callbacks`
// block: event name to ordering metadata + AST (§4.2).
type CallbackTable map[string]*Program

// Cache is the bounded LRU of parsed CallbackTables keyed by effect ID
// (§3.3 "parsed on first reference ... cached in an LRU of bounded size").
type Cache struct {
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	key   string
	table CallbackTable
}

// NewCache constructs an LRU cache with the given maximum number of
// effect IDs resident at once. A non-positive capacity disables eviction.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached table for effectID, promoting it to
// most-recently-used, or (nil, false) on a miss.
func (c *Cache) Get(effectID string) (CallbackTable, bool) {
	el, ok := c.items[effectID]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).table, true
}

// Put inserts or replaces the table for effectID, evicting the
// least-recently-used entry if the cache is over capacity.
func (c *Cache) Put(effectID string, table CallbackTable) {
	if el, ok := c.items[effectID]; ok {
		el.Value.(*cacheEntry).table = table
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: effectID, table: table})
	c.items[effectID] = el
	if c.capacity > 0 {
		for c.ll.Len() > c.capacity {
			back := c.ll.Back()
			if back == nil {
				break
			}
			c.ll.Remove(back)
			delete(c.items, back.Value.(*cacheEntry).key)
		}
	}
}

// Len reports the number of effect IDs currently resident.
func (c *Cache) Len() int { return c.ll.Len() }
