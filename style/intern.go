package style

import (
	"math/rand/v2"
	"sync"
)

// internCache deduplicates immutable values by key. When full it evicts one
// random entry before inserting, so the size stays bounded without tracking
// recency.
type internCache[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]V
	keys     []string
	index    map[string]int
}

func newInternCache[V any](capacity int) *internCache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &internCache[V]{
		capacity: capacity,
		entries:  make(map[string]V, capacity),
		index:    make(map[string]int, capacity),
	}
}

// getOrCreate returns the value stored under key, creating it with create on
// a miss.
func (c *internCache[V]) getOrCreate(key string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		return v
	}
	if len(c.keys) >= c.capacity {
		c.evictOne()
	}
	v := create()
	c.entries[key] = v
	c.index[key] = len(c.keys)
	c.keys = append(c.keys, key)
	return v
}

func (c *internCache[V]) evictOne() {
	i := rand.IntN(len(c.keys))
	victim := c.keys[i]
	last := len(c.keys) - 1
	if i != last {
		moved := c.keys[last]
		c.keys[i] = moved
		c.index[moved] = i
	}
	c.keys = c.keys[:last]
	delete(c.entries, victim)
	delete(c.index, victim)
}

func (c *internCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}
