package style

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternCache_Bounded(t *testing.T) {
	c := newInternCache[int](4)
	created := 0
	for i := range 20 {
		c.getOrCreate(fmt.Sprint(i), func() int { created++; return i })
	}
	assert.Equal(t, 4, c.len())
	assert.Equal(t, 20, created)

	// a hit does not create
	key := c.keys[0]
	v := c.getOrCreate(key, func() int { t.Fatal("created on hit"); return 0 })
	assert.Equal(t, c.entries[key], v)
	assert.Len(t, c.index, 4)
	for i, k := range c.keys {
		assert.Equal(t, i, c.index[k])
	}
}

func TestInternCache_Concurrent(t *testing.T) {
	c := newInternCache[string](8)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Go(func() {
			for j := range 100 {
				key := fmt.Sprint((i + j) % 12)
				assert.Equal(t, "v"+key, c.getOrCreate(key, func() string { return "v" + key }))
			}
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, c.len(), 8)
}
