package refill

import "github.com/JakeFAU/portrait-quiz/internal/quiz"

// Cache is a bounded FIFO of entries. It is not safe for concurrent use;
// Service guards it.
type Cache struct {
	entries  []quiz.Entry
	capacity int
}

// NewCache creates an empty cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{entries: make([]quiz.Entry, 0, capacity), capacity: capacity}
}

// Push appends e and reports false when the cache is already full.
func (c *Cache) Push(e quiz.Entry) bool {
	if len(c.entries) >= c.capacity {
		return false
	}
	c.entries = append(c.entries, e)
	return true
}

// Pop removes and returns the oldest entry.
func (c *Cache) Pop() (quiz.Entry, bool) {
	if len(c.entries) == 0 {
		return quiz.Entry{}, false
	}
	e := c.entries[0]
	last := len(c.entries) - 1
	copy(c.entries, c.entries[1:])
	c.entries[last] = quiz.Entry{}
	c.entries = c.entries[:last]
	return e, true
}

// Contains reports whether an entry with the given name is cached.
func (c *Cache) Contains(name string) bool {
	for _, e := range c.entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Cap returns the capacity.
func (c *Cache) Cap() int { return c.capacity }

// Full reports whether no more entries fit.
func (c *Cache) Full() bool { return len(c.entries) >= c.capacity }
