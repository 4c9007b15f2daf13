// Package memo caches simulation results by their full parameter tuple.
// Results are a pure function of the parameters, so a hit is always valid.
package memo

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/outbreak/internal/domain/projection"
)

// defaultMaxSize bounds the cache when no option is given.
const defaultMaxSize = 1024

// Cache stores simulation results keyed by Key(params).
type Cache interface {
	// Get returns a copy of the cached result for key.
	Get(ctx context.Context, key string) (projection.Result, bool)

	// Put stores a copy of res under key, evicting the oldest entry when full.
	Put(ctx context.Context, key string, res projection.Result)

	Size() int64
}

// node is an entry of the insertion-ordered list.
type node struct {
	key        string
	res        projection.Result
	prev, next *node
}

func (n *node) reset() {
	n.key = ""
	n.res = projection.Result{}
	n.prev = nil
	n.next = nil
}

// inMemoryCache keeps entries in a map plus a list ordered from newest (head)
// to oldest (tail). maxSize <= 0 disables eviction.
type inMemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node
	tail     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryCache creates a cache with the given options.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*node)
	c.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}

	return c
}

func (c *inMemoryCache) Get(_ context.Context, key string) (projection.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return projection.Result{}, false
	}
	return n.res.Clone(), true
}

func (c *inMemoryCache) Put(_ context.Context, key string, res projection.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.res = res.Clone()
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.key = key
	n.res = res.Clone()
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.entries[key] = n
	c.size.Add(1)
}

// evictOldest drops the tail. Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	n := c.tail
	if n == nil {
		return
	}
	c.tail = n.prev
	if c.tail != nil {
		c.tail.next = nil
	} else {
		c.head = nil
	}
	delete(c.entries, n.key)
	n.reset()
	c.nodePool.Put(n)
	c.size.Add(-1)
}

func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}
