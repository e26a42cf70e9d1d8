package llm

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/PabloGalante/agronova/internal/domain"
)

const DefaultCacheSize = 128

// CacheKey is a digest over every entry of an invocation context.
type CacheKey [32]byte

// ContextKey hashes roles and contents of all entries, so the same question under a
// different topic or history gets a different key.
func ContextKey(ic domain.InvocationContext) CacheKey {
	h := blake3.New()
	var n [8]byte
	for _, m := range ic.Entries {
		binary.BigEndian.PutUint64(n[:], uint64(len(m.Role)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(m.Role))
		binary.BigEndian.PutUint64(n[:], uint64(len(m.Content)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(m.Content))
	}

	var key CacheKey
	copy(key[:], h.Sum(nil))
	return key
}

// CachingInvoker memoizes successful answers of another invoker. Failures are never cached.
// Eviction is FIFO once size entries are held.
type CachingInvoker struct {
	next domain.ModelInvoker
	size int

	mu      sync.Mutex
	entries map[CacheKey]string
	order   []CacheKey
}

func NewCachingInvoker(next domain.ModelInvoker, size int) *CachingInvoker {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachingInvoker{
		next:    next,
		size:    size,
		entries: make(map[CacheKey]string, size),
	}
}

func (c *CachingInvoker) Invoke(ctx context.Context, ic domain.InvocationContext) (string, error) {
	key := ContextKey(ic)

	c.mu.Lock()
	if text, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return text, nil
	}
	c.mu.Unlock()

	text, err := c.next.Invoke(ctx, ic)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.size {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = text

	return text, nil
}

// Len reports how many answers are cached.
func (c *CachingInvoker) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ domain.ModelInvoker = (*CachingInvoker)(nil)
