package redirect

import (
	"sync"
	"time"
)

// Entry is the cached resolution for an identifier. Code is the canonical
// code even when the identifier was an alias, so scan events aggregate
// under one key.
type Entry struct {
	Code        string
	Destination string
}

type cachedEntry struct {
	entry    Entry
	deadline time.Time
	gen      uint64
}

// LinkCache is the in-process identifier → destination cache. Every entry
// carries its own deadline: the dispatcher bounds it by the link's expiry,
// so a hit can never resurrect an expired link.
//
// Entries also carry the generation observed when the write began.
// Invalidate bumps the generation, so a write that raced an invalidation
// is never served even if it lands afterwards.
type LinkCache struct {
	store       sync.Map // map[identifier]cachedEntry
	generations sync.Map // map[identifier]uint64
	defaultTTL  time.Duration
}

func NewLinkCache(defaultTTL time.Duration) *LinkCache {
	return &LinkCache{
		defaultTTL: defaultTTL,
	}
}

func (c *LinkCache) Get(identifier string) (Entry, bool) {
	val, ok := c.store.Load(identifier)
	if !ok {
		return Entry{}, false
	}

	cached := val.(cachedEntry)
	if cached.gen != c.Generation(identifier) {
		c.store.CompareAndDelete(identifier, val)
		return Entry{}, false
	}
	if time.Now().After(cached.deadline) {
		// CompareAndDelete, not Delete: a plain delete could drop a fresh
		// entry written by a concurrent Set.
		c.store.CompareAndDelete(identifier, val)
		return Entry{}, false
	}

	return cached.entry, true
}

func (c *LinkCache) Set(identifier string, entry Entry, ttl time.Duration) {
	c.SetIfCurrent(identifier, entry, ttl, c.Generation(identifier))
}

// SetIfCurrent stores the entry unless the identifier was invalidated after
// gen was observed. Deferred writers capture the generation before reading
// the store, so an update's invalidation always wins over their stale data.
func (c *LinkCache) SetIfCurrent(identifier string, entry Entry, ttl time.Duration, gen uint64) {
	if ttl <= 0 {
		return
	}
	if gen != c.Generation(identifier) {
		return
	}
	c.store.Store(identifier, cachedEntry{
		entry:    entry,
		deadline: time.Now().Add(ttl),
		gen:      gen,
	})
}

// Generation returns the identifier's invalidation counter.
func (c *LinkCache) Generation(identifier string) uint64 {
	if val, ok := c.generations.Load(identifier); ok {
		return val.(uint64)
	}
	return 0
}

// Invalidate drops the entry for identifier and bumps its generation. The
// destination updater calls this synchronously after each store write.
func (c *LinkCache) Invalidate(identifier string) error {
	for {
		cur, ok := c.generations.Load(identifier)
		if !ok {
			if _, loaded := c.generations.LoadOrStore(identifier, uint64(1)); !loaded {
				break
			}
			continue
		}
		if c.generations.CompareAndSwap(identifier, cur, cur.(uint64)+1) {
			break
		}
	}
	c.store.Delete(identifier)
	return nil
}

func (c *LinkCache) DefaultTTL() time.Duration {
	return c.defaultTTL
}
