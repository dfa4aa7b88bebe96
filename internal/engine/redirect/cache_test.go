package redirect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinkCache_SetGet(t *testing.T) {
	cache := NewLinkCache(time.Minute)

	cache.Set("abc1234", Entry{Code: "abc1234", Destination: "https://example.com"}, time.Minute)

	entry, ok := cache.Get("abc1234")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", entry.Destination)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestLinkCache_EntryExpires(t *testing.T) {
	cache := NewLinkCache(time.Minute)

	cache.Set("abc1234", Entry{Code: "abc1234", Destination: "https://example.com"}, 10*time.Millisecond)

	_, ok := cache.Get("abc1234")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = cache.Get("abc1234")
	assert.False(t, ok, "entry must lapse after its own TTL")
}

func TestLinkCache_Invalidate(t *testing.T) {
	cache := NewLinkCache(time.Minute)

	cache.Set("abc1234", Entry{Code: "abc1234", Destination: "https://example.com"}, time.Minute)
	assert.NoError(t, cache.Invalidate("abc1234"))

	_, ok := cache.Get("abc1234")
	assert.False(t, ok)

	// Invalidating an absent key is a no-op.
	assert.NoError(t, cache.Invalidate("missing"))
}

func TestLinkCache_SetIfCurrentDiscardedAfterInvalidate(t *testing.T) {
	cache := NewLinkCache(time.Minute)

	// A writer observes the generation, then an invalidation lands before
	// its Set does. The late write must be discarded.
	gen := cache.Generation("abc1234")
	assert.NoError(t, cache.Invalidate("abc1234"))

	cache.SetIfCurrent("abc1234", Entry{Code: "abc1234", Destination: "https://example.com"}, time.Minute, gen)

	_, ok := cache.Get("abc1234")
	assert.False(t, ok, "write initiated before the invalidation must not be served")

	// A write observing the post-invalidation generation goes through.
	cache.SetIfCurrent("abc1234", Entry{Code: "abc1234", Destination: "https://example.org"}, time.Minute, cache.Generation("abc1234"))

	entry, ok := cache.Get("abc1234")
	assert.True(t, ok)
	assert.Equal(t, "https://example.org", entry.Destination)
}

func TestLinkCache_NonPositiveTTLNotStored(t *testing.T) {
	cache := NewLinkCache(time.Minute)

	cache.Set("abc1234", Entry{Code: "abc1234", Destination: "https://example.com"}, 0)
	_, ok := cache.Get("abc1234")
	assert.False(t, ok)

	cache.Set("abc1234", Entry{Code: "abc1234", Destination: "https://example.com"}, -time.Second)
	_, ok = cache.Get("abc1234")
	assert.False(t, ok)
}
