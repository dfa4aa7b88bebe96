package redirect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkr/internal/engine/links"
	apperrors "linkr/internal/pkg/errors"
	"linkr/internal/pkg/tasks"
)

// Outcome is the terminal state of one resolution.
type Outcome int

const (
	OutcomeRedirect Outcome = iota
	OutcomeNotFound
	OutcomeGone
)

type Resolution struct {
	Outcome     Outcome
	Destination string
}

// LinkFinder is the store-side lookup the dispatcher falls back to on a
// cache miss.
type LinkFinder interface {
	FindByIdentifier(ctx context.Context, identifier string) (*links.Link, error)
}

// Dispatcher drives a resolution: cache first, store on miss, cache
// re-primed and a scan event logged as fire-and-forget side effects. Side
// effect failures never change the outcome or delay the response.
type Dispatcher struct {
	store        LinkFinder
	cache        *LinkCache
	scans        *ScanLogger
	runner       tasks.Runner
	storeTimeout time.Duration
}

func NewDispatcher(store LinkFinder, cache *LinkCache, scans *ScanLogger, runner tasks.Runner, storeTimeout time.Duration) *Dispatcher {
	if storeTimeout <= 0 {
		storeTimeout = 2 * time.Second
	}
	return &Dispatcher{
		store:        store,
		cache:        cache,
		scans:        scans,
		runner:       runner,
		storeTimeout: storeTimeout,
	}
}

// Resolve maps an identifier to its destination. A nil cache degrades to
// store-only lookups; a store failure is fatal for the request.
func (d *Dispatcher) Resolve(ctx context.Context, identifier string, meta ScanMeta) (Resolution, error) {
	var gen uint64
	if d.cache != nil {
		if entry, ok := d.cache.Get(identifier); ok {
			d.submitScan(entry.Code, meta)
			return Resolution{Outcome: OutcomeRedirect, Destination: entry.Destination}, nil
		}
		// Observed before the store read: an invalidation landing after
		// this point must beat the deferred prime below.
		gen = d.cache.Generation(identifier)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, d.storeTimeout)
	defer cancel()

	link, err := d.store.FindByIdentifier(lookupCtx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return Resolution{Outcome: OutcomeNotFound}, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Resolution{}, fmt.Errorf("%w: %v", apperrors.ErrStoreTimeout, err)
		}
		return Resolution{}, err
	}

	now := time.Now()
	if link.Expired(now) {
		return Resolution{Outcome: OutcomeGone}, nil
	}

	if d.cache != nil {
		entry := Entry{Code: link.Code, Destination: link.Destination}
		d.submit("cache.prime", func() {
			// The TTL is derived when the task actually runs, not when it
			// was queued: a prime delayed past the link's expiry must not
			// write an entry that outlives it.
			ttl := link.CacheTTL(d.cache.DefaultTTL(), time.Now())
			d.cache.SetIfCurrent(identifier, entry, ttl, gen)
		})
	}

	d.submitScan(link.Code, meta)

	return Resolution{Outcome: OutcomeRedirect, Destination: link.Destination}, nil
}

// Prime populates the cache for a freshly created link.
func (d *Dispatcher) Prime(link *links.Link) {
	if d.cache == nil {
		return
	}
	entry := Entry{Code: link.Code, Destination: link.Destination}
	ttl := link.CacheTTL(d.cache.DefaultTTL(), time.Now())
	d.cache.Set(link.Code, entry, ttl)
	if link.Alias != nil {
		d.cache.Set(*link.Alias, entry, ttl)
	}
}

func (d *Dispatcher) submitScan(code string, meta ScanMeta) {
	if d.scans == nil {
		return
	}
	occurredAt := time.Now()
	d.submit("scan.log", func() {
		d.scans.LogScan(code, meta, occurredAt)
	})
}

func (d *Dispatcher) submit(name string, fn func()) {
	if d.runner != nil {
		d.runner.Submit(name, fn)
		return
	}
	fn()
}
