package domainlist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mikey/email-trust/internal/core"
	"go.uber.org/zap"
)

// fallbackDisposableDomains keeps the system from being fully blind to
// abuse when the disposable list cannot be fetched on a cold start
var fallbackDisposableDomains = []string{
	"mailinator.com",
	"guerrillamail.com",
	"10minutemail.com",
	"tempmail.com",
	"temp-mail.org",
	"throwawaymail.com",
	"yopmail.com",
	"trashmail.com",
	"getnada.com",
	"maildrop.cc",
	"sharklasers.com",
	"dispostable.com",
}

// Status is a snapshot of the cache for health reporting
type Status struct {
	DisposableCount    int             `json:"disposable_count"`
	DisposableSource   core.ListSource `json:"disposable_source"`
	AllowedCount       int             `json:"allowed_count"`
	AllowedSource      core.ListSource `json:"allowed_source"`
	LastRefreshAttempt time.Time       `json:"last_refresh_attempt"`
}

// Cache holds the two current domain sets and refreshes them when stale.
//
// Durability wins over freshness here: once the cache has data, readers are
// never blocked by a refresh and never see an empty set because an upstream
// mirror is down. A refresh failure degrades to stale-serving and still
// advances the attempt timestamp so a broken upstream is not hammered on
// every request.
type Cache struct {
	fetcher core.ListFetcher
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	disposable  atomic.Pointer[core.DomainSet]
	allowed     atomic.Pointer[core.DomainSet]
	lastAttempt atomic.Int64 // unix nanos, zero until the first attempt completes

	// refreshMu serializes refreshes; concurrent stale readers share a
	// single in-flight refresh instead of each triggering their own
	refreshMu sync.Mutex
}

// NewCache creates a cold cache. No fetch happens until the first read.
func NewCache(fetcher core.ListFetcher, ttl time.Duration, logger *zap.Logger) *Cache {
	c := &Cache{
		fetcher: fetcher,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
	}
	c.disposable.Store(core.EmptyDomainSet())
	c.allowed.Store(core.EmptyDomainSet())
	return c
}

// CurrentSets returns the committed disposable and allowed sets. A stale
// cache triggers a refresh first: synchronously when cold (there is nothing
// to serve yet), in the background once warm.
func (c *Cache) CurrentSets(ctx context.Context) (*core.DomainSet, *core.DomainSet) {
	c.refreshIfStale(ctx)
	return c.disposable.Load(), c.allowed.Load()
}

// Status returns a freshness snapshot for health reporting
func (c *Cache) Status() Status {
	disposable := c.disposable.Load()
	allowed := c.allowed.Load()
	var lastAttempt time.Time
	if nanos := c.lastAttempt.Load(); nanos != 0 {
		lastAttempt = time.Unix(0, nanos)
	}
	return Status{
		DisposableCount:    disposable.Len(),
		DisposableSource:   disposable.Source(),
		AllowedCount:       allowed.Len(),
		AllowedSource:      allowed.Source(),
		LastRefreshAttempt: lastAttempt,
	}
}

func (c *Cache) stale() bool {
	nanos := c.lastAttempt.Load()
	return nanos == 0 || c.now().Sub(time.Unix(0, nanos)) >= c.ttl
}

func (c *Cache) cold() bool {
	return c.lastAttempt.Load() == 0
}

func (c *Cache) refreshIfStale(ctx context.Context) {
	if !c.stale() {
		return
	}

	if c.cold() {
		// First read must wait for data; concurrent cold readers
		// queue on the mutex and find the cache warm afterwards
		c.refreshMu.Lock()
		if c.stale() {
			c.refresh(ctx)
		}
		c.refreshMu.Unlock()
		return
	}

	// Warm but past TTL: refresh opportunistically without blocking the
	// read path. TryLock keeps it to one in-flight refresh.
	if c.refreshMu.TryLock() {
		go func() {
			defer c.refreshMu.Unlock()
			if c.stale() {
				c.refresh(context.WithoutCancel(ctx))
			}
		}()
	}
}

type fetchOutcome struct {
	lines  []string
	source core.ListSource
	err    error
}

// refresh fetches both lists concurrently and commits each independently.
// A list whose fetch failed keeps its previous content; the other list's
// new content is still committed.
func (c *Cache) refresh(ctx context.Context) {
	disposableCh := make(chan fetchOutcome, 1)
	allowedCh := make(chan fetchOutcome, 1)

	go func() {
		lines, source, err := c.fetcher.Fetch(ctx, core.ListDisposable)
		disposableCh <- fetchOutcome{lines: lines, source: source, err: err}
	}()
	go func() {
		lines, source, err := c.fetcher.Fetch(ctx, core.ListAllowed)
		allowedCh <- fetchOutcome{lines: lines, source: source, err: err}
	}()

	disposableOut := <-disposableCh
	allowedOut := <-allowedCh
	now := c.now()

	c.commit(&c.disposable, core.ListDisposable, disposableOut, now)
	c.commit(&c.allowed, core.ListAllowed, allowedOut, now)

	// The attempt timestamp advances on success and on terminal failure
	// alike, so the TTL window also bounds retry frequency while degraded
	c.lastAttempt.Store(now.UnixNano())
}

// commit swaps in the result of one list fetch, honoring the invariant that
// a populated set is never replaced by an empty one
func (c *Cache) commit(slot *atomic.Pointer[core.DomainSet], kind core.ListKind, out fetchOutcome, now time.Time) {
	current := slot.Load()

	if out.err != nil {
		if kind == core.ListDisposable && current.Len() == 0 {
			slot.Store(core.NewDomainSet(fallbackDisposableDomains, core.SourceBuiltin, now))
			c.logger.Warn("Disposable list unavailable on cold start, using builtin fallback set",
				zap.Int("entries", len(fallbackDisposableDomains)))
			return
		}
		slot.Store(current.WithSource(core.SourceStale))
		c.logger.Warn("List refresh failed, serving stale data",
			zap.String("kind", string(kind)),
			zap.Int("entries", current.Len()),
			zap.Time("fetched_at", current.FetchedAt()))
		return
	}

	if len(out.lines) == 0 && current.Len() > 0 {
		slot.Store(current.WithSource(core.SourceStale))
		c.logger.Warn("List refresh returned no entries, keeping previous set",
			zap.String("kind", string(kind)),
			zap.Int("entries", current.Len()))
		return
	}

	slot.Store(core.NewDomainSet(out.lines, out.source, now))
	c.logger.Info("Committed refreshed domain list",
		zap.String("kind", string(kind)),
		zap.String("source", string(out.source)),
		zap.Int("entries", len(out.lines)))
}
