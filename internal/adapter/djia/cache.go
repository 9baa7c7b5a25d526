package djia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oliver/ghfeed/internal/domain"
	"github.com/oliver/ghfeed/internal/observability"
)

// retryWindow is the minimum time a failed lookup stays cached before the
// upstream is asked again.
const retryWindow = 30 * time.Minute

// CachedSource decorates a domain.OpeningSource with the process-wide opening
// table. Successful values are cached permanently (historical openings never
// change); failures are cached with an expiry derived from the expected
// publication instant. At most one upstream fetch is in flight per date:
// concurrent callers for the same date wait and then re-read the table.
type CachedSource struct {
	inner   domain.OpeningSource
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]chan struct{}

	served atomic.Bool
}

// entry is one row of the opening table: either a permanent success or a
// negative marker that expires.
type entry struct {
	opening domain.Opening
	err     error
	expiry  time.Time
}

// NewCachedSource creates the caching decorator around an upstream source.
func NewCachedSource(inner domain.OpeningSource, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		inner:    inner,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
		entries:  make(map[string]entry),
		inflight: make(map[string]chan struct{}),
	}
}

// Opening returns the cached opening value for date, fetching it from the
// upstream on a miss or once a cached failure has expired.
func (c *CachedSource) Opening(ctx context.Context, date time.Time) (domain.Opening, error) {
	key := domain.ISODate(date)

	for {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			if e.err == nil {
				c.mu.Unlock()
				c.metrics.CacheLookups.WithLabelValues("hit").Inc()
				c.served.Store(true)
				return e.opening, nil
			}
			if c.clock.Now().Before(e.expiry) {
				c.mu.Unlock()
				c.metrics.CacheLookups.WithLabelValues("negative_hit").Inc()
				return domain.Opening{}, e.err
			}
			// Stale marker: discard and fetch again.
			delete(c.entries, key)
		}

		if wait, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return domain.Opening{}, ctx.Err()
			}
		}

		done := make(chan struct{})
		c.inflight[key] = done
		c.mu.Unlock()

		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
		opening, err := c.fetch(ctx, date, key)

		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		close(done)

		return opening, err
	}
}

// CheckReadiness reports ready once at least one opening value has been
// served or preloaded.
func (c *CachedSource) CheckReadiness(_ context.Context) error {
	if !c.served.Load() {
		return errors.New("no opening value served yet")
	}
	return nil
}

// fetch performs the single upstream call for a date and records the outcome
// in the table.
func (c *CachedSource) fetch(ctx context.Context, date time.Time, key string) (domain.Opening, error) {
	opening, err := c.inner.Opening(ctx, date)
	if err == nil {
		c.mu.Lock()
		c.entries[key] = entry{opening: opening}
		c.mu.Unlock()
		c.served.Store(true)
		return opening, nil
	}

	// A caller-cancelled fetch must not poison the table for other callers.
	if ctx.Err() != nil {
		return domain.Opening{}, err
	}

	now := c.clock.Now()
	switch {
	case errors.Is(err, domain.ErrDataUnavailable):
		expiry := c.negativeExpiry(date, now)
		c.store(key, entry{err: err, expiry: expiry})
		c.logger.Warn("opening unavailable, caching failure",
			"date", key, "retry_after", expiry.UTC())
		return domain.Opening{}, err

	case errors.Is(err, errTransient):
		wrapped := fmt.Errorf("djia fetch for %s: %v: %w", key, err, domain.ErrDataUnavailable)
		c.store(key, entry{err: wrapped, expiry: now.Add(retryWindow)})
		c.logger.Error("upstream fetch failed, caching failure",
			"date", key, "error", err, "retry_after", now.Add(retryWindow).UTC())
		return domain.Opening{}, wrapped

	default:
		// Malformed payloads are unexpected: propagate without caching so the
		// next request hits the upstream again.
		c.logger.Error("unexpected upstream response", "date", key, "error", err)
		return domain.Opening{}, err
	}
}

func (c *CachedSource) store(key string, e entry) {
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	c.metrics.NegativeCached.Inc()
}

// negativeExpiry computes how long a failed lookup stays cached. When the
// expected publication instant for the date has already passed, the failure
// is a transient upstream glitch and gets the standard retry window. When it
// is still in the future, the caller asked for a date whose value cannot
// exist yet, and the marker holds until the next publication instant from
// now, never less than the retry window.
func (c *CachedSource) negativeExpiry(date, now time.Time) time.Time {
	floor := now.Add(retryWindow)

	pub := domain.PublicationInstant(date)
	if pub.Before(now) {
		return floor
	}

	next := domain.PublicationInstant(now.UTC())
	if next.Before(now) {
		next = domain.PublicationInstant(now.UTC().AddDate(0, 0, 1))
	}
	if next.Before(floor) {
		return floor
	}
	return next
}
