package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"coffeeinvest/internal/provider"
)

// DefaultFetchTimeout applies when neither FetchTimeout nor the caller sets a bound.
const DefaultFetchTimeout = 30 * time.Second

// entry stores a cached series with expiry.
type entry struct {
	expiresAt time.Time
	series    provider.Series
}

// Provider caches series per request for a TTL.
// Concurrent misses for the same request share one upstream call, which is
// not canceled when one of the waiting callers gives up.
// Errors are never cached.
type Provider struct {
	P        provider.Provider
	TTL      time.Duration
	MaxItems int
	Log      zerolog.Logger

	// FetchTimeout bounds a shared upstream call when the caller has no deadline.
	FetchTimeout time.Duration

	mu    sync.RWMutex
	items map[string]entry // key: Request.Key()
	sf    singleflight.Group

	now func() time.Time
}

func (c *Provider) Name() string { return c.P.Name() }

// Fetch returns the cached series for req when still valid.
func (c *Provider) Fetch(ctx context.Context, req provider.Request) (provider.Series, error) {
	if c.TTL <= 0 {
		return c.P.Fetch(ctx, req)
	}

	key := req.Key()
	if s, ok := c.lookup(key); ok {
		c.Log.Debug().Str("provider", c.P.Name()).Str("request", req.String()).Msg("cache hit")
		return s, nil
	}

	ch := c.sf.DoChan(key, func() (any, error) {
		// the shared call outlives any single caller; only a deadline bounds it
		fctx, cancel := c.detach(ctx)
		defer cancel()
		s, err := c.P.Fetch(fctx, req)
		if err != nil {
			return provider.Series{}, err
		}
		c.store(key, s)
		return s, nil
	})

	select {
	case <-ctx.Done():
		return provider.Series{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.Log.Debug().Str("provider", c.P.Name()).Str("request", req.String()).Msg("coalesced fetch")
		}
		if res.Err != nil {
			return provider.Series{}, res.Err
		}
		return res.Val.(provider.Series), nil
	}
}

// detach drops ctx cancellation but keeps its values and deadline, falling
// back to FetchTimeout or DefaultFetchTimeout.
func (c *Provider) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if dl, ok := ctx.Deadline(); ok {
		return context.WithDeadline(base, dl)
	}
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return context.WithTimeout(base, timeout)
}

// Len reports the number of cached entries, expired or not.
func (c *Provider) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Provider) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Provider) lookup(key string) (provider.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || !c.clock().Before(e.expiresAt) {
		return provider.Series{}, false
	}
	return e.series, true
}

func (c *Provider) store(key string, s provider.Series) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[key] = entry{expiresAt: now.Add(c.TTL), series: s}

	// best-effort cap: drop expired first, then arbitrary keys
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		for k, v := range c.items {
			if !now.Before(v.expiresAt) {
				delete(c.items, k)
			}
		}
		for k := range c.items {
			if len(c.items) <= c.MaxItems {
				break
			}
			if k != key {
				delete(c.items, k)
			}
		}
	}
}
