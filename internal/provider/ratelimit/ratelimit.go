// Package ratelimit gates provider calls so upstream quotas are respected.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"coffeeinvest/internal/provider"
)

// MinInterval spaces calls to P at least Interval apart. Each caller reserves
// the next free slot, so concurrent callers queue instead of firing together.
// A caller whose context ends while queued gives up its call.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration
	Log      zerolog.Logger

	mu   sync.Mutex
	next time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Fetch(ctx context.Context, req provider.Request) (provider.Series, error) {
	if m.Interval > 0 {
		if err := sleep(ctx, m.reserve()); err != nil {
			return provider.Series{}, err
		}
	}
	return m.P.Fetch(ctx, req)
}

// reserve claims a slot and returns how long to wait for it.
func (m *MinInterval) reserve() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	slot := m.next
	if slot.Before(now) {
		slot = now
	}
	m.next = slot.Add(m.Interval)
	wait := slot.Sub(now)
	if wait > 0 {
		m.Log.Debug().Str("provider", m.P.Name()).Dur("wait", wait).Msg("rate limited")
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
