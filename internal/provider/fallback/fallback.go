package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"coffeeinvest/internal/provider"
)

// Provider queries a list of providers in order and returns the first
// non-empty series. Context cancellation stops the walk immediately.
type Provider struct {
	Providers []provider.Provider
	Log       zerolog.Logger
}

func New(log zerolog.Logger, ps ...provider.Provider) *Provider {
	return &Provider{Providers: ps, Log: log}
}

func (f *Provider) Name() string {
	names := make([]string, len(f.Providers))
	for i, p := range f.Providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

func (f *Provider) Fetch(ctx context.Context, req provider.Request) (provider.Series, error) {
	if len(f.Providers) == 0 {
		return provider.Series{}, errors.New("no providers configured")
	}

	var errs []error
	allEmpty := true
	for _, p := range f.Providers {
		s, err := p.Fetch(ctx, req)
		if err == nil && len(s.Points) > 0 {
			if s.Source == "" {
				s.Source = p.Name()
			}
			return s, nil
		}
		if err == nil {
			err = provider.ErrNoData
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return provider.Series{}, ctxErr
		}
		if !errors.Is(err, provider.ErrNoData) {
			allEmpty = false
		}
		f.Log.Warn().Err(err).Str("provider", p.Name()).Str("request", req.String()).Msg("provider failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}

	joined := errors.Join(errs...)
	if allEmpty {
		return provider.Series{}, fmt.Errorf("%w for %s: %w", provider.ErrNoData, req, joined)
	}
	// a real failure outranks "no data" so callers do not report a missing symbol
	return provider.Series{}, fmt.Errorf("all providers failed: %v", joined)
}
