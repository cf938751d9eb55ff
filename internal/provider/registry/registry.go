// Package registry turns configuration into a ready provider chain.
package registry

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/rs/zerolog"

	"coffeeinvest/internal/config"
	"coffeeinvest/internal/httpx"
	"coffeeinvest/internal/provider"
	"coffeeinvest/internal/provider/alphavantage"
	"coffeeinvest/internal/provider/alphavantageadapter"
	"coffeeinvest/internal/provider/cache"
	"coffeeinvest/internal/provider/eodhd"
	"coffeeinvest/internal/provider/fallback"
	"coffeeinvest/internal/provider/ratelimit"
	"coffeeinvest/internal/provider/yahoo"
)

// ErrNoProviders is returned when configuration leaves nothing to query.
var ErrNoProviders = errors.New("no price providers enabled")

// Known lists the provider names accepted in config.Providers.
var Known = []string{"yahoo", "alphavantage", "eodhd"}

// Build creates every enabled provider in cfg.Providers order, wraps each
// with its rate limit and cache, and chains them for fallback.
// Providers missing credentials are skipped with a warning.
func Build(cfg config.Config, hc *httpx.Client, log zerolog.Logger) (provider.Provider, error) {
	var ps []provider.Provider
	for _, name := range cfg.Providers {
		p, limits, err := build(name, cfg, hc)
		if err != nil {
			log.Warn().Err(err).Str("provider", name).Msg("skipping provider")
			continue
		}
		if p == nil {
			continue
		}
		ps = append(ps, Wrap(p, limits, log))
		log.Debug().Str("provider", p.Name()).Msg("provider enabled")
	}
	if len(ps) == 0 {
		return nil, ErrNoProviders
	}
	if len(ps) == 1 {
		return ps[0], nil
	}
	return fallback.New(log, ps...), nil
}

// build returns a nil provider when name is disabled.
func build(name string, cfg config.Config, hc *httpx.Client) (provider.Provider, config.Limits, error) {
	switch name {
	case "yahoo":
		if !cfg.Yahoo.Enabled {
			return nil, config.Limits{}, nil
		}
		finance.SetHTTPClient(hc.HTTP)
		return yahoo.New(yahoo.Config{Adjusted: cfg.Yahoo.Adjusted}), cfg.Yahoo.Limits, nil

	case "alphavantage":
		av := cfg.AlphaVantage
		if !av.Enabled {
			return nil, config.Limits{}, nil
		}
		opts := []alphavantage.Option{
			alphavantage.WithAPIKey(av.APIKey),
			alphavantage.WithHTTPClient(hc.HTTP),
			alphavantage.WithHeader(http.Header{"User-Agent": []string{hc.UserAgent}}),
		}
		if av.Endpoint != "" {
			opts = append(opts, alphavantage.WithBaseURL(av.Endpoint))
		}
		client, err := alphavantage.New(opts...)
		if err != nil {
			return nil, config.Limits{}, err
		}
		return alphavantageadapter.New(alphavantageadapter.Config{Adjusted: av.Adjusted}, client), av.Limits, nil

	case "eodhd":
		e := cfg.EODHD
		if !e.Enabled {
			return nil, config.Limits{}, nil
		}
		if e.APIKey == "" {
			return nil, config.Limits{}, fmt.Errorf("eodhd: EODHD_API_KEY not set")
		}
		return eodhd.New(eodhd.Config{
			URL:      e.Endpoint,
			APIKey:   e.APIKey,
			Exchange: e.Exchange,
			Adjusted: e.Adjusted,
		}, hc), e.Limits, nil
	}
	return nil, config.Limits{}, fmt.Errorf("unknown provider %q", name)
}

// Wrap applies rate limiting then caching. A token bucket is preferred when
// requests per minute are set, otherwise a minimum interval.
func Wrap(p provider.Provider, l config.Limits, log zerolog.Logger) provider.Provider {
	switch {
	case l.MaxRequestsPerMinute > 0:
		p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.PerMinute(l.MaxRequestsPerMinute, l.Burst), Log: log}
	case l.MinRequestIntervalSec > 0:
		p = &ratelimit.MinInterval{P: p, Interval: time.Duration(l.MinRequestIntervalSec) * time.Second, Log: log}
	}
	if l.CacheTTLSeconds > 0 {
		p = &cache.Provider{
			P:        p,
			TTL:      time.Duration(l.CacheTTLSeconds) * time.Second,
			MaxItems: l.CacheMaxItems,
			Log:      log.With().Str("provider", p.Name()).Logger(),
		}
	}
	return p
}
