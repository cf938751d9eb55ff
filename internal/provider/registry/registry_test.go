package registry

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"coffeeinvest/internal/config"
	"coffeeinvest/internal/httpx"
	"coffeeinvest/internal/provider"
	"coffeeinvest/internal/provider/cache"
	"coffeeinvest/internal/provider/fallback"
	"coffeeinvest/internal/provider/providermock"
	"coffeeinvest/internal/provider/ratelimit"
)

func onlyKeys(cfg config.Config) config.Config {
	cfg.AlphaVantage.APIKey = ""
	cfg.EODHD.APIKey = ""
	return cfg
}

func TestBuild_SkipsProvidersWithoutKeys(t *testing.T) {
	cfg := onlyKeys(config.Default())

	p, err := Build(cfg, httpx.New(time.Second), zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "Yahoo", p.Name())
}

func TestBuild_ChainsInConfiguredOrder(t *testing.T) {
	cfg := onlyKeys(config.Default())
	cfg.Providers = []string{"eodhd", "yahoo", "alphavantage"}
	cfg.EODHD.APIKey = "k1"
	cfg.AlphaVantage.APIKey = "k2"

	p, err := Build(cfg, httpx.New(time.Second), zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &fallback.Provider{}, p)
	require.Equal(t, "EODHD>Yahoo>AlphaVantage", p.Name())
}

func TestBuild_NothingEnabled(t *testing.T) {
	cfg := onlyKeys(config.Default())
	cfg.Yahoo.Enabled = false

	_, err := Build(cfg, httpx.New(time.Second), zerolog.Nop())
	require.ErrorIs(t, err, ErrNoProviders)
}

func TestBuild_UnknownNameSkipped(t *testing.T) {
	cfg := onlyKeys(config.Default())
	cfg.Providers = []string{"bloomberg", "yahoo"}

	p, err := Build(cfg, httpx.New(time.Second), zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "Yahoo", p.Name())
}

func TestWrap(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := providermock.NewMockProvider(ctrl)
	base.EXPECT().Name().Return("Fake").AnyTimes()

	t.Run("token bucket and cache", func(t *testing.T) {
		p := Wrap(base, config.Limits{MaxRequestsPerMinute: 60, CacheTTLSeconds: 10}, zerolog.Nop())
		c, ok := p.(*cache.Provider)
		require.True(t, ok)
		require.IsType(t, &ratelimit.TokenBucketProvider{}, c.P)
		require.Equal(t, 10*time.Second, c.TTL)
	})

	t.Run("min interval only", func(t *testing.T) {
		p := Wrap(base, config.Limits{MinRequestIntervalSec: 2}, zerolog.Nop())
		m, ok := p.(*ratelimit.MinInterval)
		require.True(t, ok)
		require.Equal(t, 2*time.Second, m.Interval)
	})

	t.Run("no limits", func(t *testing.T) {
		require.Same(t, provider.Provider(base), Wrap(base, config.Limits{}, zerolog.Nop()))
	})
}

func TestWrap_CachesRepeatedRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := providermock.NewMockProvider(ctrl)
	base.EXPECT().Name().Return("Fake").AnyTimes()
	req, err := provider.YearRange("AAPL", 2020, 2021)
	require.NoError(t, err)
	base.EXPECT().Fetch(gomock.Any(), req).Return(provider.Series{Symbol: "AAPL", Points: []provider.Point{{}}}, nil).Times(1)

	p := Wrap(base, config.Limits{CacheTTLSeconds: 60}, zerolog.Nop())
	for range 3 {
		s, err := p.Fetch(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "AAPL", s.Symbol)
	}
}
