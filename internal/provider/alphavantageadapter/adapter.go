package alphavantageadapter

import (
	"context"
	"fmt"

	"coffeeinvest/internal/aggregate"
	"coffeeinvest/internal/provider"
	"coffeeinvest/internal/provider/alphavantage"
)

type Config struct {
	Name string // display name, default: AlphaVantage
	// Adjusted selects the split/dividend adjusted close instead of the raw close.
	Adjusted bool
}

// MonthlySource is the part of the Alpha Vantage client the adapter needs.
type MonthlySource interface {
	GetMonthlyAdjusted(ctx context.Context, symbol string, opts ...alphavantage.Option) ([]alphavantage.MonthlyBar, error)
}

type Adapter struct {
	cfg    Config
	client MonthlySource
}

func New(cfg Config, client MonthlySource) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "AlphaVantage"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Fetch downloads the full monthly history and trims it to the request range.
func (a *Adapter) Fetch(ctx context.Context, req provider.Request) (provider.Series, error) {
	bars, err := a.client.GetMonthlyAdjusted(ctx, req.Symbol)
	if err != nil {
		return provider.Series{}, fmt.Errorf("%s: %w", a.cfg.Name, err)
	}

	points := make([]provider.Point, 0, len(bars))
	for _, b := range bars {
		price := b.Close
		if a.cfg.Adjusted {
			price = b.AdjustedClose
		}
		points = append(points, provider.Point{Date: b.Date, Close: price})
	}

	points = aggregate.Clean(points, req)
	if len(points) == 0 {
		return provider.Series{}, fmt.Errorf("%s: %w for %s", a.cfg.Name, provider.ErrNoData, req)
	}
	return provider.Series{Symbol: req.Symbol, Source: a.cfg.Name, Points: points}, nil
}
