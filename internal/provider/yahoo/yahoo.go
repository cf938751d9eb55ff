// Package yahoo reads monthly bars from Yahoo Finance through finance-go.
package yahoo

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"coffeeinvest/internal/aggregate"
	"coffeeinvest/internal/provider"
)

// Config controls the Yahoo provider behavior.
type Config struct {
	Name     string
	Adjusted bool // use the adjusted close
}

// BarIter is the iteration surface of *chart.Iter. Meta is valid once
// iteration has started.
type BarIter interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
	Meta() finance.ChartMeta
}

// ChartFunc issues a chart query. chart.Get in production.
type ChartFunc func(*chart.Params) BarIter

type Provider struct {
	cfg   Config
	chart ChartFunc
}

func New(cfg Config) *Provider {
	return NewWithChart(cfg, func(p *chart.Params) BarIter { return chart.Get(p) })
}

// NewWithChart builds a provider over a custom chart query.
func NewWithChart(cfg Config, fn ChartFunc) *Provider {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	return &Provider{cfg: cfg, chart: fn}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Fetch queries monthly bars between the request bounds; the end bound is
// exclusive upstream so it is pushed one day out.
func (p *Provider) Fetch(ctx context.Context, req provider.Request) (provider.Series, error) {
	if err := ctx.Err(); err != nil {
		return provider.Series{}, err
	}

	params := &chart.Params{
		Symbol:   req.Symbol,
		Interval: datetime.OneMonth,
		Start:    toDatetime(req.Start),
		End:      toDatetime(req.End.AddDate(0, 0, 1)),
	}

	iter := p.chart(params)
	type raw struct {
		ts    int64
		price decimal.Decimal
	}
	var bars []raw
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return provider.Series{}, err
		}
		bar := iter.Bar()
		if bar == nil {
			continue
		}
		price := bar.Close
		if p.cfg.Adjusted && bar.AdjClose.IsPositive() {
			price = bar.AdjClose
		}
		bars = append(bars, raw{ts: int64(bar.Timestamp), price: price})
	}
	if err := iter.Err(); err != nil {
		return provider.Series{}, fmt.Errorf("%s: %s: %w", p.cfg.Name, req.Symbol, err)
	}

	// bars are stamped at local midnight of the exchange
	loc := exchangeLocation(iter.Meta())
	points := make([]provider.Point, 0, len(bars))
	for _, b := range bars {
		points = append(points, provider.Point{Date: calendarDate(b.ts, loc), Close: b.price})
	}

	points = aggregate.Clean(points, req)
	if len(points) == 0 {
		return provider.Series{}, fmt.Errorf("%s: %w for %s", p.cfg.Name, provider.ErrNoData, req)
	}
	return provider.Series{Symbol: req.Symbol, Source: p.cfg.Name, Points: points}, nil
}

// exchangeLocation prefers the named zone, which tracks DST, over the
// current fixed offset.
func exchangeLocation(m finance.ChartMeta) *time.Location {
	if m.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(m.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	if m.Gmtoffset != 0 {
		return time.FixedZone(m.Timezone, m.Gmtoffset)
	}
	return time.UTC
}

// calendarDate is the exchange-local day of ts as a UTC midnight.
func calendarDate(ts int64, loc *time.Location) time.Time {
	y, m, d := time.Unix(ts, 0).In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toDatetime(t time.Time) *datetime.Datetime {
	return &datetime.Datetime{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}
}
