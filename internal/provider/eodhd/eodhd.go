package eodhd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"coffeeinvest/internal/aggregate"
	"coffeeinvest/internal/httpx"
	"coffeeinvest/internal/provider"
)

const defaultURL = "https://eodhd.com/api/eod"

// Config controls the EODHD provider behavior.
type Config struct {
	Name     string
	URL      string // base EOD endpoint, ticker is appended as a path segment
	APIKey   string
	Exchange string // suffix for bare tickers, e.g. "US" turns AAPL into AAPL.US
	Adjusted bool   // use adjusted_close instead of close
}

// Provider fetches monthly end-of-day bars from eodhd.com.
type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "EODHD"
	}
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "US"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// bar is one element of the EOD payload.
//
//	[
//	  {
//	    "date": "2024-02-01",
//	    "open": 183.985,
//	    "close": 180.75,
//	    "adjusted_close": 180.0117,
//	    "volume": 1035386928
//	  }
//	]
type bar struct {
	Date          string          `json:"date"`
	Close         decimal.Decimal `json:"close"`
	AdjustedClose decimal.Decimal `json:"adjusted_close"`
}

// Ticker maps a symbol to the SYMBOL.EXCHANGE form EODHD expects.
func (p *Provider) Ticker(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + "." + p.cfg.Exchange
}

func (p *Provider) Fetch(ctx context.Context, req provider.Request) (provider.Series, error) {
	if p.cfg.APIKey == "" {
		return provider.Series{}, fmt.Errorf("eodhd: missing api key")
	}

	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return provider.Series{}, fmt.Errorf("eodhd: %w", err)
	}
	u = u.JoinPath(p.Ticker(req.Symbol))
	q := u.Query()
	q.Set("api_token", p.cfg.APIKey)
	q.Set("fmt", "json")
	q.Set("period", "m")
	q.Set("from", req.Start.Format(time.DateOnly))
	q.Set("to", req.End.Format(time.DateOnly))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return provider.Series{}, err
	}
	httpReq.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		return provider.Series{}, fmt.Errorf("eodhd: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return provider.Series{}, fmt.Errorf("eodhd: %w for %s", provider.ErrNoData, req)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return provider.Series{}, fmt.Errorf("eodhd: GET %s -> %d: %s", p.Ticker(req.Symbol), resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var bars []bar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return provider.Series{}, fmt.Errorf("eodhd: decode: %w", err)
	}

	points := make([]provider.Point, 0, len(bars))
	for _, b := range bars {
		d, err := time.Parse(time.DateOnly, b.Date)
		if err != nil {
			continue
		}
		price := b.Close
		if p.cfg.Adjusted {
			price = b.AdjustedClose
		}
		points = append(points, provider.Point{Date: d, Close: price})
	}

	points = aggregate.Clean(points, req)
	if len(points) == 0 {
		return provider.Series{}, fmt.Errorf("eodhd: %w for %s", provider.ErrNoData, req)
	}
	return provider.Series{Symbol: req.Symbol, Source: p.cfg.Name, Points: points}, nil
}
