// Package calculator ties tier resolution, price lookup and the DCA
// simulation into one request/response operation.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"coffeeinvest/internal/coffee"
	"coffeeinvest/internal/dca"
	"coffeeinvest/internal/provider"
)

// ErrMissingSymbol is returned for a blank stock symbol.
var ErrMissingSymbol = errors.New("stock symbol is required")

// Input is what a user supplies for one calculation.
type Input struct {
	Symbol    string `json:"symbol"`
	Coffee    string `json:"coffee"`
	StartYear int    `json:"start"`
	EndYear   int    `json:"end"`
}

// Report is a simulation result with the context it was computed in.
type Report struct {
	Symbol              string
	Tier                coffee.Tier
	DailyCost           decimal.Decimal
	BusinessDays        int
	MonthlyContribution decimal.Decimal
	StartYear, EndYear  int
	FirstDate, LastDate time.Time
	Source              string
	dca.Result
}

type Calculator struct {
	Provider     provider.Provider
	BusinessDays int
	Log          zerolog.Logger
}

func New(p provider.Provider, businessDays int, log zerolog.Logger) *Calculator {
	if businessDays <= 0 {
		businessDays = dca.DefaultBusinessDays
	}
	return &Calculator{Provider: p, BusinessDays: businessDays, Log: log}
}

// Run validates in, fetches the monthly series and simulates the plan.
// Input errors are reported before any provider call.
func (c *Calculator) Run(ctx context.Context, in Input) (Report, error) {
	tier, err := coffee.ParseTier(in.Coffee)
	if err != nil {
		return Report{}, err
	}
	daily, err := tier.DailyCost()
	if err != nil {
		return Report{}, err
	}
	monthly, err := dca.MonthlyContribution(daily, c.BusinessDays)
	if err != nil {
		return Report{}, err
	}
	req, err := c.request(in.Symbol, in.StartYear, in.EndYear)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	s, err := c.Provider.Fetch(ctx, req)
	if err != nil {
		return Report{}, fmt.Errorf("fetch %s: %w", req, err)
	}
	if len(s.Points) == 0 {
		return Report{}, fmt.Errorf("fetch %s: %w", req, provider.ErrNoData)
	}
	c.Log.Debug().
		Str("request", req.String()).
		Str("source", s.Source).
		Int("points", len(s.Points)).
		Dur("took", time.Since(start)).
		Msg("series fetched")

	res, err := dca.Simulate(s.Points, monthly)
	if err != nil {
		return Report{}, fmt.Errorf("simulate %s: %w", req.Symbol, err)
	}
	last, _ := s.Last()
	return Report{
		Symbol:              req.Symbol,
		Tier:                tier,
		DailyCost:           daily,
		BusinessDays:        c.BusinessDays,
		MonthlyContribution: monthly,
		StartYear:           in.StartYear,
		EndYear:             in.EndYear,
		FirstDate:           s.Points[0].Date,
		LastDate:            last.Date,
		Source:              s.Source,
		Result:              res,
	}, nil
}

// Series returns the cleaned monthly closes for symbol between the years.
func (c *Calculator) Series(ctx context.Context, symbol string, startYear, endYear int) (provider.Series, error) {
	req, err := c.request(symbol, startYear, endYear)
	if err != nil {
		return provider.Series{}, err
	}
	s, err := c.Provider.Fetch(ctx, req)
	if err != nil {
		return provider.Series{}, fmt.Errorf("fetch %s: %w", req, err)
	}
	return s, nil
}

func (c *Calculator) request(symbol string, startYear, endYear int) (provider.Request, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return provider.Request{}, ErrMissingSymbol
	}
	return provider.YearRange(symbol, startYear, endYear)
}

// IsInputError reports whether err was caused by user input rather than a
// price provider.
func IsInputError(err error) bool {
	return errors.Is(err, coffee.ErrUnknownTier) ||
		errors.Is(err, provider.ErrInvalidRange) ||
		errors.Is(err, ErrMissingSymbol) ||
		errors.Is(err, dca.ErrInvalidBusinessDays) ||
		errors.Is(err, dca.ErrInvalidContribution)
}
