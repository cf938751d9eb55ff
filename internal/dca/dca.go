// Package dca simulates dollar-cost averaging: a fixed amount is invested at
// every sampled period regardless of price, buying a variable number of units.
package dca

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"coffeeinvest/internal/provider"
)

const (
	// DefaultBusinessDays is the number of coffee-buying days in a month.
	DefaultBusinessDays = 20

	// CurrencyPlaces and UnitPlaces are the reporting precisions.
	CurrencyPlaces = 2
	UnitPlaces     = 4

	// divPlaces bounds per-period unit purchases; totals are rounded only once.
	divPlaces = 28
)

var (
	ErrEmptySeries         = errors.New("empty price series")
	ErrInvalidContribution = errors.New("contribution must be positive")
	ErrInvalidBusinessDays = errors.New("business days per month must be positive")
)

// Result holds the totals of one simulation.
type Result struct {
	TotalContributed decimal.Decimal `json:"total_contributed"`
	FinalValue       decimal.Decimal `json:"final_value"`
	TotalUnits       decimal.Decimal `json:"total_units"`
	// ValuationPrice is the close of the last sample, used for FinalValue.
	ValuationPrice decimal.Decimal `json:"valuation_price"`
	// Periods counts purchases, Skipped counts samples with a non-positive price.
	Periods int `json:"periods"`
	Skipped int `json:"skipped"`
}

// Rounded returns r with currency fields at 2 places and units at 4.
func (r Result) Rounded() Result {
	r.TotalContributed = r.TotalContributed.Round(CurrencyPlaces)
	r.FinalValue = r.FinalValue.Round(CurrencyPlaces)
	r.TotalUnits = r.TotalUnits.Round(UnitPlaces)
	return r
}

// Gain is the final value minus what was put in.
func (r Result) Gain() decimal.Decimal {
	return r.FinalValue.Sub(r.TotalContributed)
}

// MonthlyContribution converts a per-day cost into the amount invested each period.
func MonthlyContribution(daily decimal.Decimal, businessDays int) (decimal.Decimal, error) {
	if businessDays <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidBusinessDays, businessDays)
	}
	m := daily.Mul(decimal.NewFromInt(int64(businessDays)))
	if !m.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidContribution, m)
	}
	return m, nil
}

// Simulate invests contribution at every point with a positive close and values
// the accumulated units at the close of the last point. The last point is used
// for valuation even when its own price was skipped, so a degenerate final
// sample yields a zero or negative final value.
//
// Totals are accumulated at full precision and rounded once on return.
func Simulate(points []provider.Point, contribution decimal.Decimal) (Result, error) {
	if !contribution.IsPositive() {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidContribution, contribution)
	}
	if len(points) == 0 {
		return Result{}, ErrEmptySeries
	}

	var r Result
	for _, p := range points {
		if !p.Close.IsPositive() {
			r.Skipped++
			continue
		}
		r.TotalUnits = r.TotalUnits.Add(contribution.DivRound(p.Close, divPlaces))
		r.TotalContributed = r.TotalContributed.Add(contribution)
		r.Periods++
	}

	r.ValuationPrice = points[len(points)-1].Close
	r.FinalValue = r.TotalUnits.Mul(r.ValuationPrice)
	return r.Rounded(), nil
}
