package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Monthly is the only sampling interval the simulator consumes.
const Monthly = "1mo"

var (
	// ErrNoData is returned when a provider has no samples for the request.
	ErrNoData = errors.New("no data")
	// ErrInvalidRange is returned when the end of a range precedes its start.
	ErrInvalidRange = errors.New("invalid date range")
)

// Request describes a historical series lookup.
type Request struct {
	Symbol   string    `json:"symbol"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Interval string    `json:"interval"`
}

// YearRange builds a monthly request covering startYear-01-01 to endYear-12-31.
func YearRange(symbol string, startYear, endYear int) (Request, error) {
	if symbol == "" {
		return Request{}, errors.New("symbol is required")
	}
	if endYear < startYear {
		return Request{}, fmt.Errorf("%w: end year %d before start year %d", ErrInvalidRange, endYear, startYear)
	}
	return Request{
		Symbol:   symbol,
		Start:    time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC),
		Interval: Monthly,
	}, nil
}

// Key identifies a request for caching purposes.
func (r Request) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.Symbol, r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly), r.Interval)
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s..%s", r.Symbol, r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
}

// Point is one sampled closing price.
type Point struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Series is the normalized shape returned by all providers.
// Points are ascending by date, one per month.
type Series struct {
	Symbol string  `json:"symbol"`
	Source string  `json:"source"`
	Points []Point `json:"points"`
}

// Last returns the chronologically final sample.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Provider fetches a price series for a request.
// Implementations return ErrNoData (possibly wrapped) instead of an empty series.
//
//go:generate mockgen -package=providermock -destination=providermock/provider.go -source=provider.go Provider
type Provider interface {
	Name() string
	Fetch(ctx context.Context, req Request) (Series, error)
}
