package provider_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"coffeeinvest/internal/provider"
)

func TestYearRange(t *testing.T) {
	t.Parallel()

	// Act: build a range over two calendar years
	req, err := provider.YearRange("AAPL", 2019, 2020)
	require.NoError(t, err)

	// Assert: bounds are the first and last calendar day, sampled monthly
	require.Equal(t, "AAPL", req.Symbol)
	require.Equal(t, "2019-01-01", req.Start.Format(time.DateOnly))
	require.Equal(t, "2020-12-31", req.End.Format(time.DateOnly))
	require.Equal(t, provider.Monthly, req.Interval)
	require.Equal(t, "AAPL|2019-01-01|2020-12-31|1mo", req.Key())
}

func TestYearRange_SingleYear(t *testing.T) {
	t.Parallel()

	req, err := provider.YearRange("MSFT", 2021, 2021)
	require.NoError(t, err)
	require.Equal(t, "MSFT 2021-01-01..2021-12-31", req.String())
}

func TestYearRange_EndBeforeStart(t *testing.T) {
	t.Parallel()

	_, err := provider.YearRange("AAPL", 2021, 2020)
	require.ErrorIs(t, err, provider.ErrInvalidRange)
}

func TestYearRange_MissingSymbol(t *testing.T) {
	t.Parallel()

	_, err := provider.YearRange("", 2020, 2021)
	require.Error(t, err)
}

func TestSeries_Last(t *testing.T) {
	t.Parallel()

	var empty provider.Series
	_, ok := empty.Last()
	require.False(t, ok)

	s := provider.Series{Points: []provider.Point{
		{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(10)},
		{Date: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(12)},
	}}
	last, ok := s.Last()
	require.True(t, ok)
	require.True(t, last.Close.Equal(decimal.NewFromInt(12)))
}
