package calculator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"coffeeinvest/internal/coffee"
	"coffeeinvest/internal/provider"
	"coffeeinvest/internal/provider/providermock"
)

func month(y int, m time.Month, price string) provider.Point {
	return provider.Point{Date: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), Close: decimal.RequireFromString(price)}
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := providermock.NewMockProvider(ctrl)
	want, err := provider.YearRange("AAPL", 2020, 2020)
	require.NoError(t, err)
	p.EXPECT().Fetch(gomock.Any(), want).Return(provider.Series{
		Symbol: "AAPL",
		Source: "Fake",
		Points: []provider.Point{
			month(2020, time.January, "100"),
			month(2020, time.February, "120"),
			month(2020, time.March, "150"),
		},
	}, nil)

	c := New(p, 0, zerolog.Nop())
	r, err := c.Run(t.Context(), Input{Symbol: " aapl ", Coffee: "small", StartYear: 2020, EndYear: 2020})
	require.NoError(t, err)

	require.Equal(t, "AAPL", r.Symbol)
	require.Equal(t, coffee.Small, r.Tier)
	require.Equal(t, 20, r.BusinessDays)
	require.Equal(t, "50", r.MonthlyContribution.String())
	require.Equal(t, "150", r.TotalContributed.String())
	require.Equal(t, "1.25", r.TotalUnits.String())
	require.Equal(t, "187.5", r.FinalValue.String())
	require.Equal(t, 3, r.Periods)
	require.Equal(t, "Fake", r.Source)
	require.Equal(t, time.March, r.LastDate.Month())
	require.Equal(t, time.January, r.FirstDate.Month())
}

func TestRun_InputErrorsSkipFetch(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"unknown coffee", Input{Symbol: "AAPL", Coffee: "Mocha", StartYear: 2020, EndYear: 2021}, coffee.ErrUnknownTier},
		{"reversed years", Input{Symbol: "AAPL", Coffee: "Small", StartYear: 2021, EndYear: 2020}, provider.ErrInvalidRange},
		{"blank symbol", Input{Symbol: "  ", Coffee: "Small", StartYear: 2020, EndYear: 2021}, ErrMissingSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			p := providermock.NewMockProvider(ctrl)
			// no Fetch expectation: any call fails the test

			_, err := New(p, 20, zerolog.Nop()).Run(t.Context(), tt.in)
			require.ErrorIs(t, err, tt.want)
			require.True(t, IsInputError(err))
		})
	}
}

func TestRun_NoData(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := providermock.NewMockProvider(ctrl)
	p.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(provider.Series{}, nil)

	_, err := New(p, 20, zerolog.Nop()).Run(t.Context(), Input{Symbol: "ZZZZ", Coffee: "Cappuccino", StartYear: 2020, EndYear: 2020})
	require.ErrorIs(t, err, provider.ErrNoData)
	require.False(t, IsInputError(err))
}

func TestRun_ProviderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := providermock.NewMockProvider(ctrl)
	p.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(provider.Series{}, errors.New("remote-error"))

	_, err := New(p, 20, zerolog.Nop()).Run(t.Context(), Input{Symbol: "AAPL", Coffee: "Fancy Latte", StartYear: 2020, EndYear: 2020})
	require.ErrorContains(t, err, "remote-error")
	require.False(t, IsInputError(err))
}

func TestRun_CustomBusinessDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := providermock.NewMockProvider(ctrl)
	p.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(provider.Series{
		Points: []provider.Point{month(2020, time.January, "10")},
	}, nil)

	r, err := New(p, 22, zerolog.Nop()).Run(t.Context(), Input{Symbol: "X", Coffee: "Fancy Latte", StartYear: 2020, EndYear: 2020})
	require.NoError(t, err)
	require.Equal(t, "99", r.MonthlyContribution.String())
	require.Equal(t, "9.9", r.TotalUnits.String())
}

func TestSeries(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := providermock.NewMockProvider(ctrl)
	p.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req provider.Request) (provider.Series, error) {
		require.Equal(t, "MSFT", req.Symbol)
		require.Equal(t, provider.Monthly, req.Interval)
		return provider.Series{Symbol: req.Symbol, Points: []provider.Point{month(2019, time.May, "1")}}, nil
	})

	s, err := New(p, 20, zerolog.Nop()).Series(t.Context(), "msft", 2019, 2019)
	require.NoError(t, err)
	require.Len(t, s.Points, 1)
}
