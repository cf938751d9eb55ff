package eodhd

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"coffeeinvest/internal/httpx"
	"coffeeinvest/internal/provider"
)

const payload = `[
  {"date": "2020-01-31", "open": 1, "close": 77.38, "adjusted_close": 75.09, "volume": 10},
  {"date": "2020-02-28", "open": 1, "close": 68.34, "adjusted_close": 66.32, "volume": 10},
  {"date": "bogus", "open": 1, "close": 1, "adjusted_close": 1, "volume": 10},
  {"date": "2020-03-31", "open": 1, "close": 63.57, "adjusted_close": 61.87, "volume": 10}
]`

func newServer(t *testing.T, status int, body string) (*httptest.Server, *url.URL) {
	t.Helper()
	var got url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r.URL
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestFetch_MonthlyBars(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, payload)
	p := New(Config{URL: srv.URL + "/api/eod", APIKey: "demo"}, httpx.New(2*time.Second))
	req, err := provider.YearRange("AAPL", 2020, 2020)
	require.NoError(t, err)

	s, err := p.Fetch(t.Context(), req)
	require.NoError(t, err)

	// request shape
	require.Equal(t, "/api/eod/AAPL.US", got.Path)
	q := got.Query()
	require.Equal(t, "demo", q.Get("api_token"))
	require.Equal(t, "m", q.Get("period"))
	require.Equal(t, "2020-01-01", q.Get("from"))
	require.Equal(t, "2020-12-31", q.Get("to"))

	// unparseable dates are dropped, closes kept in order
	require.Equal(t, "EODHD", s.Source)
	require.Len(t, s.Points, 3)
	require.True(t, s.Points[0].Close.Equal(decimal.RequireFromString("77.38")))
	require.True(t, s.Points[2].Close.Equal(decimal.RequireFromString("63.57")))
}

func TestFetch_Adjusted(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, payload)
	p := New(Config{URL: srv.URL, APIKey: "demo", Adjusted: true}, httpx.New(2*time.Second))
	req, _ := provider.YearRange("AAPL", 2020, 2020)

	s, err := p.Fetch(t.Context(), req)
	require.NoError(t, err)
	require.True(t, s.Points[0].Close.Equal(decimal.RequireFromString("75.09")))
}

func TestFetch_EmptyPayloadIsNoData(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[]`)
	p := New(Config{URL: srv.URL, APIKey: "demo"}, httpx.New(2*time.Second))
	req, _ := provider.YearRange("ZZZZ", 2020, 2020)

	_, err := p.Fetch(t.Context(), req)
	require.ErrorIs(t, err, provider.ErrNoData)
}

func TestFetch_NotFoundIsNoData(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, `Ticker Not Found.`)
	p := New(Config{URL: srv.URL, APIKey: "demo"}, httpx.New(2*time.Second))
	req, _ := provider.YearRange("ZZZZ", 2020, 2020)

	_, err := p.Fetch(t.Context(), req)
	require.ErrorIs(t, err, provider.ErrNoData)
}

func TestFetch_ServerError(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"message":"Unauthenticated"}`)
	p := New(Config{URL: srv.URL, APIKey: "bad"}, httpx.New(2*time.Second))
	req, _ := provider.YearRange("AAPL", 2020, 2020)

	_, err := p.Fetch(t.Context(), req)
	require.Error(t, err)
	require.NotErrorIs(t, err, provider.ErrNoData)
	require.ErrorContains(t, err, "401")
}

func TestFetch_MissingKey(t *testing.T) {
	p := New(Config{}, httpx.New(time.Second))
	req, _ := provider.YearRange("AAPL", 2020, 2020)

	_, err := p.Fetch(t.Context(), req)
	require.ErrorContains(t, err, "missing api key")
}

func TestTicker(t *testing.T) {
	p := New(Config{Exchange: "XETRA"}, nil)
	require.Equal(t, "SAP.XETRA", p.Ticker("SAP"))
	require.Equal(t, "NVD.F", p.Ticker("NVD.F"))
}
