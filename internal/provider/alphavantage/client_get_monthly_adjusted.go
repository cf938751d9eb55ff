package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// MonthlyBar is one month of the adjusted monthly time series.
type MonthlyBar struct {
	Date          time.Time
	Close         decimal.Decimal
	AdjustedClose decimal.Decimal
}

// monthlyAdjustedResponse is the TIME_SERIES_MONTHLY_ADJUSTED payload.
//
//	{
//	  "Meta Data": {...},
//	  "Monthly Adjusted Time Series": {
//	    "2024-01-31": {
//	      "1. open": "187.1500",
//	      "4. close": "184.4000",
//	      "5. adjusted close": "183.9184",
//	      ...
//	    }
//	  }
//	}
//
// Throttled or invalid calls answer 200 with a single "Note",
// "Information" or "Error Message" string instead.
type monthlyAdjustedResponse struct {
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
	ErrorMessage string                `json:"Error Message"`
	Series       map[string]monthlyRow `json:"Monthly Adjusted Time Series"`
}

type monthlyRow struct {
	Close         decimal.Decimal `json:"4. close"`
	AdjustedClose decimal.Decimal `json:"5. adjusted close"`
}

// GetMonthlyAdjusted retrieves the full monthly adjusted series for symbol, ascending by date.
func (c *Client) GetMonthlyAdjusted(ctx context.Context, symbol string, opts ...Option) ([]MonthlyBar, error) {
	call := c.with(opts)

	query := call.query
	query.Set("function", "TIME_SERIES_MONTHLY_ADJUSTED")
	query.Set("symbol", symbol)
	query.Set("datatype", "json")

	url := fmt.Sprintf("%s/query?%s", call.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = call.header

	res, err := call.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusForbidden, http.StatusUnauthorized:
		return nil, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var body monthlyAdjustedResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding monthly response: %w", err)
	}

	switch {
	case body.ErrorMessage != "":
		return nil, fmt.Errorf("api error: %s", body.ErrorMessage)
	case body.Note != "":
		return nil, fmt.Errorf("rate limited: %s", body.Note)
	case body.Information != "" && len(body.Series) == 0:
		return nil, fmt.Errorf("api information: %s", body.Information)
	}

	var bars = make([]MonthlyBar, 0, len(body.Series))
	for ds, row := range body.Series {
		d, err := time.Parse(time.DateOnly, ds)
		if err != nil {
			return nil, fmt.Errorf("decoding date %q: %w", ds, err)
		}
		bars = append(bars, MonthlyBar{
			Date:          d,
			Close:         row.Close,
			AdjustedClose: row.AdjustedClose,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return bars, nil
}
