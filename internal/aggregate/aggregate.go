package aggregate

import (
	"sort"
	"time"

	"coffeeinvest/internal/provider"
)

// MonthKey identifies a calendar month bucket.
type MonthKey struct {
	Year  int
	Month time.Month
}

// KeyOf returns the month bucket of t in UTC.
func KeyOf(t time.Time) MonthKey {
	u := t.UTC()
	return MonthKey{Year: u.Year(), Month: u.Month()}
}

// Monthly collapses raw samples into one point per calendar month keeping the newest.
// Rules:
//   - Samples with a zero date or a non-positive close are dropped (missing values).
//   - For equal dates within a month, later input wins.
//   - Output is ascending by date.
func Monthly(points []provider.Point) []provider.Point {
	latest := make(map[MonthKey]provider.Point, len(points))

	for _, p := range points {
		if p.Date.IsZero() || !p.Close.IsPositive() {
			continue
		}
		key := KeyOf(p.Date)
		if cur, ok := latest[key]; ok && p.Date.Before(cur.Date) {
			continue
		}
		latest[key] = p
	}

	out := make([]provider.Point, 0, len(latest))
	for _, v := range latest {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Within keeps the points whose date falls inside the request bounds, inclusive.
func Within(points []provider.Point, req provider.Request) []provider.Point {
	out := make([]provider.Point, 0, len(points))
	for _, p := range points {
		if !req.Start.IsZero() && p.Date.Before(req.Start) {
			continue
		}
		if !req.End.IsZero() && p.Date.After(req.End) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Clean applies Within then Monthly, producing the series shape the simulator expects.
func Clean(points []provider.Point, req provider.Request) []provider.Point {
	return Monthly(Within(points, req))
}
