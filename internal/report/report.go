// Package report renders calculator results for people and programs.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"coffeeinvest/internal/calculator"
	"coffeeinvest/internal/dca"
)

// Currency is the only currency results are expressed in.
const Currency = money.USD

type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	Markdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case JSON, Markdown:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (text, json, markdown)", s)
}

// Write renders r in format f. Markdown is rendered for a terminal with the
// "auto" glamour style.
func Write(w io.Writer, r calculator.Report, f Format) error {
	switch f {
	case JSON:
		return WriteJSON(w, r)
	case Markdown:
		return WriteMarkdown(w, r, "auto")
	}
	return WriteText(w, r)
}

// Summary is the wire shape of a report. Amounts are fixed-point strings.
type Summary struct {
	Symbol              string `json:"symbol"`
	Coffee              string `json:"coffee"`
	DailyCost           string `json:"daily_cost"`
	BusinessDays        int    `json:"business_days"`
	MonthlyContribution string `json:"monthly_contribution"`
	StartYear           int    `json:"start_year"`
	EndYear             int    `json:"end_year"`
	FirstDate           string `json:"first_date"`
	LastDate            string `json:"last_date"`
	Periods             int    `json:"periods"`
	Skipped             int    `json:"skipped"`
	TotalInvestment     string `json:"total_investment"`
	FinalValue          string `json:"final_value"`
	TotalShares         string `json:"total_shares"`
	ValuationPrice      string `json:"valuation_price"`
	Gain                string `json:"gain"`
	Currency            string `json:"currency"`
	Source              string `json:"source"`
}

func NewSummary(r calculator.Report) Summary {
	return Summary{
		Symbol:              r.Symbol,
		Coffee:              r.Tier.String(),
		DailyCost:           r.DailyCost.StringFixed(dca.CurrencyPlaces),
		BusinessDays:        r.BusinessDays,
		MonthlyContribution: r.MonthlyContribution.StringFixed(dca.CurrencyPlaces),
		StartYear:           r.StartYear,
		EndYear:             r.EndYear,
		FirstDate:           r.FirstDate.Format(time.DateOnly),
		LastDate:            r.LastDate.Format(time.DateOnly),
		Periods:             r.Periods,
		Skipped:             r.Skipped,
		TotalInvestment:     r.TotalContributed.StringFixed(dca.CurrencyPlaces),
		FinalValue:          r.FinalValue.StringFixed(dca.CurrencyPlaces),
		TotalShares:         r.TotalUnits.StringFixed(dca.UnitPlaces),
		ValuationPrice:      r.ValuationPrice.String(),
		Gain:                r.Gain().StringFixed(dca.CurrencyPlaces),
		Currency:            Currency,
		Source:              r.Source,
	}
}

func WriteJSON(w io.Writer, r calculator.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSummary(r))
}

// WriteText prints the plain results block.
func WriteText(w io.Writer, r calculator.Report) error {
	var b strings.Builder
	b.WriteString("\nInvestment Results:\n")
	fmt.Fprintf(&b, "Total Investment: %s %s\n", r.TotalContributed.StringFixed(dca.CurrencyPlaces), Currency)
	fmt.Fprintf(&b, "Final Investment Value: %s %s\n", r.FinalValue.StringFixed(dca.CurrencyPlaces), Currency)
	fmt.Fprintf(&b, "Total Shares Bought: %s\n", r.TotalUnits.StringFixed(dca.UnitPlaces))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Symbol: %s (via %s)\n", r.Symbol, r.Source)
	fmt.Fprintf(&b, "Coffee: %s at %s/day x %d days = %s/month\n",
		r.Tier, USD(r.DailyCost), r.BusinessDays, USD(r.MonthlyContribution))
	fmt.Fprintf(&b, "Months: %s to %s (%d bought, %d skipped)\n",
		r.FirstDate.Format("2006-01"), r.LastDate.Format("2006-01"), r.Periods, r.Skipped)
	fmt.Fprintf(&b, "Gain: %s\n", USD(r.Gain()))
	_, err := io.WriteString(w, b.String())
	return err
}

// MarkdownSource returns the report as a markdown document.
func MarkdownSource(r calculator.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Coffee money in %s\n\n", r.Symbol)
	fmt.Fprintf(&b, "One **%s** (%s) every business day, %d days a month, invested monthly from %d to %d.\n\n",
		r.Tier, USD(r.DailyCost), r.BusinessDays, r.StartYear, r.EndYear)
	b.WriteString("| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Monthly contribution | %s |\n", USD(r.MonthlyContribution))
	fmt.Fprintf(&b, "| Total investment | %s |\n", USD(r.TotalContributed))
	fmt.Fprintf(&b, "| Final investment value | %s |\n", USD(r.FinalValue))
	fmt.Fprintf(&b, "| Gain | %s |\n", USD(r.Gain()))
	fmt.Fprintf(&b, "| Total shares bought | %s |\n", r.TotalUnits.StringFixed(dca.UnitPlaces))
	fmt.Fprintf(&b, "| Months bought | %d |\n", r.Periods)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, "| Months skipped | %d |\n", r.Skipped)
	}
	fmt.Fprintf(&b, "\nValued at %s, the close of %s. Prices from %s.\n",
		USD(r.ValuationPrice), r.LastDate.Format("January 2006"), r.Source)
	return b.String()
}

// WriteMarkdown renders MarkdownSource with a glamour style such as
// "auto", "dark", "light" or "notty".
func WriteMarkdown(w io.Writer, r calculator.Report, style string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := tr.Render(MarkdownSource(r))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// USD formats d as dollars and cents, e.g. $1,234.50.
func USD(d decimal.Decimal) string {
	cents := d.Round(dca.CurrencyPlaces).Shift(dca.CurrencyPlaces).IntPart()
	return money.New(cents, Currency).Display()
}
