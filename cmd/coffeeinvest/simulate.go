package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"coffeeinvest/internal/calculator"
	"coffeeinvest/internal/coffee"
	"coffeeinvest/internal/report"
)

type simulateCmd struct {
	symbol       string
	coffee       string
	start, end   int
	format       string
	businessDays int
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "simulate investing coffee money in a stock" }
func (*simulateCmd) Usage() string {
	return fmt.Sprintf(`simulate -symbol <ticker> -coffee <type> -start <year> -end <year> [-format text|json|markdown]

  Invests the monthly cost of one coffee per business day at every monthly
  close between the years and reports the result. Coffee types: %s.
`, coffee.Labels())
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "stock ticker, e.g. AAPL")
	f.StringVar(&c.coffee, "coffee", "Small", "coffee type")
	f.IntVar(&c.start, "start", 0, "first year (YYYY)")
	f.IntVar(&c.end, "end", 0, "last year (YYYY), defaults to -start")
	f.StringVar(&c.format, "format", "text", "output format: text, json or markdown")
	f.IntVar(&c.businessDays, "business-days", 0, "coffees per month (default from config)")
}

func (c *simulateCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := fromArgs(args)
	if c.symbol == "" || c.start == 0 {
		e.errorf("-symbol and -start are required")
		return subcommands.ExitUsageError
	}
	if c.end == 0 {
		c.end = c.start
	}
	format, err := report.ParseFormat(c.format)
	if err != nil {
		e.errorf("%v", err)
		return subcommands.ExitUsageError
	}

	calc, err := e.calculator(c.businessDays)
	if err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	r, err := calc.Run(ctx, calculator.Input{Symbol: c.symbol, Coffee: c.coffee, StartYear: c.start, EndYear: c.end})
	if err != nil {
		e.errorf("Error: %v", err)
		if calculator.IsInputError(err) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	if err := report.Write(e.stdout, r, format); err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
