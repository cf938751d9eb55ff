package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"coffeeinvest/internal/calculator"
	"coffeeinvest/internal/coffee"
	"coffeeinvest/internal/report"
)

type promptCmd struct{}

func (*promptCmd) Name() string     { return "prompt" }
func (*promptCmd) Synopsis() string { return "ask for a symbol, coffee and years, then print results" }
func (*promptCmd) Usage() string {
	return `prompt

  Interactive calculator. This is also what runs when no subcommand is given.
`
}

func (*promptCmd) SetFlags(*flag.FlagSet) {}

func (c *promptCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := fromArgs(args)
	in, err := c.ask(e)
	if err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitUsageError
	}

	calc, err := e.calculator(0)
	if err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	r, err := calc.Run(ctx, in)
	if err != nil {
		e.errorf("Error: %v", err)
		if !calculator.IsInputError(err) {
			fmt.Fprintln(e.stdout, "Failed to retrieve stock data.")
		}
		return subcommands.ExitFailure
	}
	if err := report.WriteText(e.stdout, r); err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *promptCmd) ask(e *env) (calculator.Input, error) {
	sc := bufio.NewScanner(e.stdin)
	line := func(prompt string) (string, error) {
		fmt.Fprint(e.stdout, prompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errors.New("unexpected end of input")
		}
		return strings.TrimSpace(sc.Text()), nil
	}
	year := func(prompt string) (int, error) {
		s, err := line(prompt)
		if err != nil {
			return 0, err
		}
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid year %q", s)
		}
		return y, nil
	}

	var in calculator.Input
	var err error
	if in.Symbol, err = line("Enter the stock symbol: "); err != nil {
		return in, err
	}
	if in.Coffee, err = line(fmt.Sprintf("Select a coffee type (%s): ", coffee.Labels())); err != nil {
		return in, err
	}
	if in.StartYear, err = year("Enter the start year of the investment (YYYY format): "); err != nil {
		return in, err
	}
	if in.EndYear, err = year("Enter the end year of the investment (YYYY format): "); err != nil {
		return in, err
	}
	return in, nil
}
