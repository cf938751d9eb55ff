package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"coffeeinvest/internal/coffee"
	"coffeeinvest/internal/report"
)

type tiersCmd struct{}

func (*tiersCmd) Name() string     { return "tiers" }
func (*tiersCmd) Synopsis() string { return "list coffee types and their daily cost" }
func (*tiersCmd) Usage() string    { return "tiers\n" }

func (*tiersCmd) SetFlags(*flag.FlagSet) {}

func (*tiersCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := fromArgs(args)
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Coffee\tDaily cost")
	for _, t := range coffee.Tiers() {
		cost, err := t.DailyCost()
		if err != nil {
			e.errorf("%v", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(tw, "%s\t%s\n", t, report.USD(cost))
	}
	if err := tw.Flush(); err != nil {
		e.errorf("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
