package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	var (
		cfgPath   = flag.String("config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
		providers = flag.String("provider", "", "comma-separated provider order, e.g. yahoo,eodhd")
		logLevel  = flag.String("log-level", "", "override log level (trace, debug, info, warn, error)")
	)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&promptCmd{}, "")
	commander.Register(&simulateCmd{}, "")
	commander.Register(&seriesCmd{}, "")
	commander.Register(&tiersCmd{}, "")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := newEnv(*cfgPath, *providers, *logLevel)
	if flag.NArg() == 0 {
		// no subcommand: behave like the interactive calculator
		os.Exit(int(new(promptCmd).Execute(ctx, flag.NewFlagSet("prompt", flag.ExitOnError), e)))
	}
	os.Exit(int(commander.Execute(ctx, e)))
}
