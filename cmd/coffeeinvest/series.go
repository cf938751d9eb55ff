package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"coffeeinvest/internal/config"
	"coffeeinvest/internal/provider"
)

type seriesCmd struct {
	symbols     string
	start, end  int
	out         string
	concurrency int
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "dump cleaned monthly closes as JSON" }
func (*seriesCmd) Usage() string {
	return `series -symbols <t1,t2,...> -start <year> -end <year> [-out file.json]

  Fetches the monthly series used by simulate for each symbol and writes
  them as one JSON document. Writes to stdout when -out is "-".
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma-separated tickers")
	f.IntVar(&c.start, "start", 0, "first year (YYYY)")
	f.IntVar(&c.end, "end", 0, "last year (YYYY), defaults to -start")
	f.StringVar(&c.out, "out", "-", "output JSON file path")
	f.IntVar(&c.concurrency, "concurrency", 4, "number of parallel fetches")
}

type seriesDump struct {
	Start  int               `json:"start"`
	End    int               `json:"end"`
	Series []provider.Series `json:"series"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (c *seriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := fromArgs(args)
	symbols := config.SplitCSV(c.symbols)
	if len(symbols) == 0 || c.start == 0 {
		e.errorf("-symbols and -start are required")
		return subcommands.ExitUsageError
	}
	if c.end == 0 {
		c.end = c.start
	}
	calc, err := e.calculator(0)
	if err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitFailure
	}

	// one slot per symbol keeps output in input order
	results := make([]provider.Series, len(symbols))
	errs := make([]error, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.concurrency, 1))
	for i, sym := range symbols {
		g.Go(func() error {
			s, err := calc.Series(gctx, sym, c.start, c.end)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitFailure
	}

	dump := seriesDump{Start: c.start, End: c.end, Series: make([]provider.Series, 0, len(symbols))}
	for i, sym := range symbols {
		if errs[i] != nil {
			if dump.Errors == nil {
				dump.Errors = map[string]string{}
			}
			dump.Errors[strings.ToUpper(sym)] = errs[i].Error()
			e.log.Warn().Err(errs[i]).Str("symbol", sym).Msg("series fetch failed")
			continue
		}
		dump.Series = append(dump.Series, results[i])
	}

	if err := c.write(e.stdout, dump); err != nil {
		e.errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	if c.out != "-" {
		e.log.Info().Str("out", c.out).Int("series", len(dump.Series)).Msg("done")
	}
	if len(dump.Series) == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *seriesCmd) write(stdout io.Writer, dump seriesDump) error {
	w := stdout
	if c.out != "-" {
		f, err := os.Create(c.out)
		if err != nil {
			return fmt.Errorf("create out: %w", err)
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriterSize(w, 1<<16)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return bw.Flush()
}
