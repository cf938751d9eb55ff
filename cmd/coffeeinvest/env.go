package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"coffeeinvest/internal/calculator"
	"coffeeinvest/internal/config"
	"coffeeinvest/internal/httpx"
	"coffeeinvest/internal/logx"
	"coffeeinvest/internal/provider"
	"coffeeinvest/internal/provider/registry"
)

// env carries what every subcommand needs. It is passed as the first
// Execute argument and builds the provider chain on first use.
type env struct {
	cfgPath   string
	providers string
	logLevel  string

	stdin          io.Reader
	stdout, stderr io.Writer

	// newProvider is replaced in tests.
	newProvider func(config.Config, zerolog.Logger) (provider.Provider, error)

	cfg  config.Config
	log  zerolog.Logger
	calc *calculator.Calculator
}

func newEnv(cfgPath, providers, logLevel string) *env {
	return &env{
		cfgPath:     cfgPath,
		providers:   providers,
		logLevel:    logLevel,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		newProvider: buildProvider,
	}
}

func buildProvider(cfg config.Config, log zerolog.Logger) (provider.Provider, error) {
	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	return registry.Build(cfg, hc, log)
}

// fromArgs extracts the env handed to Execute.
func fromArgs(args []interface{}) *env {
	for _, a := range args {
		if e, ok := a.(*env); ok {
			return e
		}
	}
	return newEnv(os.Getenv("CONFIG_FILE"), "", "")
}

// calculator loads config, sets up logging and builds providers once.
// businessDays overrides the configured value when positive.
func (e *env) calculator(businessDays int) (*calculator.Calculator, error) {
	if e.calc != nil {
		if businessDays > 0 {
			return calculator.New(e.calc.Provider, businessDays, e.log), nil
		}
		return e.calc, nil
	}
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return nil, err
	}
	if e.providers != "" {
		cfg.Providers = config.SplitCSV(strings.ToLower(e.providers))
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logx.SetupWriter(e.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	p, err := e.newProvider(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}
	e.cfg, e.log = cfg, log
	e.calc = calculator.New(p, cfg.Simulation.BusinessDaysPerMonth, log)
	if businessDays > 0 {
		return calculator.New(p, businessDays, log), nil
	}
	return e.calc, nil
}

func (e *env) errorf(format string, a ...any) {
	fmt.Fprintf(e.stderr, format+"\n", a...)
}
