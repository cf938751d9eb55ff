package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"coffeeinvest/internal/calculator"
	"coffeeinvest/internal/config"
	"coffeeinvest/internal/httpx"
	"coffeeinvest/internal/logx"
	"coffeeinvest/internal/provider/registry"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger, err := logx.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log configuration")
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	hc := httpx.New(timeout)
	p, err := registry.Build(cfg, hc, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build price providers")
	}

	s := &server{
		calc:    calculator.New(p, cfg.Simulation.BusinessDaysPerMonth, logger),
		timeout: timeout,
		log:     logger,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("providers", p.Name()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to serve")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info().Msg("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
