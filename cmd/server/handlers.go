package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"coffeeinvest/internal/calculator"
	"coffeeinvest/internal/coffee"
	"coffeeinvest/internal/provider"
	"coffeeinvest/internal/report"
)

type server struct {
	calc    *calculator.Calculator
	timeout time.Duration
	log     zerolog.Logger
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/tiers", s.handleTiers)
	mux.HandleFunc("/api/simulate", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSimulate(w, r)
		case http.MethodPost:
			s.handlePostSimulate(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
	mux.HandleFunc("/api/series", s.handleSeries)
	return withRequestID(s.log, withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))))
}

type tierInfo struct {
	Name      string `json:"name"`
	DailyCost string `json:"daily_cost"`
}

func (s *server) handleTiers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	out := make([]tierInfo, 0, len(coffee.Tiers()))
	for _, t := range coffee.Tiers() {
		cost, err := t.DailyCost()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, tierInfo{Name: t.String(), DailyCost: cost.StringFixed(2)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiers": out, "currency": report.Currency})
}

type simulateBody struct {
	calculator.Input
	BusinessDays int `json:"business_days"`
}

func (s *server) handleGetSimulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var b simulateBody
	b.Symbol = q.Get("symbol")
	b.Coffee = q.Get("coffee")
	var err error
	if b.StartYear, b.EndYear, err = yearParams(q.Get("start"), q.Get("end")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if v := q.Get("business_days"); v != "" {
		if b.BusinessDays, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid business_days")
			return
		}
	}
	s.simulate(w, r.Context(), b)
}

func (s *server) handlePostSimulate(w http.ResponseWriter, r *http.Request) {
	var b simulateBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if b.StartYear == 0 {
		writeError(w, http.StatusBadRequest, "missing start year")
		return
	}
	if b.EndYear == 0 {
		b.EndYear = b.StartYear
	}
	s.simulate(w, r.Context(), b)
}

func (s *server) simulate(w http.ResponseWriter, rctx context.Context, b simulateBody) {
	calc := s.calc
	if b.BusinessDays != 0 {
		if b.BusinessDays < 1 || b.BusinessDays > 31 {
			writeError(w, http.StatusBadRequest, "business_days must be between 1 and 31")
			return
		}
		calc = calculator.New(s.calc.Provider, b.BusinessDays, s.calc.Log)
	}

	ctx, cancel := context.WithTimeout(rctx, s.timeout)
	defer cancel()
	rep, err := calc.Run(ctx, b.Input)
	if err != nil {
		zerolog.Ctx(rctx).Warn().Err(err).Str("symbol", b.Symbol).Msg("simulate failed")
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report.NewSummary(rep))
}

func (s *server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	start, end, err := yearParams(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	series, err := s.calc.Series(ctx, q.Get("symbol"), start, end)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("symbol", q.Get("symbol")).Msg("series failed")
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// yearParams parses start and end; a missing end means a single year.
func yearParams(startStr, endStr string) (int, int, error) {
	if strings.TrimSpace(startStr) == "" {
		return 0, 0, errors.New("missing start query param")
	}
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return 0, 0, errors.New("invalid start year")
	}
	end := start
	if strings.TrimSpace(endStr) != "" {
		if end, err = strconv.Atoi(strings.TrimSpace(endStr)); err != nil {
			return 0, 0, errors.New("invalid end year")
		}
	}
	return start, end, nil
}

func statusOf(err error) int {
	switch {
	case calculator.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
