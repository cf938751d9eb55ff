package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

type Server struct {
	Port              string `json:"port" validate:"required,numeric"`
	RequestTimeoutSec int    `json:"request_timeout_sec" validate:"gt=0"`
}

type Simulation struct {
	// BusinessDaysPerMonth is the number of coffees bought per month.
	BusinessDaysPerMonth int `json:"business_days_per_month" validate:"gte=1,lte=31"`
}

type Log struct {
	Level  string `json:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" validate:"oneof=console json"`
}

// Limits are the decorators applied to every provider.
type Limits struct {
	MaxRequestsPerMinute  int `json:"max_requests_per_minute" validate:"gte=0"`
	MinRequestIntervalSec int `json:"min_request_interval_sec" validate:"gte=0"`
	Burst                 int `json:"burst" validate:"gte=0"`
	CacheTTLSeconds       int `json:"cache_ttl_sec" validate:"gte=0"`
	CacheMaxItems         int `json:"cache_max_items" validate:"gte=0"`
}

type Yahoo struct {
	Enabled  bool `json:"enabled"`
	Adjusted bool `json:"adjusted"`
	Limits
}

type AlphaVantage struct {
	Enabled  bool   `json:"enabled"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint" validate:"omitempty,url"`
	Adjusted bool   `json:"adjusted"`
	Limits
}

type EODHD struct {
	Enabled  bool   `json:"enabled"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint" validate:"omitempty,url"`
	Exchange string `json:"exchange"`
	Adjusted bool   `json:"adjusted"`
	Limits
}

type Config struct {
	Server       Server       `json:"server"`
	Simulation   Simulation   `json:"simulation"`
	Log          Log          `json:"log"`
	Providers    []string     `json:"providers" validate:"dive,oneof=yahoo alphavantage eodhd"`
	Yahoo        Yahoo        `json:"yahoo"`
	AlphaVantage AlphaVantage `json:"alphavantage"`
	EODHD        EODHD        `json:"eodhd"`
}

func Default() Config {
	return Config{
		Server:     Server{Port: "8080", RequestTimeoutSec: 15},
		Simulation: Simulation{BusinessDaysPerMonth: 20},
		Log:        Log{Level: "info", Format: "console"},
		Providers:  []string{"yahoo", "alphavantage", "eodhd"},
		Yahoo: Yahoo{
			Enabled:  true,
			Adjusted: true,
			Limits: Limits{
				MaxRequestsPerMinute: 60,
				Burst:                5,
				CacheTTLSeconds:      3600,
				CacheMaxItems:        256,
			},
		},
		AlphaVantage: AlphaVantage{
			Enabled:  true,
			Endpoint: "https://www.alphavantage.co",
			Adjusted: true,
			Limits: Limits{
				MaxRequestsPerMinute: 5,
				Burst:                1,
				CacheTTLSeconds:      3600,
				CacheMaxItems:        256,
			},
		},
		EODHD: EODHD{
			Enabled:  true,
			Endpoint: "https://eodhd.com/api/eod",
			Exchange: "US",
			Adjusted: true,
			Limits: Limits{
				MaxRequestsPerMinute: 60,
				Burst:                5,
				CacheTTLSeconds:      3600,
				CacheMaxItems:        256,
			},
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
// The merged result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	envInt("REQUEST_TIMEOUT_SEC", &cfg.Server.RequestTimeoutSec, 1)
	envInt("BUSINESS_DAYS_PER_MONTH", &cfg.Simulation.BusinessDaysPerMonth, 1)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PROVIDER_ORDER"); v != "" {
		cfg.Providers = SplitCSV(strings.ToLower(v))
	}

	envBool("YAHOO_ENABLED", &cfg.Yahoo.Enabled)
	envLimits("YAHOO", &cfg.Yahoo.Limits)

	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENDPOINT"); v != "" {
		cfg.AlphaVantage.Endpoint = v
	}
	envBool("ALPHAVANTAGE_ENABLED", &cfg.AlphaVantage.Enabled)
	envLimits("ALPHAVANTAGE", &cfg.AlphaVantage.Limits)

	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		cfg.EODHD.APIKey = v
	}
	if v := os.Getenv("EODHD_ENDPOINT"); v != "" {
		cfg.EODHD.Endpoint = v
	}
	if v := os.Getenv("EODHD_EXCHANGE"); v != "" {
		cfg.EODHD.Exchange = v
	}
	envBool("EODHD_ENABLED", &cfg.EODHD.Enabled)
	envLimits("EODHD", &cfg.EODHD.Limits)
}

func envLimits(prefix string, l *Limits) {
	envInt(prefix+"_MAX_RPM", &l.MaxRequestsPerMinute, 0)
	envInt(prefix+"_MIN_INTERVAL_SEC", &l.MinRequestIntervalSec, 0)
	envInt(prefix+"_BURST", &l.Burst, 1)
	envInt(prefix+"_CACHE_TTL_SEC", &l.CacheTTLSeconds, 0)
	envInt(prefix+"_CACHE_MAX_ITEMS", &l.CacheMaxItems, 1)
}

// envInt sets *dst from key when the value parses and is at least min.
func envInt(key string, dst *int, min int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err == nil && x >= min {
		*dst = x
	}
}

func envBool(key string, dst *bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		*dst = true
	case "0", "false", "no", "n":
		*dst = false
	}
}

func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
