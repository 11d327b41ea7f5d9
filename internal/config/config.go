// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"subscribe-payflow/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`  // requests per window per IP
	RateWindow     time.Duration `yaml:"rate_window"` // e.g. 1m
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`

	// ledger circuit breaker
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// InlineCTAConfig selects the publisher slot used for inline confirmation.
type InlineCTAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	ConfigID string `yaml:"config_id"`
}

type PayflowConfig struct {
	PublicationID   string          `yaml:"publication_id"`
	FrontendBaseURL string          `yaml:"frontend_base_url"`
	WindowOpenMode  string          `yaml:"window_open_mode"` // auto|redirect
	PayEnvironment  string          `yaml:"pay_environment"`  // TEST|PRODUCTION
	PlayEnvironment string          `yaml:"play_environment"` // STAGING|PROD
	ClientVersion   string          `yaml:"client_version"`
	InlineCTA       InlineCTAConfig `yaml:"inline_cta"`

	// PayURL is the provider page opened in redirect mode; ReturnURL is
	// where the provider sends the reader back.
	PayURL        string        `yaml:"pay_url"`
	ReturnURL     string        `yaml:"return_url"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type ClientConfigSection struct {
	Defaults       model.ClientConfig            `yaml:"defaults"`
	ForceLang      bool                          `yaml:"force_lang_in_iframes"`
	Language       string                        `yaml:"language"`
	CacheTTL       time.Duration                 `yaml:"cache_ttl"`
	PerPublication map[string]model.ClientConfig `yaml:"per_publication"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Config struct {
	Log          LogConfig           `yaml:"log"`
	HTTP         HTTPConfig          `yaml:"http"`
	Database     DatabaseConfig      `yaml:"database"`
	Redis        RedisConfig         `yaml:"redis"`
	Payflow      PayflowConfig       `yaml:"payflow"`
	ClientConfig ClientConfigSection `yaml:"client_config"`
	Metrics      MetricsConfig       `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the yaml file named by -config, applies PAYFLOW_*
// overrides from the environment (and -env file) and then defaults.
func LoadConfig() (*Config, error) {
	var configPath, envPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.StringVar(&envPath, "env", ".env", "optional dotenv file")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	if err := loadDotEnv(envPath); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse decodes yaml config bytes, applies env overrides and defaults, and
// validates.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RateLimit <= 0 {
		cfg.HTTP.RateLimit = 60
	}
	if cfg.HTTP.RateWindow <= 0 {
		cfg.HTTP.RateWindow = time.Minute
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "payflow"
	}
	if cfg.Payflow.FrontendBaseURL == "" {
		cfg.Payflow.FrontendBaseURL = "https://news.google.com"
	}
	if cfg.Payflow.WindowOpenMode == "" {
		cfg.Payflow.WindowOpenMode = model.WindowOpenAuto
	}
	if cfg.Payflow.PayEnvironment == "" {
		cfg.Payflow.PayEnvironment = "TEST"
	}
	if cfg.Payflow.PlayEnvironment == "" {
		cfg.Payflow.PlayEnvironment = "STAGING"
	}
	if cfg.Payflow.ClientVersion == "" {
		cfg.Payflow.ClientVersion = "0.0.0"
	}
	if cfg.Payflow.PayURL == "" {
		cfg.Payflow.PayURL = "https://pay.google.com/gp/p/ui/pay"
	}
	if cfg.Payflow.SessionTTL <= 0 {
		cfg.Payflow.SessionTTL = time.Hour
	}
	if cfg.Payflow.SweepInterval <= 0 {
		cfg.Payflow.SweepInterval = 5 * time.Minute
	}
	if cfg.ClientConfig.CacheTTL <= 0 {
		cfg.ClientConfig.CacheTTL = 5 * time.Minute
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Minimal validation
	if cfg.Payflow.PublicationID == "" {
		return nil, errors.New("payflow.publication_id is required")
	}
	if cfg.Payflow.WindowOpenMode != model.WindowOpenAuto && cfg.Payflow.WindowOpenMode != model.WindowOpenRedirect {
		return nil, fmt.Errorf("payflow.window_open_mode must be %q or %q", model.WindowOpenAuto, model.WindowOpenRedirect)
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
