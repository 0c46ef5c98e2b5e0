package app

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// BasePrefix is the URL prefix the whole API and the results file server
	// live under, matching the reverse-proxy mount in production.
	BasePrefix string `envconfig:"BASE_PREFIX" default:"/nservico"`

	CfgDir     string `envconfig:"CFG_DIR" default:"cfg"`
	DataDir    string `envconfig:"DATA_DIR" default:"data"`
	ResultsDir string `envconfig:"RESULTS_DIR" default:"results"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(cfg.BasePrefix, "/") {
		return nil, errors.New("base prefix must start with /")
	}
	cfg.BasePrefix = strings.TrimSuffix(cfg.BasePrefix, "/")
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// RosterPath is the client roster CSV file.
func (c *Config) RosterPath() string { return filepath.Join(c.CfgDir, "clientes.csv") }

// LedgerPath is the time-entry ledger CSV file.
func (c *Config) LedgerPath() string { return filepath.Join(c.DataDir, "notas.csv") }

// SettingsPath is the JSON settings file.
func (c *Config) SettingsPath() string { return filepath.Join(c.CfgDir, "settings.json") }

// AliasesPath is the optional YAML header-alias override file.
func (c *Config) AliasesPath() string { return filepath.Join(c.CfgDir, "aliases.yaml") }

// ResultsURLPrefix is the public path generated artifacts are served under.
func (c *Config) ResultsURLPrefix() string { return c.BasePrefix + "/results" }
