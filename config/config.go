// Package config loads fqa settings from an optional yaml file, the
// environment and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds all fqa settings.
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Backend BackendConfig `mapstructure:"backend"`
	Answer  AnswerConfig  `mapstructure:"answer"`
	Log     LogConfig     `mapstructure:"log"`
}

// DataConfig locates the datasets.
type DataConfig struct {
	Trades          string `mapstructure:"trades"`
	Holdings        string `mapstructure:"holdings"`
	PortfolioColumn string `mapstructure:"portfolio_column"`
	PnLColumn       string `mapstructure:"pnl_column"`
	Currency        string `mapstructure:"currency"` // only used by human readable reports
}

// BackendConfig selects the language model.
type BackendConfig struct {
	Provider string        `mapstructure:"provider"` // groq, openai or gemini
	Model    string        `mapstructure:"model"`    // empty for the provider's default
	BaseURL  string        `mapstructure:"base_url"` // OpenAI compatible providers only
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AnswerConfig tunes the answering stage.
type AnswerConfig struct {
	Strict bool `mapstructure:"strict"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Providers lists the supported backend providers.
var Providers = []string{"groq", "openai", "gemini"}

// credentials lists, per provider, the environment variables holding its API key.
var credentials = map[string][]string{
	"groq":   {"GROQ_API_KEY", "groq_api_key"},
	"openai": {"OPENAI_API_KEY"},
	"gemini": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.trades", "trades.csv")
	v.SetDefault("data.holdings", "holdings.csv")
	v.SetDefault("data.portfolio_column", "PortfolioName")
	v.SetDefault("data.pnl_column", "PL_YTD")
	v.SetDefault("data.currency", "USD")
	v.SetDefault("backend.provider", "groq")
	v.SetDefault("backend.model", "")
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout", "60s")
	v.SetDefault("answer.strict", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Load reads the configuration.
//
// Settings come, by increasing priority, from defaults, the config file,
// then FQA_ prefixed environment variables (FQA_BACKEND_PROVIDER, ...).
// A .env file in the working directory is loaded into the environment first.
// When 'file' is empty, fqa.yaml is looked up in the working directory and
// in ~/.config/fqa, and may be absent.
func Load(file string) (*Config, error) {
	// a missing .env is the usual case.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fqa")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fqa"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	cfg.Backend.Provider = strings.ToLower(cfg.Backend.Provider)
	if cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = lookupCredential(cfg.Backend.Provider)
	}
	return &cfg, nil
}

func lookupCredential(provider string) string {
	for _, name := range credentials[provider] {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs error
	if c.Data.Trades == "" {
		errs = errors.Join(errs, errors.New("data.trades: missing path"))
	}
	if c.Data.Holdings == "" {
		errs = errors.Join(errs, errors.New("data.holdings: missing path"))
	}
	if c.Data.PortfolioColumn == "" {
		errs = errors.Join(errs, errors.New("data.portfolio_column: missing column name"))
	}
	if c.Data.PnLColumn == "" {
		errs = errors.Join(errs, errors.New("data.pnl_column: missing column name"))
	}
	if money.GetCurrency(c.Data.Currency) == nil {
		errs = errors.Join(errs, fmt.Errorf("data.currency: unknown currency %q", c.Data.Currency))
	}
	if _, ok := credentials[c.Backend.Provider]; !ok {
		errs = errors.Join(errs, fmt.Errorf("backend.provider: %q is not one of %s", c.Backend.Provider, strings.Join(Providers, ", ")))
	}
	if c.Backend.Timeout <= 0 {
		errs = errors.Join(errs, fmt.Errorf("backend.timeout: must be positive, got %s", c.Backend.Timeout))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = errors.Join(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = errors.Join(errs, fmt.Errorf("log.format: %q is neither json nor console", c.Log.Format))
	}
	return errs
}
