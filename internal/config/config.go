package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	PolicyAny      = "any"
	PolicyNoReopen = "no-reopen"
)

// Config единая конфигурация клиента и тестового сервера API
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TaxRate        string        `yaml:"tax_rate"`
	StatusPolicy   string        `yaml:"status_policy"`
	SessionFile    string        `yaml:"session_file"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	Server         ServerConfig  `yaml:"server"`
}

// ServerConfig настройки cmd/storefront-api
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	Seed   bool   `yaml:"seed"`
	Images string `yaml:"images_dir"`
}

func Default() Config {
	return Config{
		APIBaseURL:     "http://localhost:3000",
		RequestTimeout: 15 * time.Second,
		TaxRate:        "0.10",
		StatusPolicy:   PolicyAny,
		SessionFile:    defaultSessionFile(),
		LogLevel:       "info",
		LogFormat:      "text",
		Server: ServerConfig{
			Addr:   ":3000",
			Seed:   true,
			Images: "images",
		},
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront-session"
	}
	return filepath.Join(dir, "storefront", "session.json")
}

// Load читает YAML (если path задан), затем накладывает переменные окружения
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"STOREFRONT_API_URL":       &c.APIBaseURL,
		"STOREFRONT_TAX_RATE":      &c.TaxRate,
		"STOREFRONT_STATUS_POLICY": &c.StatusPolicy,
		"STOREFRONT_SESSION_FILE":  &c.SessionFile,
		"STOREFRONT_LOG_LEVEL":     &c.LogLevel,
		"STOREFRONT_LOG_FORMAT":    &c.LogFormat,
		"STOREFRONT_ADDR":          &c.Server.Addr,
		"STOREFRONT_IMAGES_DIR":    &c.Server.Images,
	}
	for k, dst := range str {
		if v, ok := lookup(k); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("STOREFRONT_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

var (
	ErrBaseURL = errors.New("api_base_url must be an absolute http(s) URL")
	ErrTaxRate = errors.New("tax_rate must be a decimal between 0 and 1")
	ErrPolicy  = errors.New("status_policy must be \"any\" or \"no-reopen\"")
)

func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBaseURL
	}
	if _, err := c.Tax(); err != nil {
		return err
	}
	switch c.StatusPolicy {
	case PolicyAny, PolicyNoReopen:
	default:
		return ErrPolicy
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}
	return nil
}

// Tax ставка налога для оформления заказа
func (c Config) Tax() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.TaxRate))
	if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, ErrTaxRate
	}
	return d, nil
}
