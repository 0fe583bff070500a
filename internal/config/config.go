// Package config loads storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cache backends.
const (
	BackendSocket = "socket"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

type Config struct {
	CommerceURL     string        `env:"STOREFRONT_COMMERCE_URL" envDefault:"http://localhost:9000"`
	PublishableKey  string        `env:"STOREFRONT_PUBLISHABLE_KEY"`
	CommerceTimeout time.Duration `env:"STOREFRONT_COMMERCE_TIMEOUT" envDefault:"5s"`

	CMSURL   string `env:"STOREFRONT_CMS_URL" envDefault:"https://graphql.datocms.com/"`
	CMSToken string `env:"STOREFRONT_CMS_TOKEN"`

	// ContentTimeout bounds CMS and RPC calls.
	ContentTimeout time.Duration `env:"STOREFRONT_CONTENT_TIMEOUT" envDefault:"10s"`

	SupabaseURL string `env:"STOREFRONT_SUPABASE_URL"`
	SupabaseKey string `env:"STOREFRONT_SUPABASE_KEY"`

	CacheExpiry  time.Duration `env:"STOREFRONT_CACHE_EXPIRY" envDefault:"5m"`
	CacheBackend string        `env:"STOREFRONT_CACHE_BACKEND" envDefault:"socket"`
	CacheSocket  string        `env:"STOREFRONT_CACHE_SOCK"`
	CacheDB      string        `env:"STOREFRONT_CACHE_DB"`
	RedisAddr    string        `env:"STOREFRONT_REDIS_ADDR" envDefault:"localhost:6379"`

	Locale   string `env:"STOREFRONT_LOCALE" envDefault:"en"`
	Currency string `env:"STOREFRONT_CURRENCY" envDefault:"QAR"`
}

// Load parses the environment, fills path defaults, and validates.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CacheSocket == "" {
		cfg.CacheSocket = filepath.Join(cacheDir(), "cache.sock")
	}
	if cfg.CacheDB == "" {
		cfg.CacheDB = filepath.Join(cacheDir(), "cache.bbolt")
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.CommerceURL == "" {
		errs = append(errs, errors.New("STOREFRONT_COMMERCE_URL is required"))
	}
	if c.CommerceTimeout <= 0 {
		errs = append(errs, errors.New("STOREFRONT_COMMERCE_TIMEOUT must be positive"))
	}
	if c.ContentTimeout <= 0 {
		errs = append(errs, errors.New("STOREFRONT_CONTENT_TIMEOUT must be positive"))
	}
	if c.CacheExpiry <= 0 {
		errs = append(errs, errors.New("STOREFRONT_CACHE_EXPIRY must be positive"))
	}
	switch c.CacheBackend {
	case BackendSocket, BackendBolt, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.CacheBackend))
	}
	return errors.Join(errs...)
}

func cacheDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "storefront")
}
