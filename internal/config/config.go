package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	ListenPort int `toml:"port"`

	Backend struct {
		BaseURL string `toml:"base_url"`
		// Per-request timeout in seconds
		Timeout int `toml:"timeout"`
	} `toml:"backend"`

	Session struct {
		// Seconds between two expiry checks of the stored credential
		WatchdogInterval int `toml:"watchdog_interval"`

		Cookie struct {
			Name string `toml:"name"`
			// Lifetime of the credential cookie in seconds, independent of the token's own exp claim
			Lifetime int `toml:"lifetime"`
		} `toml:"cookie"`

		Store struct {
			Type string `toml:"type"`
			Path string `toml:"path"`

			Redis struct {
				Addr     string `toml:"addr"`
				Password string `toml:"password"`
				DB       int    `toml:"db"`
				Prefix   string `toml:"prefix"`
			} `toml:"redis"`
		} `toml:"store"`
	} `toml:"session"`

	Geocoding struct {
		APIKey  string `toml:"api_key"`
		BaseURL string `toml:"base_url"`
	} `toml:"geocoding"`

	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`

	Metrics struct {
		Enabled bool `toml:"enabled"`
	} `toml:"metrics"`
}

// TOML unmarshalling leaves fields missing from the file untouched, so defaults are applied first
func (c *Config) setDefaults() {
	c.ListenPort = 8080

	c.Backend.Timeout = 30

	c.Session.WatchdogInterval = 30
	c.Session.Cookie.Name = "token"
	c.Session.Cookie.Lifetime = 60 * 60 * 24 // 1 day

	c.Session.Store.Type = StoreFile
	c.Session.Store.Path = defaultStorePath()
	c.Session.Store.Redis.Addr = "localhost:6379"
	c.Session.Store.Redis.Prefix = "labour-console"

	c.Geocoding.BaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

	c.Log.Level = "info"
	c.Log.Format = "console"

	c.Metrics.Enabled = true
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "labour-console-session.toml"
	}
	return filepath.Join(dir, "labour-console", "session.toml")
}

func (c *Config) WatchdogInterval() time.Duration {
	return time.Duration(c.Session.WatchdogInterval) * time.Second
}

func (c *Config) CookieLifetime() time.Duration {
	return time.Duration(c.Session.Cookie.Lifetime) * time.Second
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.Timeout) * time.Second
}

// Default returns a config with every default applied, before any file or environment
func Default() *Config {
	conf := new(Config)
	conf.setDefaults()
	return conf
}

// Load reads the TOML file at path (a missing file is not an error), applies .env and
// LABOUR_* environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	conf := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(file, conf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults and environment only
	default:
		return nil, err
	}

	// A missing .env is normal outside development
	_ = godotenv.Load()

	if err := conf.applyEnv(); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LABOUR_API_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("LABOUR_GEOCODING_API_KEY"); v != "" {
		c.Geocoding.APIKey = v
	}
	if v := os.Getenv("LABOUR_STORE_TYPE"); v != "" {
		c.Session.Store.Type = v
	}
	if v := os.Getenv("LABOUR_STORE_PATH"); v != "" {
		c.Session.Store.Path = v
	}
	if v := os.Getenv("LABOUR_REDIS_ADDR"); v != "" {
		c.Session.Store.Redis.Addr = v
	}
	if v := os.Getenv("LABOUR_REDIS_PASSWORD"); v != "" {
		c.Session.Store.Redis.Password = v
	}
	if v := os.Getenv("LABOUR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LABOUR_PORT: %w", err)
		}
		c.ListenPort = port
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("please supply backend.base_url (or LABOUR_API_BASE_URL)")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL)
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")

	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("invalid port %d", c.ListenPort)
	}

	if c.Session.WatchdogInterval <= 0 {
		return fmt.Errorf("session.watchdog_interval must be positive, got %d", c.Session.WatchdogInterval)
	}
	if c.Session.Cookie.Lifetime <= 0 {
		return fmt.Errorf("session.cookie.lifetime must be positive, got %d", c.Session.Cookie.Lifetime)
	}
	if c.Session.Cookie.Name == "" {
		return errors.New("session.cookie.name must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative, got %d", c.Backend.Timeout)
	}

	switch c.Session.Store.Type {
	case StoreFile:
		if c.Session.Store.Path == "" {
			return errors.New("session.store.path is required for the file store")
		}
	case StoreMemory:
	case StoreRedis:
		if c.Session.Store.Redis.Addr == "" {
			return errors.New("session.store.redis.addr is required for the redis store")
		}
	default:
		return fmt.Errorf("invalid session store type (%s), valid types are %q, %q and %q", c.Session.Store.Type, StoreFile, StoreMemory, StoreRedis)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format (%s), valid formats are \"console\" and \"json\"", c.Log.Format)
	}

	return nil
}
