package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[backend]
base_url = "https://api.example.com/"
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, conf.ListenPort)
	assert.Equal(t, "https://api.example.com", conf.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, conf.WatchdogInterval())
	assert.Equal(t, 24*time.Hour, conf.CookieLifetime())
	assert.Equal(t, 30*time.Second, conf.BackendTimeout())
	assert.Equal(t, StoreFile, conf.Session.Store.Type)
	assert.Equal(t, "token", conf.Session.Cookie.Name)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
port = 9000

[backend]
base_url = "http://localhost:4000"
timeout = 5

[session]
watchdog_interval = 10

[session.store]
type = "redis"

[session.store.redis]
addr = "redis:6379"
db = 2

[log]
format = "json"
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, conf.ListenPort)
	assert.Equal(t, 10*time.Second, conf.WatchdogInterval())
	assert.Equal(t, 5*time.Second, conf.BackendTimeout())
	assert.Equal(t, StoreRedis, conf.Session.Store.Type)
	assert.Equal(t, "redis:6379", conf.Session.Store.Redis.Addr)
	assert.Equal(t, 2, conf.Session.Store.Redis.DB)
	assert.Equal(t, "json", conf.Log.Format)
}

func TestLoadMissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("LABOUR_API_BASE_URL", "https://env.example.com")
	t.Setenv("LABOUR_PORT", "8181")
	t.Setenv("LABOUR_STORE_TYPE", "memory")

	conf, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", conf.Backend.BaseURL)
	assert.Equal(t, 8181, conf.ListenPort)
	assert.Equal(t, StoreMemory, conf.Session.Store.Type)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.Backend.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.Backend.BaseURL = "/api" }},
		{"zero watchdog", func(c *Config) { c.Session.WatchdogInterval = 0 }},
		{"zero cookie lifetime", func(c *Config) { c.Session.Cookie.Lifetime = 0 }},
		{"unknown store", func(c *Config) { c.Session.Store.Type = "etcd" }},
		{"file store without path", func(c *Config) { c.Session.Store.Path = "" }},
		{"bad port", func(c *Config) { c.ListenPort = 70000 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Default()
			conf.Backend.BaseURL = "https://api.example.com"
			tt.mutate(conf)
			assert.Error(t, conf.Validate())
		})
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := writeConfig(t, `port = "not a number`)
	_, err := Load(path)
	assert.Error(t, err)
}
