package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/erdlayout/internal/server"
	"github.com/matzehuels/erdlayout/pkg/cache"
	"github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/schema"
)

// Environment variables that override the config file.
const (
	envServiceURL = "ERDLAYOUT_SERVICE_URL"
	envToken      = "ERDLAYOUT_TOKEN"
)

// Config is the contents of config.toml. Every section is optional.
//
//	[service]
//	url = "https://schema.example.com"
//	token = "..."
//	timeout = "30s"
//	dialect = "postgresql"
//	project = "42"
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	dir = "/var/cache/erdlayout"
//	disabled = false
//	ttl = "24h"
type Config struct {
	Service ServiceConfig `toml:"service"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
}

// ServiceConfig locates the remote schema service.
type ServiceConfig struct {
	URL     string   `toml:"url"`
	Token   string   `toml:"token"`
	Timeout duration `toml:"timeout"`
	Dialect string   `toml:"dialect"`
	Project string   `toml:"project"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig configures the remote response cache.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	Disabled bool     `toml:"disabled"`
	TTL      duration `toml:"ttl"`
}

// duration reads Go duration strings ("30s", "24h") from TOML.
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Timeout: duration{schema.DefaultTimeout},
			Dialect: "postgresql",
		},
		Server: ServerConfig{Addr: server.DefaultAddr},
		Cache:  CacheConfig{TTL: duration{cache.DefaultTTL}},
	}
}

// LoadConfig reads the config file at path over the defaults, then applies
// environment overrides. An empty path means the default location, which
// may be absent; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			switch {
			case os.IsNotExist(err) && !explicit:
			case os.IsNotExist(err):
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
			default:
				return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config file %s", path)
			}
		}
	}

	if v := os.Getenv(envServiceURL); v != "" {
		cfg.Service.URL = v
	}
	if v := os.Getenv(envToken); v != "" {
		cfg.Service.Token = v
	}
	return cfg, nil
}

// defaultConfigPath returns $XDG_CONFIG_HOME/erdlayout/config.toml, or ""
// when no config directory can be determined.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.toml")
}

// requireService fails when no service URL is configured.
func (c Config) requireService() error {
	if c.Service.URL == "" {
		return errors.New(errors.ErrCodeInvalidConfig,
			"no schema service configured: set [service] url in the config file or %s", envServiceURL)
	}
	return nil
}
