package cli

import (
	"testing"
	"time"

	"github.com/matzehuels/erdlayout/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	newTestCLI(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Service.Dialect != "postgresql" {
		t.Errorf("Dialect = %q, want postgresql", cfg.Service.Dialect)
	}
	if cfg.Service.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Service.Timeout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", cfg.Cache.TTL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	newTestCLI(t)
	path := writeFile(t, "config.toml", `
[service]
url = "https://schema.example.com"
token = "from-file"
timeout = "5s"
dialect = "mysql"
project = "42"

[server]
addr = "127.0.0.1:9000"

[cache]
disabled = true
ttl = "1h"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"url", cfg.Service.URL, "https://schema.example.com"},
		{"token", cfg.Service.Token, "from-file"},
		{"timeout", cfg.Service.Timeout.Duration, 5 * time.Second},
		{"dialect", cfg.Service.Dialect, "mysql"},
		{"project", cfg.Service.Project, "42"},
		{"addr", cfg.Server.Addr, "127.0.0.1:9000"},
		{"disabled", cfg.Cache.Disabled, true},
		{"ttl", cfg.Cache.TTL.Duration, time.Hour},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	newTestCLI(t)
	t.Setenv(envServiceURL, "https://env.example.com")
	t.Setenv(envToken, "from-env")
	path := writeFile(t, "config.toml", "[service]\nurl = \"https://file.example.com\"\ntoken = \"file\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Service.URL != "https://env.example.com" || cfg.Service.Token != "from-env" {
		t.Errorf("env did not override file: %+v", cfg.Service)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	newTestCLI(t)

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing explicit file", "/nonexistent/erdlayout.toml", errors.ErrCodeFileNotFound},
		{"bad toml", writeFile(t, "bad.toml", "[service\nurl ="), errors.ErrCodeInvalidConfig},
		{"bad duration", writeFile(t, "dur.toml", "[service]\ntimeout = \"soon\"\n"), errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRequireService(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.requireService(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
	cfg.Service.URL = "http://localhost"
	if err := cfg.requireService(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
