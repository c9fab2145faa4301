package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func validConfig() Config {
	return Config{
		port:           8080,
		recordTimeout:  5 * time.Second,
		sendBuffer:     16,
		maxMessageSize: 512,
		sessionTimeout: time.Hour,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"tls pair", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, "--tls-cert"},
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too large", func(c *Config) { c.port = 65536 }, "invalid port"},
		{"negative session timeout", func(c *Config) { c.sessionTimeout = -time.Second }, "session timeout"},
		{"reaper disabled", func(c *Config) { c.sessionTimeout = 0 }, ""},
		{"zero record timeout", func(c *Config) { c.recordTimeout = 0 }, "record timeout"},
		{"no send buffer", func(c *Config) { c.sendBuffer = 0 }, "send buffer"},
		{"tiny messages", func(c *Config) { c.maxMessageSize = 64 }, "max message size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.wantErr != "" && err == nil:
				t.Fatalf("expected error containing %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	cfg := validConfig()
	if got := cfg.scheme(); got != "http" {
		t.Errorf("scheme = %q, want http", got)
	}

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if got := cfg.scheme(); got != "https" {
		t.Errorf("scheme = %q, want https", got)
	}
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	if err := cfg.validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.port != 8080 || cfg.sendBuffer != 16 || cfg.maxMessageSize != 512 {
		t.Errorf("unexpected defaults: %+v", *cfg)
	}
	if cfg.database != "" || cfg.metrics || cfg.mcp {
		t.Errorf("optional features enabled by default: %+v", *cfg)
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("TICTACTOE_PORT", "9090")
	t.Setenv("TICTACTOE_DATABASE", "games.db")
	t.Setenv("TICTACTOE_SESSION_TIMEOUT", "90s")
	t.Setenv("TICTACTOE_METRICS", "true")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.port)
	}
	if cfg.database != "games.db" {
		t.Errorf("database = %q", cfg.database)
	}
	if cfg.sessionTimeout != 90*time.Second {
		t.Errorf("session timeout = %s", cfg.sessionTimeout)
	}
	if !cfg.metrics {
		t.Error("metrics not enabled from environment")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TICTACTOE_PORT", "9090")

	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.RunE = nil
	cmd.Run = func(*cobra.Command, []string) {}
	cmd.SetArgs([]string{"--port", "7070", "--send_buffer", "4"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if cfg.port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.port)
	}
	if cfg.sendBuffer != 4 {
		t.Errorf("send buffer = %d, want 4 (underscore flag name)", cfg.sendBuffer)
	}
}
