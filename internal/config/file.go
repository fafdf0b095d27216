// Package config loads todoapp settings from TOML files and the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig is the raw TOML structure shared by the project and global
// files. Pointer fields distinguish "unset" from a zero value.
type fileConfig struct {
	Server   serverSection   `toml:"server"`
	Database databaseSection `toml:"database"`
	Auth     authSection     `toml:"auth"`
	Fixtures fixturesSection `toml:"fixtures"`
	E2E      e2eSection      `toml:"e2e"`
}

// serverSection represents the [server] section.
type serverSection struct {
	Host string `toml:"host"`
	Port *int   `toml:"port"`
}

// databaseSection represents the [database] section.
type databaseSection struct {
	Path string `toml:"path"`
}

// authSection represents the [auth] section.
type authSection struct {
	JWTSecret     string `toml:"jwt_secret"`
	JWTExpiration string `toml:"jwt_expiration"`
}

// fixturesSection represents the [fixtures] section.
type fixturesSection struct {
	SQLPath string `toml:"sql_path"`
}

// e2eSection represents the [e2e] section.
type e2eSection struct {
	BaseURL     string `toml:"base_url"`
	Screenshots string `toml:"screenshots"`
	Headless    *bool  `toml:"headless"`
	BrowserBin  string `toml:"browser_bin"`
	DebuggerURL string `toml:"debugger_url"`
	Timeout     string `toml:"timeout"`
}

// parseFile reads and validates a TOML config file.
func parseFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw fileConfig
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if raw.Server.Port != nil {
		if err := validatePort(*raw.Server.Port); err != nil {
			return nil, err
		}
	}
	if raw.Auth.JWTExpiration != "" {
		if _, err := time.ParseDuration(raw.Auth.JWTExpiration); err != nil {
			return nil, fmt.Errorf("invalid auth.jwt_expiration %q: %w", raw.Auth.JWTExpiration, err)
		}
	}
	if raw.E2E.Timeout != "" {
		if _, err := time.ParseDuration(raw.E2E.Timeout); err != nil {
			return nil, fmt.Errorf("invalid e2e.timeout %q: %w", raw.E2E.Timeout, err)
		}
	}

	return &raw, nil
}

// validatePort checks if the port is in the valid range (1-65535)
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	return nil
}
