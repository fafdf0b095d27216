package config

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultServerHost    = "localhost"
	DefaultServerPort    = 8080
	DefaultDBPath        = "todoapp.db"
	DefaultSQLPath       = "fixtures"
	DefaultBaseURL       = "http://localhost:8080"
	DefaultScreenshots   = "test-results/screenshots"
	DefaultJWTExpiration = 24 * time.Hour
	DefaultE2ETimeout    = 5 * time.Second
)

// Environment variables that override file settings.
const (
	EnvDBPath    = "TODOAPP_DB_PATH"
	EnvSQLPath   = "TODOAPP_SQL_PATH"
	EnvJWTSecret = "TODOAPP_JWT_SECRET"
	EnvBaseURL   = "TODOAPP_BASE_URL"
)

// Config is the final merged configuration. Precedence, highest first:
// environment, project todoapp.toml, global ~/.todoapp/config.toml, defaults.
type Config struct {
	ServerHost    string
	ServerPort    int
	DBPath        string
	SQLPath       string
	JWTSecret     string
	JWTExpiration time.Duration

	BaseURL     string
	Screenshots string
	Headless    bool
	BrowserBin  string
	DebuggerURL string
	Timeout     time.Duration

	// ProjectFile is the todoapp.toml that was applied, if any.
	ProjectFile string
}

// ServerAddr returns host:port for the API server.
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

// Resolve discovers the project config, loads the global config, applies
// the environment and merges them according to precedence rules.
func Resolve() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return ResolveFrom(cwd, homeDir, os.LookupEnv)
}

// ResolveFrom resolves config from an explicit working directory, home
// directory and environment lookup.
func ResolveFrom(cwd, homeDir string, lookupEnv func(string) (string, bool)) (*Config, error) {
	globalCfg, err := loadGlobalConfigFromDir(homeDir)
	if err != nil {
		return nil, err
	}

	projectCfg, err := discoverProjectConfigFrom(cwd)
	if err != nil && !errors.Is(err, ErrNoProjectConfig) {
		return nil, err
	}

	cfg := &Config{
		ServerHost:    DefaultServerHost,
		ServerPort:    DefaultServerPort,
		DBPath:        DefaultDBPath,
		SQLPath:       DefaultSQLPath,
		JWTExpiration: DefaultJWTExpiration,
		BaseURL:       DefaultBaseURL,
		Screenshots:   DefaultScreenshots,
		Headless:      true,
		Timeout:       DefaultE2ETimeout,
	}

	cfg.apply(globalCfg, homeDir)
	if projectCfg != nil {
		cfg.apply(projectCfg.file, projectCfg.Dir())
		cfg.ProjectFile = projectCfg.Path
	}

	if v, ok := lookupEnv(EnvDBPath); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := lookupEnv(EnvSQLPath); ok && v != "" {
		cfg.SQLPath = v
	}
	if v, ok := lookupEnv(EnvJWTSecret); ok && v != "" {
		cfg.JWTSecret = v
	}
	if v, ok := lookupEnv(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}

	return cfg, nil
}

// apply overlays the set fields of f. Relative paths are made absolute
// against baseDir.
func (c *Config) apply(f *fileConfig, baseDir string) {
	if f.Server.Host != "" {
		c.ServerHost = f.Server.Host
	}
	if f.Server.Port != nil {
		c.ServerPort = *f.Server.Port
	}
	if f.Database.Path != "" {
		c.DBPath = resolvePath(baseDir, f.Database.Path)
	}
	if f.Fixtures.SQLPath != "" {
		c.SQLPath = resolvePath(baseDir, f.Fixtures.SQLPath)
	}
	if f.Auth.JWTSecret != "" {
		c.JWTSecret = f.Auth.JWTSecret
	}
	if f.Auth.JWTExpiration != "" {
		// Validated in parseFile.
		c.JWTExpiration, _ = time.ParseDuration(f.Auth.JWTExpiration)
	}
	if f.E2E.BaseURL != "" {
		c.BaseURL = f.E2E.BaseURL
	}
	if f.E2E.Screenshots != "" {
		c.Screenshots = resolvePath(baseDir, f.E2E.Screenshots)
	}
	if f.E2E.Headless != nil {
		c.Headless = *f.E2E.Headless
	}
	if f.E2E.BrowserBin != "" {
		c.BrowserBin = f.E2E.BrowserBin
	}
	if f.E2E.DebuggerURL != "" {
		c.DebuggerURL = f.E2E.DebuggerURL
	}
	if f.E2E.Timeout != "" {
		c.Timeout, _ = time.ParseDuration(f.E2E.Timeout)
	}
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(baseDir, p)
}
