package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv holds an isolated project directory, home directory and environment.
type testEnv struct {
	projectDir string
	homeDir    string
	env        map[string]string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		projectDir: t.TempDir(),
		homeDir:    t.TempDir(),
		env:        map[string]string{},
	}
}

func (e *testEnv) lookup(key string) (string, bool) {
	v, ok := e.env[key]
	return v, ok
}

func (e *testEnv) writeProjectConfig(t *testing.T, content string) {
	t.Helper()
	configPath := filepath.Join(e.projectDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create project config: %v", err)
	}
}

func (e *testEnv) writeGlobalConfig(t *testing.T, content string) {
	t.Helper()
	dir := filepath.Join(e.homeDir, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s directory: %v", GlobalConfigDir, err)
	}
	configPath := filepath.Join(dir, GlobalConfigFileName)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create global config: %v", err)
	}
}

func (e *testEnv) resolve(t *testing.T) *Config {
	t.Helper()
	cfg, err := ResolveFrom(e.projectDir, e.homeDir, e.lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cfg
}

func TestResolve_Defaults(t *testing.T) {
	env := setupTestEnv(t)

	cfg := env.resolve(t)

	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("expected addr localhost:8080, got %s", cfg.ServerAddr())
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("expected db path %q, got %q", DefaultDBPath, cfg.DBPath)
	}
	if cfg.SQLPath != DefaultSQLPath {
		t.Errorf("expected sql path %q, got %q", DefaultSQLPath, cfg.SQLPath)
	}
	if !cfg.Headless {
		t.Error("expected headless by default")
	}
	if cfg.Timeout != DefaultE2ETimeout {
		t.Errorf("expected timeout %v, got %v", DefaultE2ETimeout, cfg.Timeout)
	}
	if cfg.ProjectFile != "" {
		t.Errorf("expected no project file, got %q", cfg.ProjectFile)
	}
}

func TestPrecedence_ProjectOverridesGlobal(t *testing.T) {
	env := setupTestEnv(t)

	env.writeGlobalConfig(t, `
[server]
host = "global-host"
port = 1111

[auth]
jwt_secret = "global-secret"
`)
	env.writeProjectConfig(t, `
[server]
port = 2222
`)

	cfg := env.resolve(t)

	if cfg.ServerHost != "global-host" {
		t.Errorf("expected host from global config, got %q", cfg.ServerHost)
	}
	if cfg.ServerPort != 2222 {
		t.Errorf("expected port from project config, got %d", cfg.ServerPort)
	}
	if cfg.JWTSecret != "global-secret" {
		t.Errorf("expected secret from global config, got %q", cfg.JWTSecret)
	}
}

func TestPrecedence_EnvOverridesFiles(t *testing.T) {
	env := setupTestEnv(t)

	env.writeProjectConfig(t, `
[database]
path = "/var/lib/todoapp/project.db"

[e2e]
base_url = "http://project:5173"
`)
	env.env[EnvDBPath] = "/tmp/env.db"
	env.env[EnvBaseURL] = "http://env:5173"
	env.env[EnvSQLPath] = "/srv/sql"
	env.env[EnvJWTSecret] = "env-secret"

	cfg := env.resolve(t)

	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.BaseURL != "http://env:5173" {
		t.Errorf("expected env base url, got %q", cfg.BaseURL)
	}
	if cfg.SQLPath != "/srv/sql" {
		t.Errorf("expected env sql path, got %q", cfg.SQLPath)
	}
	if cfg.JWTSecret != "env-secret" {
		t.Errorf("expected env secret, got %q", cfg.JWTSecret)
	}
}

func TestPrecedence_EmptyEnvIgnored(t *testing.T) {
	env := setupTestEnv(t)
	env.env[EnvDBPath] = ""

	cfg := env.resolve(t)

	if cfg.DBPath != DefaultDBPath {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestProject_RelativePathsResolvedAgainstFile(t *testing.T) {
	env := setupTestEnv(t)
	env.writeProjectConfig(t, `
[database]
path = "data/app.db"

[fixtures]
sql_path = "sql"

[e2e]
screenshots = "shots"
headless = false
timeout = "10s"
`)

	cfg := env.resolve(t)

	if want := filepath.Join(env.projectDir, "data", "app.db"); cfg.DBPath != want {
		t.Errorf("expected db path %q, got %q", want, cfg.DBPath)
	}
	if want := filepath.Join(env.projectDir, "sql"); cfg.SQLPath != want {
		t.Errorf("expected sql path %q, got %q", want, cfg.SQLPath)
	}
	if want := filepath.Join(env.projectDir, "shots"); cfg.Screenshots != want {
		t.Errorf("expected screenshots %q, got %q", want, cfg.Screenshots)
	}
	if cfg.Headless {
		t.Error("expected headless=false from project config")
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
}

func TestDiscovery_ParentDirectory(t *testing.T) {
	env := setupTestEnv(t)
	env.writeProjectConfig(t, `
[server]
port = 3333
`)

	childDir := filepath.Join(env.projectDir, "a", "b")
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatalf("failed to create child directory: %v", err)
	}

	cfg, err := ResolveFrom(childDir, env.homeDir, env.lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerPort != 3333 {
		t.Errorf("expected port 3333 from parent config, got %d", cfg.ServerPort)
	}
	if cfg.ProjectFile != filepath.Join(env.projectDir, ConfigFileName) {
		t.Errorf("unexpected project file %q", cfg.ProjectFile)
	}
}

func TestDiscovery_NotFound(t *testing.T) {
	_, err := discoverProjectConfigFrom(t.TempDir())
	if err != ErrNoProjectConfig {
		t.Errorf("expected ErrNoProjectConfig, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid toml", `[server`, "failed to parse TOML"},
		{"port too high", "[server]\nport = 70000", "invalid port"},
		{"port zero", "[server]\nport = 0", "invalid port"},
		{"bad expiration", "[auth]\njwt_expiration = \"forever\"", "jwt_expiration"},
		{"bad timeout", "[e2e]\ntimeout = \"soon\"", "e2e.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			env.writeProjectConfig(t, tt.content)

			_, err := ResolveFrom(env.projectDir, env.homeDir, env.lookup)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGlobal_InvalidFileIsAnError(t *testing.T) {
	env := setupTestEnv(t)
	env.writeGlobalConfig(t, `not = [valid`)

	if _, err := ResolveFrom(env.projectDir, env.homeDir, env.lookup); err == nil {
		t.Error("expected error for invalid global config")
	}
}
