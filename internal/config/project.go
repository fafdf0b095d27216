package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the project configuration file.
const ConfigFileName = "todoapp.toml"

// ErrNoProjectConfig is returned when no todoapp.toml exists in the working
// directory or any of its parents.
var ErrNoProjectConfig = errors.New("no todoapp.toml found")

// ProjectConfig is a parsed todoapp.toml together with where it was found.
type ProjectConfig struct {
	Path string
	file *fileConfig
}

// Dir returns the directory containing the project file. Relative paths in
// the file are resolved against it.
func (c *ProjectConfig) Dir() string {
	return filepath.Dir(c.Path)
}

// DiscoverProjectConfig finds and parses todoapp.toml by traversing up the
// directory tree from the current working directory.
func DiscoverProjectConfig() (*ProjectConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return discoverProjectConfigFrom(cwd)
}

// discoverProjectConfigFrom searches for todoapp.toml starting from startDir.
func discoverProjectConfigFrom(startDir string) (*ProjectConfig, error) {
	dir := startDir

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return ParseProjectConfig(configPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoProjectConfig
		}
		dir = parent
	}
}

// ParseProjectConfig parses the todoapp.toml file at the given path.
func ParseProjectConfig(path string) (*ProjectConfig, error) {
	raw, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return &ProjectConfig{Path: path, file: raw}, nil
}
