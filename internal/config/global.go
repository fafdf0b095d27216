package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// GlobalConfigDir is the name of the global config directory in home
	GlobalConfigDir = ".todoapp"

	// GlobalConfigFileName is the name of the global config file
	GlobalConfigFileName = "config.toml"
)

// loadGlobalConfigFromDir loads global config using homeDir as home.
func loadGlobalConfigFromDir(homeDir string) (*fileConfig, error) {
	configPath := filepath.Join(homeDir, GlobalConfigDir, GlobalConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &fileConfig{}, nil
	}

	cfg, err := parseFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	return cfg, nil
}
