package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/refract/pkg/workspace"
)

// ProjectConfig holds the contents of .refract/config.yaml.
type ProjectConfig struct {
	Version        string   `yaml:"version"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	Include        []string `yaml:"include"`
	Exclude        []string `yaml:"exclude"`
	MaxCachedFiles int      `yaml:"max_cached_files"`
	MCPLogPath     string   `yaml:"mcp_log_path"`
}

// loadProjectConfig reads .refract/config.yaml under the workspace root.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, ".refract", "config.yaml"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// scanOptions returns the configured scan patterns, falling back to the
// defaults for anything unset.
func (c *ProjectConfig) scanOptions() workspace.ScanOptions {
	options := workspace.DefaultScanOptions()
	if c == nil {
		return options
	}
	if len(c.Include) > 0 {
		options.Include = c.Include
	}
	if len(c.Exclude) > 0 {
		options.Exclude = c.Exclude
	}
	return options
}

// workspaceConfig returns the workspace cache configuration.
func (c *ProjectConfig) workspaceConfig() workspace.Config {
	cfg := workspace.DefaultConfig()
	if c != nil && c.MaxCachedFiles > 0 {
		cfg.MaxCachedFiles = c.MaxCachedFiles
	}
	return cfg
}
