// Package config loads and validates the optional .proctor YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for runner configuration.
const (
	DefaultTimeout   = 5 * time.Minute
	DefaultMaxOutput = 1 << 20 // 1 MB
)

// Config holds the parsed .proctor configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int           `yaml:"version"`
	RawTimeout   string        `yaml:"timeout"`    // e.g. "5m", "30s"
	RawMaxOutput int           `yaml:"max_output"` // bytes
	Install      InstallConfig `yaml:"install"`
	Test         TestConfig    `yaml:"test"`
	Invoke       InvokeConfig  `yaml:"invoke"`
}

// Timeout returns the configured timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// MaxOutputBytes returns the configured max output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// InstallConfig controls how dependencies are installed.
type InstallConfig struct {
	Args []string `yaml:"args"` // extra flags appended to go mod download
}

// TestConfig controls how the test suite is executed.
type TestConfig struct {
	Args []string `yaml:"args"` // extra flags appended to go test (e.g. -race, -count=1)
	Dir  string   `yaml:"dir"`  // root of the test tree for static discovery; default repo root
}

// InvokeConfig names the external program that receives a single file path.
type InvokeConfig struct {
	Command []string `yaml:"command"` // argv prefix, e.g. ["./bin/score"]
}

// LoadResult holds the parsed config and the discovered repository root.
type LoadResult struct {
	Config   *Config
	RepoRoot string // directory containing go.mod; falls back to workspace
}

// Load reads the .proctor file from the repository root.
// The repository root is discovered by walking upward from workspace
// looking for go.mod. If no .proctor file exists, a default Config is returned.
func Load(workspace string) (*LoadResult, error) {
	root, err := findRepoRoot(workspace)
	if err != nil {
		// No go.mod found; use workspace as root.
		root = workspace
	}

	path := filepath.Join(root, ".proctor")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadResult{Config: &Config{}, RepoRoot: root}, nil
		}
		return nil, fmt.Errorf("reading .proctor: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .proctor: %w", err)
	}
	return &LoadResult{Config: cfg, RepoRoot: root}, nil
}

// findRepoRoot walks upward from dir looking for a directory containing go.mod.
func findRepoRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
