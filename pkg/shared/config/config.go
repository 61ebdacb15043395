package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Logger  Logger  `yaml:"logger"`
	Audit   Audit   `yaml:"audit"`
	Policy  Policy  `yaml:"policy"`
	Harness Harness `yaml:"harness"`
}

type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Audit describes which files are scanned and which of them may talk to the network.
type Audit struct {
	Root             string   `yaml:"root"`
	Include          []string `yaml:"include"`
	IgnoreDirs       []string `yaml:"ignore_dirs"`
	Whitelist        []string `yaml:"whitelist"`
	NetworkModule    string   `yaml:"network_module"`
	FetchIdentifier  string   `yaml:"fetch_identifier"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
	AllowParseErrors bool     `yaml:"allow_parse_errors"`
	Jobs             int      `yaml:"jobs"`
}

type Policy struct {
	Hosts              []HostRule `yaml:"hosts"`
	DynamicMarkerScope string     `yaml:"dynamic_marker_scope"`
}

// HostRule is a single host allowlist entry.
type HostRule struct {
	Match   string `yaml:"match"`
	Pattern string `yaml:"pattern"`
}

type Harness struct {
	Timeout time.Duration `yaml:"timeout"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig reads the YAML file at configPath on top of the built-in defaults.
// Lists present in the file replace the default lists.
func NewConfig(configPath string) (*Config, error) {
	config := Default()

	if err := LoadYAML(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfig resolves the configuration source for a run.
// An explicitly requested file must exist; the implicit one under root is optional.
func LoadConfig(explicitPath, root string) (*Config, error) {
	path := SetThen(explicitPath, os.Getenv(EnvConfig))
	if path != "" {
		cfg, err := NewConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", path, err)
		}
		return cfg, nil
	}

	implicit := DefaultConfigPath(root)
	if _, err := os.Stat(implicit); err == nil {
		cfg, err := NewConfig(implicit)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", implicit, err)
		}
		return cfg, nil
	}

	return Default(), nil
}
