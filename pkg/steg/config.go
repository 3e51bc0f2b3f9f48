package steg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of the codec options.
type Config struct {
	Chunks    int  `json:"chunks" yaml:"chunks"`
	Workers   int  `json:"workers" yaml:"workers"`
	Strict    bool `json:"strict" yaml:"strict"`
	LineWidth int  `json:"line_width" yaml:"line_width"`
}

var configNames = []string{"chessteg.json", "chessteg.yaml", "chessteg.yml"}

// ErrConfigNotFound is returned by FindConfigPath when no config file
// exists in the working directory or any of its parents.
var ErrConfigNotFound = errors.New("config not found")

func DefaultConfig() Config {
	return Config{Chunks: 1}
}

func FindConfigPath() (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	dir := cwd
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, filepath.Dir(path), nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", fmt.Errorf("%w: none of %v from %s", ErrConfigNotFound, configNames, cwd)
}

// LoadConfig reads a JSON or YAML config, picked by file extension.
// Fields left out keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ResolveConfig loads path when given, otherwise the nearest config file
// above the working directory. With no file at all it returns defaults.
func ResolveConfig(path string) (Config, string, error) {
	if path == "" {
		found, _, err := FindConfigPath()
		if errors.Is(err, ErrConfigNotFound) {
			return DefaultConfig(), "", nil
		}
		if err != nil {
			return Config{}, "", err
		}
		path = found
	}
	cfg, err := LoadConfig(path)
	return cfg, path, err
}

func (c Config) Validate() error {
	switch {
	case c.Chunks < 0:
		return fmt.Errorf("%w: chunks must not be negative, got %d", ErrInvalidConfig, c.Chunks)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.LineWidth < 0:
		return fmt.Errorf("%w: line_width must not be negative, got %d", ErrInvalidConfig, c.LineWidth)
	}
	return nil
}

func (c Config) Mode() Mode {
	if c.Strict {
		return ModeStrict
	}
	return ModeCompatible
}
