// Package config loads tool settings from a YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default locations relative to a Memoria installation.
const (
	DefaultFeaturesPath = "~/Memoria/AbilityFeatures.txt"
	DefaultSequenceRoot = "~/Memoria/SpecialEffects"
)

// Config holds the paths the editors operate on.
type Config struct {
	// FeaturesPath is the ability-features file opened by default.
	FeaturesPath string `yaml:"features_path"`
	// SequenceRoot is the directory holding the ef#### effect folders.
	SequenceRoot string `yaml:"sequence_root"`
	// TemplateDir holds template pack JSON files loaded at startup.
	TemplateDir string `yaml:"template_dir"`
}

// Load reads the config file ($MEMORIAKIT_CONFIG or
// ~/.config/memoriakit/config.yaml), applies environment overrides,
// and fills in defaults. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := &Config{}

	path := configPath()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func configPath() string {
	if env := os.Getenv("MEMORIAKIT_CONFIG"); env != "" {
		return env
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "memoriakit", "config.yaml")
}

func applyEnv(cfg *Config) {
	if env := os.Getenv("MEMORIAKIT_FEATURES"); env != "" {
		cfg.FeaturesPath = env
	}
	if env := os.Getenv("MEMORIAKIT_SEQUENCE_ROOT"); env != "" {
		cfg.SequenceRoot = env
	}
	if env := os.Getenv("MEMORIAKIT_TEMPLATES"); env != "" {
		cfg.TemplateDir = env
	}
}

func applyDefaults(cfg *Config) {
	if cfg.FeaturesPath == "" {
		cfg.FeaturesPath = DefaultFeaturesPath
	}
	if cfg.SequenceRoot == "" {
		cfg.SequenceRoot = DefaultSequenceRoot
	}
}
