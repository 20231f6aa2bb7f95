package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"nlpd/internal/common/fsutil"
)

// EnvPrefix prefixes every environment override, e.g. NLPD_ADDR.
const EnvPrefix = "NLPD_"

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FillEnv overrides fields of cfg from NLPD_* environment variables. Unset
// variables leave the field as it is.
func FillEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}

// Resolve builds the effective configuration: the file at path (optional),
// then environment overrides, then defaults for anything still unset.
// Relative paths for local models are anchored at the file's directory.
func Resolve(path string) (Config, error) {
	var (
		cfg  Config
		base string
		err  error
	)
	if path != "" {
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
		base = filepath.Dir(path)
	}
	if err := FillEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	cfg.ApplyDefaults()
	if cfg.ModelsDir, err = fsutil.ResolvePath(base, cfg.ModelsDir); err != nil {
		return cfg, err
	}
	for i, m := range cfg.Models {
		if m.Backend != "llama" {
			continue
		}
		if cfg.Models[i].Model, err = fsutil.ResolvePath(base, m.Model); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}
