package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "GASPIPE_"
	configEnvVar = "GASPIPE_CONFIG"
)

// Source describes where one configuration resolution reads from. The
// zero value reads only the yaml file found by the Path search (the
// built-in defaults when none exists) and applies no environment or
// overrides; Load adds the environment overlay.
type Source struct {
	// Path is an explicit yaml file. Empty means: use $GASPIPE_CONFIG if
	// set, otherwise the first of config.yaml, config/config.yaml,
	// /etc/gaspipe/config.yaml that exists, otherwise no file.
	Path string

	// Env applies GASPIPE_* environment variables over the file values
	// (GASPIPE_LOG_LEVEL -> log.level).
	Env bool

	// Overrides is the highest-priority layer, keyed in dotted form
	// ("optimization.max_solution_time"). The CLI routes explicit flag
	// values through here.
	Overrides map[string]any
}

// Load resolves the standard configuration: defaults, then the searched
// yaml file, then the environment.
func Load() (*Config, error) {
	return LoadSource(Source{Env: true})
}

// LoadSource resolves configuration from an explicit source description.
// Defaults are not a koanf layer: the unmarshal target starts as
// Default(), so only keys a layer actually provides get overridden.
func LoadSource(src Source) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path := src.resolvePath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if src.Env {
		err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if len(src.Overrides) > 0 {
		if err := k.Load(confmap.Provider(src.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath picks the yaml file for this source.
func (src Source) resolvePath() string {
	if src.Path != "" {
		return src.Path
	}
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	for _, path := range []string{"config.yaml", "config/config.yaml", "/etc/gaspipe/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
