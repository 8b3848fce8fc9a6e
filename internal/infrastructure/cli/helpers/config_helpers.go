// Package helpers holds small utilities shared by the CLI commands.
package helpers

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	configapp "github.com/doeshing/widgera/internal/application/config"
	"github.com/doeshing/widgera/internal/domain"
	configinfra "github.com/doeshing/widgera/internal/infrastructure/config"
)

// ConfigToMap converts cfg to its YAML shaped map, keyed as in config.yaml.
func ConfigToMap(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to map: %w", err)
	}
	return m, nil
}

// MapToConfig is the inverse of ConfigToMap. The result is validated.
func MapToConfig(m map[string]interface{}) (domain.Config, error) {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to marshal updated map: %w", err)
	}
	var cfg domain.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("failed to unmarshal to config: %w", err)
	}
	if err := configapp.Validate(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// LookupKey resolves a dotted key path such as "api.base_url".
func LookupKey(m map[string]interface{}, keyPath string) (interface{}, bool) {
	var node interface{} = m
	for _, key := range strings.Split(keyPath, ".") {
		branch, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if node, ok = branch[key]; !ok {
			return nil, false
		}
	}
	return node, true
}

// SetKey assigns value at a dotted key path. Only keys that already exist
// can be set, so typos do not silently add unknown settings.
func SetKey(m map[string]interface{}, keyPath string, value interface{}) error {
	keys := strings.Split(keyPath, ".")
	branch := m
	for _, key := range keys[:len(keys)-1] {
		next, ok := branch[key].(map[string]interface{})
		if !ok {
			return fmt.Errorf("unknown configuration key %s", keyPath)
		}
		branch = next
	}
	last := keys[len(keys)-1]
	if _, ok := branch[last]; !ok {
		return fmt.Errorf("unknown configuration key %s", keyPath)
	}
	branch[last] = value
	return nil
}

// ParseYAMLValue parses input as a YAML scalar or collection, falling back to
// the literal string.
func ParseYAMLValue(input string) interface{} {
	var parsed interface{}
	if err := yaml.Unmarshal([]byte(input), &parsed); err != nil || parsed == nil {
		return input
	}
	return parsed
}

// SaveConfigWithValidation validates cfg, backs up the current file when one
// exists and writes cfg in its place.
func SaveConfigWithValidation(loader *configinfra.FileLoader, cfg domain.Config) error {
	if loader == nil {
		return fmt.Errorf("config loader unavailable")
	}
	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := os.Stat(loader.Path()); err == nil {
		if _, err := loader.Backup(); err != nil {
			return fmt.Errorf("failed to create configuration backup: %w", err)
		}
	}
	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
