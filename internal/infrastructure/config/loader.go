package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/widgera/assets"
	appconfig "github.com/doeshing/widgera/internal/application/config"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/pkg/filesystem"
	"github.com/doeshing/widgera/internal/ports"
)

// Environment variables recognised by the loader.
const (
	EnvConfigPath = "WIDGERA_CONFIG"
	EnvAPIURL     = "WIDGERA_API_URL"
	EnvTimeout    = "WIDGERA_TIMEOUT"
)

// FileLoader loads YAML configuration from ~/.widgera/config.yaml (overridable via WIDGERA_CONFIG).
type FileLoader struct {
	overridePath string
	envFile      string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, envFile: ".env"}
}

// WithEnvFile sets the dotenv file read before environment overrides are
// applied. An empty path disables it.
func (l *FileLoader) WithEnvFile(path string) *FileLoader {
	l.envFile = path
	return l
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults. Environment variables win over the file.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	if err := l.loadEnvFile(); err != nil {
		return domain.Config{}, err
	}
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}

	cfg, err := readConfig(path)
	if err != nil {
		return domain.Config{}, err
	}
	cfg, err = applyEnv(hydrateDefaults(cfg))
	if err != nil {
		return domain.Config{}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func readConfig(path string) (domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return defaultConfig(), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (l *FileLoader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", l.envFile, err)
	}
	return nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppPath("config.yaml")
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given config back to disk.
func (l *FileLoader) Save(cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := ensureConfigDir(l.resolvePath()); err != nil {
		return err
	}
	return os.WriteFile(l.resolvePath(), raw, domain.SecureFilePermissions)
}

// Reset overwrites the config with defaults and returns the default snapshot.
func (l *FileLoader) Reset() (domain.Config, error) {
	if err := ensureConfigDir(l.resolvePath()); err != nil {
		return domain.Config{}, err
	}
	if err := os.WriteFile(l.resolvePath(), assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return domain.Config{}, err
	}
	return defaultConfig(), nil
}

// Backup copies the current config file to a timestamped backup.
func (l *FileLoader) Backup() (string, error) {
	path := l.resolvePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// DefaultConfig exposes the bootstrap configuration template.
func DefaultConfig() domain.Config {
	return defaultConfig()
}

func defaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		// Embedded YAML is compiled in; fall back to code defaults if it is ever broken.
		cfg = domain.Config{ConfigFormatVersion: "1"}
	}
	return hydrateDefaults(cfg)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		cfg.API.BaseURL = domain.DefaultAPIBaseURL
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = int(domain.DefaultHTTPClientTimeout / time.Second)
	}
	if cfg.History.CacheSize == 0 {
		cfg.History.CacheSize = domain.DefaultHistoryCacheSize
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = filesystem.AppPath("journal.db")
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = filesystem.AppPath("session.yaml")
	}
	cfg.Journal.Path = filesystem.ExpandPath(cfg.Journal.Path)
	cfg.Session.Path = filesystem.ExpandPath(cfg.Session.Path)
	return cfg
}

func applyEnv(cfg domain.Config) (domain.Config, error) {
	if url := strings.TrimSpace(os.Getenv(EnvAPIURL)); url != "" {
		cfg.API.BaseURL = url
	}
	if raw := strings.TrimSpace(os.Getenv(EnvTimeout)); raw != "" {
		seconds, err := parseTimeout(raw)
		if err != nil {
			return domain.Config{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.API.TimeoutSeconds = seconds
	}
	return cfg, nil
}

// parseTimeout accepts whole seconds ("30") or a Go duration ("90s", "2m").
func parseTimeout(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", raw)
	}
	return int(d / time.Second), nil
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
