package domain

import "time"

// Config mirrors ~/.widgera/config.yaml.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	API                 APISettings     `yaml:"api"`
	History             HistorySettings `yaml:"history"`
	Journal             JournalSettings `yaml:"journal"`
	Session             SessionSettings `yaml:"session"`
}

// APISettings points the client at the remote service.
type APISettings struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// HistorySettings controls the history view.
type HistorySettings struct {
	Limit     int `yaml:"limit"`
	CacheSize int `yaml:"cache_size"`
}

// JournalSettings controls the local log of settled submissions.
type JournalSettings struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// SessionSettings locates the persisted session file.
type SessionSettings struct {
	Path string `yaml:"path"`
}

// Timeout returns the per-call transport timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return DefaultHTTPClientTimeout
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// HistoryLimit returns the number of history records to display, zero
// meaning all of them.
func (c Config) HistoryLimit() int {
	if c.History.Limit < 0 {
		return 0
	}
	return c.History.Limit
}
