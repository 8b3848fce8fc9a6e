package config

import (
	"fmt"
	"net/url"

	"github.com/doeshing/widgera/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateAPI(cfg.API); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateJournal(cfg.Journal); err != nil {
		return err
	}
	if cfg.Session.Path == "" {
		return fmt.Errorf("session.path must be set")
	}
	return nil
}

func validateAPI(api domain.APISettings) error {
	u, err := url.Parse(api.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", api.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", api.BaseURL)
	}
	if api.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout must be >= 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0")
	}
	if history.CacheSize < 0 {
		return fmt.Errorf("history.cache_size must be >= 0")
	}
	return nil
}

func validateJournal(journal domain.JournalSettings) error {
	if journal.RetentionDays < 0 {
		return fmt.Errorf("journal.retention_days must be >= 0")
	}
	if journal.Enabled && journal.Path == "" {
		return fmt.Errorf("journal.path must be set when the journal is enabled")
	}
	return nil
}
