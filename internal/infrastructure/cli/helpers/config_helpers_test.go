package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/widgera/internal/domain"
	configinfra "github.com/doeshing/widgera/internal/infrastructure/config"
)

func sampleConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		API:                 domain.APISettings{BaseURL: "http://localhost:8080/api", TimeoutSeconds: 60},
		History:             domain.HistorySettings{Limit: 20, CacheSize: 256},
		Journal:             domain.JournalSettings{Enabled: true, Path: "/tmp/journal.db", RetentionDays: 30},
		Session:             domain.SessionSettings{Path: "/tmp/session.yaml"},
	}
}

func TestLookupKey(t *testing.T) {
	m, err := ConfigToMap(sampleConfig())
	if err != nil {
		t.Fatalf("ConfigToMap() error = %v", err)
	}

	tests := []struct {
		key   string
		want  interface{}
		found bool
	}{
		{"api.base_url", "http://localhost:8080/api", true},
		{"history.limit", 20, true},
		{"journal.enabled", true, true},
		{"api.missing", nil, false},
		{"api.base_url.deeper", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, found := LookupKey(m, tt.key)
			if found != tt.found {
				t.Fatalf("LookupKey(%q) found = %v, want %v", tt.key, found, tt.found)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("LookupKey(%q) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	m, err := ConfigToMap(sampleConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := SetKey(m, "history.limit", ParseYAMLValue("5")); err != nil {
		t.Fatalf("SetKey() error = %v", err)
	}
	if err := SetKey(m, "api.base_url", ParseYAMLValue("https://widgera.example.com/api")); err != nil {
		t.Fatalf("SetKey() error = %v", err)
	}

	cfg, err := MapToConfig(m)
	if err != nil {
		t.Fatalf("MapToConfig() error = %v", err)
	}
	want := sampleConfig()
	want.History.Limit = 5
	want.API.BaseURL = "https://widgera.example.com/api"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSetKeyRejectsUnknownKeys(t *testing.T) {
	m, err := ConfigToMap(sampleConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"api.base_ur", "nope.limit", "history.limit.deep"} {
		if err := SetKey(m, key, 1); err == nil {
			t.Fatalf("SetKey(%q) expected error", key)
		}
	}
}

func TestMapToConfigValidates(t *testing.T) {
	m, err := ConfigToMap(sampleConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := SetKey(m, "api.base_url", "ftp://nowhere"); err != nil {
		t.Fatal(err)
	}
	if _, err := MapToConfig(m); err == nil {
		t.Fatal("MapToConfig() expected validation error for non-http url")
	}
}

func TestParseYAMLValue(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"42", 42},
		{"false", false},
		{"hello world", "hello world"},
		{"", ""},
		{"[unclosed", "[unclosed"},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseYAMLValue(tt.in)); diff != "" {
			t.Errorf("ParseYAMLValue(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSaveConfigWithValidationBacksUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: http://old/api\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	loader := configinfra.NewFileLoader(path).WithEnvFile("")

	if err := SaveConfigWithValidation(loader, sampleConfig()); err != nil {
		t.Fatalf("SaveConfigWithValidation() error = %v", err)
	}
	backups, _ := filepath.Glob(filepath.Join(dir, "config.yaml.*.bak"))
	if len(backups) != 1 {
		t.Fatalf("expected one backup, got %v", backups)
	}

	bad := sampleConfig()
	bad.API.BaseURL = ""
	if err := SaveConfigWithValidation(loader, bad); err == nil {
		t.Fatal("expected validation error")
	}
}
