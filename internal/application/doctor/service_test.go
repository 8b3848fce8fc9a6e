package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/widgera/internal/domain"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubSessions struct{ session domain.Session }

func (s stubSessions) Current() domain.Session { return s.session }
func (s stubSessions) Save(domain.Session) error { return nil }
func (s stubSessions) Expire() error { return nil }

type stubJournal struct {
	entries []domain.JournalEntry
	err     error
}

func (s stubJournal) Append(domain.JournalEntry) error { return nil }
func (s stubJournal) Entries(int) ([]domain.JournalEntry, error) { return s.entries, s.err }
func (s stubJournal) Clear() error { return nil }
func (s stubJournal) Path() string { return "/tmp/journal.db" }

type stubPinger struct {
	status int
	err    error
}

func (s stubPinger) BaseURL() string { return "http://api" }
func (s stubPinger) Ping(context.Context) (int, error) { return s.status, s.err }

func statuses(report domain.HealthReport) map[string]domain.HealthStatus {
	out := make(map[string]domain.HealthStatus, len(report.Checks))
	for _, c := range report.Checks {
		out[c.Name] = c.Status
	}
	return out
}

func TestRunHealthy(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{ConfigFormatVersion: "1", Journal: domain.JournalSettings{Enabled: true}}},
		Sessions:       stubSessions{session: domain.Session{Username: "alice", Token: "t"}},
		Journal:        stubJournal{entries: make([]domain.JournalEntry, 3)},
		API:            stubPinger{status: 401},
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := map[string]domain.HealthStatus{
		"Config file":    domain.HealthOK,
		"Session":        domain.HealthOK,
		"Journal":        domain.HealthOK,
		"Remote service": domain.HealthOK,
	}
	if diff := cmp.Diff(want, statuses(report)); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
	if report.Failed() {
		t.Fatal("report should not be failed")
	}
}

func TestRunDegraded(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{Journal: domain.JournalSettings{Enabled: true}}},
		Sessions:       stubSessions{},
		Journal:        stubJournal{err: errors.New("locked")},
		API:            stubPinger{err: errors.New("connection refused")},
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := map[string]domain.HealthStatus{
		"Config file":    domain.HealthOK,
		"Session":        domain.HealthWarn,
		"Journal":        domain.HealthError,
		"Remote service": domain.HealthError,
	}
	if diff := cmp.Diff(want, statuses(report)); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
	if !report.Failed() {
		t.Fatal("report should be failed")
	}
}

func TestRunStopsOnConfigFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("bad yaml")}}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Fatalf("unexpected report %+v", report)
	}
}
