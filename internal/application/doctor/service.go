package doctor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/ports"
)

// Pinger probes the remote service.
type Pinger interface {
	BaseURL() string
	Ping(ctx context.Context) (int, error)
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Sessions       ports.SessionProvider
	Journal        ports.Journal
	API            Pinger
}

// Run executes checks and returns a report. Only a config failure aborts
// the run; every other problem is reported as a check.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("format %s, api %s", cfg.ConfigFormatVersion, cfg.API.BaseURL)))

	checks = append(checks, s.sessionCheck())
	checks = append(checks, s.journalCheck(cfg))

	if s.API != nil {
		checks = append(checks, s.apiCheck(ctx))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) sessionCheck() domain.HealthCheck {
	if s.Sessions == nil {
		return warn("Session", "session store not initialized")
	}
	session := s.Sessions.Current()
	if !session.LoggedIn() {
		return warn("Session", "not logged in (run `widgera login`)")
	}
	return ok("Session", fmt.Sprintf("logged in as %s", session.Username))
}

func (s *Service) journalCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.Journal.Enabled || s.Journal == nil {
		return warn("Journal", "disabled")
	}
	entries, err := s.Journal.Entries(0)
	if err != nil {
		return fail("Journal", fmt.Sprintf("%s: %v", s.Journal.Path(), err))
	}
	return ok("Journal", fmt.Sprintf("%s (%s entries)", s.Journal.Path(), humanize.Comma(int64(len(entries)))))
}

func (s *Service) apiCheck(ctx context.Context) domain.HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, domain.DefaultDoctorTimeout)
	defer cancel()

	status, err := s.API.Ping(ctx)
	switch {
	case err != nil:
		return fail("Remote service", fmt.Sprintf("%s unreachable: %v", s.API.BaseURL(), err))
	case status >= http.StatusInternalServerError:
		return warn("Remote service", fmt.Sprintf("%s answered %d", s.API.BaseURL(), status))
	default:
		return ok("Remote service", fmt.Sprintf("%s reachable", s.API.BaseURL()))
	}
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
