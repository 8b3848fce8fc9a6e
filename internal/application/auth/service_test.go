package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/pkg/logger"
)

type stubClient struct {
	resp     domain.AuthResponse
	err      error
	register []domain.RegisterRequest
	login    []domain.LoginRequest
}

func (s *stubClient) Login(_ context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	s.login = append(s.login, req)
	return s.resp, s.err
}

func (s *stubClient) Register(_ context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	s.register = append(s.register, req)
	return s.resp, s.err
}

type memSessions struct {
	session domain.Session
	expired int
}

func (m *memSessions) Current() domain.Session { return m.session }
func (m *memSessions) Save(s domain.Session) error {
	m.session = s
	return nil
}
func (m *memSessions) Expire() error {
	m.expired++
	m.session = domain.Session{}
	return nil
}

func TestRegisterClientChecks(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		want     string
	}{
		{"mismatch", "secret1", "secret2", domain.MsgPasswordMismatch},
		{"mismatch wins over length", "abc", "abd", domain.MsgPasswordMismatch},
		{"too short", "abc", "abc", domain.MsgPasswordTooShort},
		{"empty", "", "", domain.MsgCredentialsRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{}
			svc := NewService(client, &memSessions{}, logger.NewStd(false))

			_, err := svc.Register(context.Background(), "alice", tt.password, tt.confirm)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("Register() error = %v, want %q", err, tt.want)
			}
			if len(client.register) != 0 {
				t.Fatal("client should not be called when local checks fail")
			}
		})
	}
}

func TestRegisterStoresSession(t *testing.T) {
	client := &stubClient{resp: domain.AuthResponse{Username: "alice", Token: "tok"}}
	sessions := &memSessions{}
	svc := NewService(client, sessions, logger.NewStd(false))

	got, err := svc.Register(context.Background(), " alice ", "secret1", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !got.LoggedIn() || sessions.session != got {
		t.Fatalf("session not stored: %+v / %+v", got, sessions.session)
	}
	if req := client.register[0]; req.Username != "alice" || req.ConfirmPassword != "secret1" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestAuthFailureMessages(t *testing.T) {
	remote := &domain.RemoteError{Status: 400, Message: "Username already exists"}
	opaque := errors.New("connection refused")

	tests := []struct {
		name string
		call func(*Service) error
		want string
	}{
		{"register service message", func(s *Service) error {
			_, err := s.Register(context.Background(), "a", "secret1", "secret1")
			return err
		}, "Username already exists"},
		{"login service message", func(s *Service) error {
			_, err := s.Login(context.Background(), "a", "pw")
			return err
		}, "Username already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&stubClient{err: remote}, &memSessions{}, logger.NewStd(false))
			if err := tt.call(svc); err == nil || err.Error() != tt.want {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}

	svc := NewService(&stubClient{err: opaque}, &memSessions{}, logger.NewStd(false))
	if _, err := svc.Login(context.Background(), "a", "pw"); err == nil || err.Error() != domain.MsgLoginFailed {
		t.Fatalf("Login() error = %v, want fallback", err)
	}
	if _, err := svc.Register(context.Background(), "a", "secret1", "secret1"); err == nil || err.Error() != domain.MsgRegisterFailed {
		t.Fatalf("Register() error = %v, want fallback", err)
	}
	var authErr *domain.AuthError
	_, err := svc.Login(context.Background(), "a", "pw")
	if !errors.As(err, &authErr) || !errors.Is(err, opaque) {
		t.Fatalf("Login() error = %v, want AuthError wrapping cause", err)
	}
}

func TestLogoutExpiresSession(t *testing.T) {
	sessions := &memSessions{session: domain.Session{Username: "a", Token: "t"}}
	svc := NewService(&stubClient{}, sessions, logger.NewStd(false))

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if svc.Current().LoggedIn() || sessions.expired != 1 {
		t.Fatalf("session still active: %+v", svc.Current())
	}
}
