// Package auth logs users in and out and keeps the session provider current.
package auth

import (
	"context"
	"strings"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/ports"
)

// Service performs login, registration and logout.
type Service struct {
	client   ports.AuthService
	sessions ports.SessionProvider
	logger   ports.Logger
}

// NewService creates a new auth service.
func NewService(client ports.AuthService, sessions ports.SessionProvider, logger ports.Logger) *Service {
	return &Service{client: client, sessions: sessions, logger: logger}
}

// Current returns the active session.
func (s *Service) Current() domain.Session {
	return s.sessions.Current()
}

// Login exchanges credentials for a token and stores the session.
func (s *Service) Login(ctx context.Context, username, password string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, &domain.AuthError{Message: domain.MsgCredentialsRequired}
	}
	resp, err := s.client.Login(ctx, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		s.logger.Warn("login failed", map[string]interface{}{"username": username, "error": err.Error()})
		return domain.Session{}, &domain.AuthError{Message: domain.UserMessage(err, domain.MsgLoginFailed), Err: err}
	}
	return s.persist(resp)
}

// Register checks the password locally, creates the account and stores the
// returned session.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, &domain.AuthError{Message: domain.MsgCredentialsRequired}
	}
	if password != confirm {
		return domain.Session{}, &domain.AuthError{Message: domain.MsgPasswordMismatch}
	}
	if len(password) < domain.MinPasswordLength {
		return domain.Session{}, &domain.AuthError{Message: domain.MsgPasswordTooShort}
	}
	resp, err := s.client.Register(ctx, domain.RegisterRequest{
		Username:        username,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		s.logger.Warn("registration failed", map[string]interface{}{"username": username, "error": err.Error()})
		return domain.Session{}, &domain.AuthError{Message: domain.UserMessage(err, domain.MsgRegisterFailed), Err: err}
	}
	return s.persist(resp)
}

// Logout forgets the stored session. Logging out twice is not an error.
func (s *Service) Logout() error {
	return s.sessions.Expire()
}

func (s *Service) persist(resp domain.AuthResponse) (domain.Session, error) {
	session := domain.Session{Username: resp.Username, Token: resp.Token}
	if err := s.sessions.Save(session); err != nil {
		return domain.Session{}, err
	}
	s.logger.Info("session stored", map[string]interface{}{"username": session.Username})
	return session, nil
}
