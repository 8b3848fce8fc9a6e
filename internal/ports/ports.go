// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the client core and external
// adapters (infrastructure). The core packages under internal/application
// depend only on these interfaces, so the remote service, session storage and
// terminal UI can be swapped or stubbed in tests.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., PromptService, SessionProvider)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: the core depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/widgera/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.widgera/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// SessionProvider supplies the bearer credential for outgoing calls and is
// told when the remote service rejects it.
type SessionProvider interface {
	Current() domain.Session
	Save(domain.Session) error
	// Expire drops the stored credential after a 401 on a non-auth endpoint.
	Expire() error
}

// AuthService performs the unauthenticated login and register calls.
type AuthService interface {
	Login(context.Context, domain.LoginRequest) (domain.AuthResponse, error)
	Register(context.Context, domain.RegisterRequest) (domain.AuthResponse, error)
}

// ImageUploader uploads one image file. Uploads are content addressed: the
// same bytes yield the same id with Duplicate set.
type ImageUploader interface {
	Upload(context.Context, domain.File) (domain.UploadResult, error)
}

// ImageCatalog lists the user's uploaded images and refreshes their expiring
// preview URLs.
type ImageCatalog interface {
	Images(context.Context) ([]domain.ImageRef, error)
	ImageURL(context.Context, domain.ImageID) (domain.ImageRef, error)
}

// PromptService sends one prompt with its output schema to the inference
// service.
type PromptService interface {
	Submit(context.Context, domain.SubmissionRequest) (domain.SubmissionResponse, error)
}

// HistoryFetcher lists past submissions of the current user, newest first.
type HistoryFetcher interface {
	History(context.Context) ([]domain.HistoryRecord, error)
}

// Journal records settled submissions locally.
type Journal interface {
	Append(domain.JournalEntry) error
	Entries(limit int) ([]domain.JournalEntry, error)
	Clear() error
	Path() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
