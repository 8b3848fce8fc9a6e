package domain

import (
	"errors"
	"fmt"
)

// User-facing messages surfaced by the client core.
const (
	MsgFieldNameRequired = "All field names are required"
	MsgFieldNamePattern  = "Field names must start with a letter and contain only letters, numbers, and underscores"
	MsgFieldNameUnique   = "Field names must be unique"

	MsgNotAnImage          = "Please select an image file"
	MsgImageTooLarge       = "File size must be less than 10MB"
	MsgImageDuplicate      = "Image already uploaded previously"
	MsgUploadFailed        = "Failed to upload image"
	MsgImageNotFound       = "Image not found"
	MsgImageLookupFailed   = "Failed to load image"
	MsgSubmissionFailed    = "Failed to process prompt"
	MsgHistoryFetchFailed  = "Failed to load history"
	MsgLoginFailed         = "Login failed. Please try again."
	MsgRegisterFailed      = "Registration failed. Please try again."
	MsgPasswordMismatch    = "Passwords do not match"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgSessionExpired      = "Session expired, please log in again"
	MsgNotLoggedIn         = "Not logged in"
	MsgPromptRequired      = "Prompt is required"
	MsgCredentialsRequired = "Username and password are required"
)

// Sentinel errors for refused operations. These are preconditions the caller
// is expected to respect, not failures of the operation itself.
var (
	ErrUploadInProgress   = errors.New("image upload in progress")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotLoggedIn        = errors.New(MsgNotLoggedIn)
	ErrNoImageCatalog     = errors.New("image catalog unavailable")
)

// ValidationError is a local schema or form violation. No network call is
// made when one is raised.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AttachmentError is raised when an image is rejected client side or the
// upload fails.
type AttachmentError struct {
	Message string
	Err     error
}

func (e *AttachmentError) Error() string { return e.Message }

func (e *AttachmentError) Unwrap() error { return e.Err }

// SubmissionError wraps a remote failure of the prompt call.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() error { return e.Err }

// HistoryFetchError wraps a failed history fetch. Its message is always the
// generic fallback.
type HistoryFetchError struct {
	Err error
}

func (e *HistoryFetchError) Error() string { return MsgHistoryFetchFailed }

func (e *HistoryFetchError) Unwrap() error { return e.Err }

// AuthError wraps a failed login or registration.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx answer from the remote service. Message carries
// the service's user-facing text when the body provided one.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote service: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote service: status %d", e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}

// UserMessage returns the service-provided message carried by err, or
// fallback when there is none.
func UserMessage(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return fallback
}
