package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout constants
const (
	// DefaultHTTPClientTimeout is the timeout for calls to the remote service
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultDoctorTimeout bounds the reachability probe run by doctor
	DefaultDoctorTimeout = 5 * time.Second
)

// Remote service defaults
const (
	// DefaultAPIBaseURL is used when neither config nor environment set one
	DefaultAPIBaseURL = "http://localhost:8080/api"
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistoryCacheSize bounds the id index kept by the history store
	DefaultHistoryCacheSize = 256
	// DefaultJournalLimit is the default number of journal entries to list
	DefaultJournalLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
