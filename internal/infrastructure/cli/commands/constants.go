package commands

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrJournalDisabled          = "journal is disabled (set journal.enabled in config)"
	ErrKeyRequired              = "--key is required"
	ErrPromptRequired           = "a prompt is required (pass --prompt, arguments, or --interactive)"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgJournalCleared           = "Journal cleared."
	MsgLoggedOut                = "Logged out."
	MsgClearCancelled           = "Clear cancelled."
)
