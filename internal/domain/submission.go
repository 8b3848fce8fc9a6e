package domain

import "time"

// Output is the untyped field name to value mapping returned by the service.
type Output map[string]any

// SubmissionRequest is the body of one prompt call. It is built fresh per
// submit and never mutated after send.
type SubmissionRequest struct {
	Prompt  string            `json:"prompt"`
	Fields  []FieldDefinition `json:"fields"`
	ImageID *ImageID          `json:"imageId"`
}

// SubmissionResponse is the service's answer to a prompt call.
type SubmissionResponse struct {
	Output    Output   `json:"output"`
	Prompt    string   `json:"prompt,omitempty"`
	ImageID   *ImageID `json:"imageId,omitempty"`
	HistoryID int64    `json:"historyId,omitempty"`
}

// SubmissionResult holds the settled outcome of a submission. Exactly one of
// Output and Error is set after settling; both are empty before the first
// submission and while one is in flight.
type SubmissionResult struct {
	Output Output
	Error  string
}

// Settled reports whether the result carries an outcome.
func (r SubmissionResult) Settled() bool {
	return r.Output != nil || r.Error != ""
}

// SubmissionPhase is the lifecycle phase of a submission controller.
type SubmissionPhase string

const (
	PhaseIdle       SubmissionPhase = "idle"
	PhaseValidating SubmissionPhase = "validating"
	PhaseSubmitting SubmissionPhase = "submitting"
	PhaseSucceeded  SubmissionPhase = "succeeded"
	PhaseFailed     SubmissionPhase = "failed"
)

// SubmissionState is an immutable snapshot of a submission controller.
type SubmissionState struct {
	Phase      SubmissionPhase
	Prompt     string
	Fields     Schema
	Attachment AttachmentState
	Result     SubmissionResult
	Epoch      uint64
}

// CanSubmit reports whether a submit call would be accepted.
func (s SubmissionState) CanSubmit() bool {
	return s.Phase != PhaseSubmitting && s.Phase != PhaseValidating && !s.Attachment.Uploading()
}

// JournalEntry is one settled submission recorded locally.
type JournalEntry struct {
	ID         int64     `json:"id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Prompt     string    `json:"prompt"`
	Fields     Schema    `json:"fields"`
	ImageID    ImageID   `json:"image_id,omitempty"`
	Output     Output    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// Succeeded reports whether the entry recorded a successful call.
func (e JournalEntry) Succeeded() bool {
	return e.Error == ""
}
