// Package submission orchestrates one prompt submission: schema validation,
// request assembly, the remote call, and the resulting output or error.
package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/widgera/internal/application/attachment"
	"github.com/doeshing/widgera/internal/application/schema"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/pkg/requestid"
	"github.com/doeshing/widgera/internal/ports"
)

// ErrSuperseded is returned by Submit when Clear ran while the call was in
// flight. The late response has been discarded.
var ErrSuperseded = errors.New("submission superseded")

// Observer receives every controller state change.
type Observer func(domain.SubmissionState)

// Option configures a Controller.
type Option func(*Controller)

// WithJournal records every settled remote call in j.
func WithJournal(j ports.Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithClock overrides the time source used for journal entries.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the submission form (prompt, schema editor and image
// attachment) and runs at most one remote call at a time.
//
// The schema and attachment are mirrored through their observers so a state
// snapshot never has to reach into another component while holding the lock.
type Controller struct {
	service    ports.PromptService
	editor     *schema.Editor
	attachment *attachment.Attachment
	journal    ports.Journal
	logger     ports.Logger
	now        func() time.Time

	mu        sync.Mutex
	phase     domain.SubmissionPhase
	prompt    string
	fields    domain.Schema
	schemaVer uint64
	attached  domain.AttachmentState
	result    domain.SubmissionResult
	epoch     uint64
	cancel    context.CancelFunc
	observers []Observer
}

// NewController wires a controller to its editor and attachment.
func NewController(
	service ports.PromptService,
	editor *schema.Editor,
	attach *attachment.Attachment,
	logger ports.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		service:    service,
		editor:     editor,
		attachment: attach,
		logger:     logger,
		now:        time.Now,
		phase:      domain.PhaseIdle,
		attached:   attach.State(),
	}
	snap := editor.Snapshot()
	c.fields, c.schemaVer = snap.Fields, snap.Version
	for _, opt := range opts {
		opt(c)
	}
	editor.Subscribe(c.onSchemaChange)
	attach.Subscribe(c.onAttachmentChange)
	return c
}

// Editor returns the schema editor owned by the form.
func (c *Controller) Editor() *schema.Editor { return c.editor }

// Attachment returns the image attachment owned by the form.
func (c *Controller) Attachment() *attachment.Attachment { return c.attachment }

// Subscribe registers an observer and returns a function removing it.
func (c *Controller) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
	idx := len(c.observers) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.observers) {
			c.observers[idx] = nil
		}
	}
}

// State returns the current snapshot.
func (c *Controller) State() domain.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetPrompt replaces the prompt text. Editing a settled form returns it to
// idle.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	c.prompt = prompt
	c.editedLocked()
	c.dispatch(c.unlockWith(c.snapshotLocked()))
}

// Submit validates the form and sends it. It refuses to run while an image
// upload or another submission is in flight; those are preconditions the
// caller should enforce by disabling the action. Validation failures settle
// the form as failed without any network call.
func (c *Controller) Submit(ctx context.Context) (domain.SubmissionState, error) {
	c.mu.Lock()
	if c.attached.Uploading() {
		state := c.snapshotLocked()
		c.mu.Unlock()
		return state, domain.ErrUploadInProgress
	}
	if c.phase == domain.PhaseSubmitting || c.phase == domain.PhaseValidating {
		state := c.snapshotLocked()
		c.mu.Unlock()
		return state, domain.ErrSubmissionInFlight
	}

	c.result = domain.SubmissionResult{}
	c.phase = domain.PhaseValidating
	pending := []domain.SubmissionState{c.snapshotLocked()}

	if err := c.validateLocked(); err != nil {
		c.phase = domain.PhaseFailed
		c.result = domain.SubmissionResult{Error: err.Error()}
		state := c.snapshotLocked()
		pending = append(pending, state)
		c.dispatch(c.unlockWith(pending...))
		return state, err
	}

	req := domain.SubmissionRequest{
		Prompt: c.prompt,
		Fields: c.fields.Clone(),
	}
	if c.attached.Attached() {
		id := c.attached.ImageID
		req.ImageID = &id
	}
	epoch := c.epoch
	requestID := requestid.New()
	callCtx, cancel := context.WithCancel(requestid.With(ctx, requestID))
	c.cancel = cancel
	c.phase = domain.PhaseSubmitting
	pending = append(pending, c.snapshotLocked())
	c.dispatch(c.unlockWith(pending...))
	defer cancel()

	c.logger.Info("submitting prompt", map[string]interface{}{
		"request_id": requestID,
		"fields":     len(req.Fields),
		"image":      req.ImageID != nil,
	})
	started := c.now()
	resp, err := c.service.Submit(callCtx, req)
	elapsed := c.now().Sub(started)

	c.mu.Lock()
	if c.epoch != epoch {
		state := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Debug("discarding stale submission result", map[string]interface{}{"request_id": requestID})
		return state, ErrSuperseded
	}
	c.cancel = nil

	var submitErr error
	if err != nil {
		msg := domain.UserMessage(err, domain.MsgSubmissionFailed)
		submitErr = &domain.SubmissionError{Message: msg, Err: err}
		c.phase = domain.PhaseFailed
		c.result = domain.SubmissionResult{Error: msg}
		c.logger.Error("prompt submission failed", err, map[string]interface{}{"request_id": requestID})
	} else {
		output := resp.Output
		if output == nil {
			output = domain.Output{}
		}
		c.phase = domain.PhaseSucceeded
		c.result = domain.SubmissionResult{Output: output}
	}
	state := c.snapshotLocked()
	c.dispatch(c.unlockWith(state))

	c.record(req, state.Result, started, elapsed)
	return state, submitErr
}

// Clear resets the whole form: prompt, schema (one empty string field),
// attachment, output and error. A submission still in flight is abandoned
// and its response ignored. Calling Clear repeatedly yields the same state.
func (c *Controller) Clear() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
	c.prompt = ""
	c.result = domain.SubmissionResult{}
	c.phase = domain.PhaseIdle
	c.mu.Unlock()

	c.editor.Reset()
	c.attachment.Clear()

	c.mu.Lock()
	c.dispatch(c.unlockWith(c.snapshotLocked()))
}

func (c *Controller) validateLocked() error {
	if err := schema.Validate(c.fields); err != nil {
		return err
	}
	if strings.TrimSpace(c.prompt) == "" {
		return &domain.ValidationError{Message: domain.MsgPromptRequired}
	}
	return nil
}

// onSchemaChange and onAttachmentChange may be called concurrently and out
// of order; stale snapshots are dropped.
func (c *Controller) onSchemaChange(snap schema.Snapshot) {
	c.mu.Lock()
	if snap.Version <= c.schemaVer {
		c.mu.Unlock()
		return
	}
	c.fields, c.schemaVer = snap.Fields, snap.Version
	c.editedLocked()
	c.dispatch(c.unlockWith(c.snapshotLocked()))
}

func (c *Controller) onAttachmentChange(state domain.AttachmentState) {
	c.mu.Lock()
	if !state.Supersedes(c.attached) {
		c.mu.Unlock()
		return
	}
	c.attached = state
	c.dispatch(c.unlockWith(c.snapshotLocked()))
}

// editedLocked moves a settled form back to idle. The last result stays
// visible until the next submit.
func (c *Controller) editedLocked() {
	if c.phase == domain.PhaseSucceeded || c.phase == domain.PhaseFailed {
		c.phase = domain.PhaseIdle
	}
}

func (c *Controller) snapshotLocked() domain.SubmissionState {
	return domain.SubmissionState{
		Phase:      c.phase,
		Prompt:     c.prompt,
		Fields:     c.fields.Clone(),
		Attachment: c.attached,
		Result:     c.result,
		Epoch:      c.epoch,
	}
}

type notification struct {
	states    []domain.SubmissionState
	observers []Observer
}

// unlockWith captures the observers, releases the lock and returns the
// notifications to deliver.
func (c *Controller) unlockWith(states ...domain.SubmissionState) notification {
	n := notification{states: states, observers: append([]Observer(nil), c.observers...)}
	c.mu.Unlock()
	return n
}

func (c *Controller) dispatch(n notification) {
	for _, state := range n.states {
		for _, fn := range n.observers {
			if fn != nil {
				fn(state)
			}
		}
	}
}

func (c *Controller) record(req domain.SubmissionRequest, result domain.SubmissionResult, started time.Time, elapsed time.Duration) {
	if c.journal == nil {
		return
	}
	entry := domain.JournalEntry{
		Timestamp:  started,
		Prompt:     req.Prompt,
		Fields:     req.Fields,
		Output:     result.Output,
		Error:      result.Error,
		DurationMS: elapsed.Milliseconds(),
	}
	if req.ImageID != nil {
		entry.ImageID = *req.ImageID
	}
	if err := c.journal.Append(entry); err != nil {
		c.logger.Warn("journal append failed", map[string]interface{}{"error": err.Error(), "path": c.journal.Path()})
	}
}
