// Package attachment manages the optional image attached to a submission:
// local file checks, upload, and the resulting reference.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/ports"
)

// ErrSuperseded is returned by Select when Clear or another Select ran while
// the upload was in flight. The late response has been discarded.
var ErrSuperseded = errors.New("upload superseded")

// Observer receives every attachment state change.
type Observer func(domain.AttachmentState)

// Option configures an Attachment.
type Option func(*Attachment)

// WithCatalog enables attaching previously uploaded images and refreshing
// preview URLs.
func WithCatalog(catalog ports.ImageCatalog) Option {
	return func(a *Attachment) { a.catalog = catalog }
}

// Attachment tracks at most one image. Each Select or Clear starts a new
// epoch; upload results are applied only if their epoch is still current.
type Attachment struct {
	uploader ports.ImageUploader
	catalog  ports.ImageCatalog
	logger   ports.Logger

	mu        sync.Mutex
	state     domain.AttachmentState
	cancel    context.CancelFunc
	observers []Observer
}

// New returns an empty attachment using uploader for uploads.
func New(uploader ports.ImageUploader, logger ports.Logger, opts ...Option) *Attachment {
	a := &Attachment{
		uploader: uploader,
		logger:   logger,
		state:    domain.AttachmentState{Phase: domain.AttachmentEmpty},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Subscribe registers an observer and returns a function removing it.
func (a *Attachment) Subscribe(fn Observer) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
	idx := len(a.observers) - 1
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if idx < len(a.observers) {
			a.observers[idx] = nil
		}
	}
}

// State returns the current snapshot.
func (a *Attachment) State() domain.AttachmentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Select checks file and uploads it, blocking until the upload settles.
// Files that are not images or exceed domain.MaxImageBytes are rejected
// without an upload call. Any previous reference is discarded; server side
// storage is left alone.
func (a *Attachment) Select(ctx context.Context, file domain.File) (domain.AttachmentState, error) {
	if msg := reject(file); msg != "" {
		a.mu.Lock()
		a.abandonLocked()
		a.logger.Warn("image rejected", map[string]interface{}{
			"file": file.Name,
			"type": file.ContentType,
			"size": humanize.IBytes(uint64(max(file.Size, 0))),
		})
		state := a.commit(domain.AttachmentState{
			Phase: domain.AttachmentEmpty,
			Error: msg,
			Epoch: a.state.Epoch,
		})
		return state, &domain.AttachmentError{Message: msg}
	}

	a.mu.Lock()
	a.abandonLocked()
	uploadCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	epoch := a.state.Epoch
	a.commit(domain.AttachmentState{
		Phase:    domain.AttachmentUploading,
		Filename: file.Name,
		Epoch:    epoch,
	})
	defer cancel()

	a.logger.Debug("uploading image", map[string]interface{}{
		"file":  file.Name,
		"size":  humanize.IBytes(uint64(file.Size)),
		"epoch": epoch,
	})
	res, err := a.uploader.Upload(uploadCtx, file)

	a.mu.Lock()
	if a.state.Epoch != epoch {
		current := a.state
		a.mu.Unlock()
		a.logger.Debug("discarding stale upload result", map[string]interface{}{
			"epoch":   epoch,
			"current": current.Epoch,
		})
		return current, ErrSuperseded
	}
	a.cancel = nil

	if err != nil {
		msg := domain.UserMessage(err, domain.MsgUploadFailed)
		a.logger.Error("image upload failed", err, map[string]interface{}{"file": file.Name})
		state := a.commit(domain.AttachmentState{
			Phase: domain.AttachmentEmpty,
			Error: msg,
			Epoch: epoch,
		})
		return state, &domain.AttachmentError{Message: msg, Err: err}
	}

	next := domain.AttachmentState{
		Phase:      domain.AttachmentAttached,
		ImageID:    res.ImageID,
		PreviewURL: res.ImageURL,
		Filename:   file.Name,
		Epoch:      epoch,
	}
	if res.Duplicate {
		next.Notice = domain.MsgImageDuplicate
	}
	return a.commit(next), nil
}

// Use attaches an image uploaded earlier, looking it up by id instead of
// uploading again. It follows the same lifecycle as Select: the previous
// reference is discarded and a failed lookup leaves the attachment empty.
func (a *Attachment) Use(ctx context.Context, id domain.ImageID) (domain.AttachmentState, error) {
	if a.catalog == nil {
		return a.State(), domain.ErrNoImageCatalog
	}

	a.mu.Lock()
	a.abandonLocked()
	lookupCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	epoch := a.state.Epoch
	a.commit(domain.AttachmentState{Phase: domain.AttachmentUploading, Epoch: epoch})
	defer cancel()

	ref, err := a.catalog.ImageURL(lookupCtx, id)

	a.mu.Lock()
	if a.state.Epoch != epoch {
		current := a.state
		a.mu.Unlock()
		return current, ErrSuperseded
	}
	a.cancel = nil

	if err != nil {
		msg := lookupMessage(err)
		a.logger.Error("image lookup failed", err, map[string]interface{}{"image_id": string(id)})
		state := a.commit(domain.AttachmentState{Phase: domain.AttachmentEmpty, Error: msg, Epoch: epoch})
		return state, &domain.AttachmentError{Message: msg, Err: err}
	}
	return a.commit(domain.AttachmentState{
		Phase:      domain.AttachmentAttached,
		ImageID:    id,
		PreviewURL: ref.URL,
		Filename:   ref.OriginalFilename,
		Epoch:      epoch,
	}), nil
}

// RefreshPreview replaces the expiring preview URL of the attached image.
// The reference itself never changes; if the attachment changed while the
// lookup ran, the new URL is dropped.
func (a *Attachment) RefreshPreview(ctx context.Context) (domain.AttachmentState, error) {
	if a.catalog == nil {
		return a.State(), domain.ErrNoImageCatalog
	}
	current := a.State()
	if !current.Attached() {
		return current, nil
	}

	ref, err := a.catalog.ImageURL(ctx, current.ImageID)
	if err != nil {
		return a.State(), &domain.AttachmentError{Message: lookupMessage(err), Err: err}
	}

	a.mu.Lock()
	if a.state.Epoch != current.Epoch || a.state.ImageID != current.ImageID {
		latest := a.state
		a.mu.Unlock()
		return latest, ErrSuperseded
	}
	next := a.state
	next.PreviewURL = ref.URL
	return a.commit(next), nil
}

func lookupMessage(err error) string {
	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.Status == http.StatusNotFound {
		return domain.MsgImageNotFound
	}
	return domain.UserMessage(err, domain.MsgImageLookupFailed)
}

// Clear returns to the empty state whatever the current phase. An upload in
// flight is cancelled and its result, should it still arrive, is ignored.
func (a *Attachment) Clear() {
	a.mu.Lock()
	a.abandonLocked()
	a.commit(domain.AttachmentState{Phase: domain.AttachmentEmpty, Epoch: a.state.Epoch})
}

// abandonLocked starts a new epoch and cancels any in-flight upload.
func (a *Attachment) abandonLocked() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.state.Epoch++
}

// commit installs next, releases the lock held by the caller and notifies
// observers.
func (a *Attachment) commit(next domain.AttachmentState) domain.AttachmentState {
	a.state = next
	observers := append([]Observer(nil), a.observers...)
	a.mu.Unlock()
	for _, fn := range observers {
		if fn != nil {
			fn(next)
		}
	}
	return next
}

func reject(file domain.File) string {
	if !file.IsImage() {
		return domain.MsgNotAnImage
	}
	if file.Size > domain.MaxImageBytes {
		return domain.MsgImageTooLarge
	}
	return ""
}

// OpenFile reads path into a domain.File. The content type is sniffed from
// the data, falling back to the extension when sniffing is inconclusive.
// Files over the upload limit are not read; only their size is reported so
// Select can reject them.
func OpenFile(path string) (domain.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.File{}, fmt.Errorf("%s is a directory", path)
	}
	file := domain.File{
		Name: filepath.Base(path),
		Size: info.Size(),
	}
	if info.Size() > domain.MaxImageBytes {
		file.ContentType = mime.TypeByExtension(filepath.Ext(path))
		return file, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	file.Data = data
	file.ContentType = detectContentType(path, data)
	return file, nil
}

func detectContentType(path string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if sniffed != "application/octet-stream" {
		return sniffed
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return sniffed
}
