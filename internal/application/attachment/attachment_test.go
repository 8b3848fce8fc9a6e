package attachment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/pkg/logger"
)

type stubUploader struct {
	mu     sync.Mutex
	calls  int
	result domain.UploadResult
	err    error
	// started, when set, is signalled once the call begins; release gates
	// the response.
	started chan struct{}
	release chan struct{}
}

func (s *stubUploader) Upload(ctx context.Context, _ domain.File) (domain.UploadResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.result, s.err
}

func (s *stubUploader) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func png(size int64) domain.File {
	return domain.File{Name: "cat.png", ContentType: "image/png", Size: size, Data: []byte("x")}
}

func TestSelectRejectsOversizedFileWithoutUploading(t *testing.T) {
	up := &stubUploader{}
	a := New(up, logger.NewStd(false))

	state, err := a.Select(context.Background(), png(11*1024*1024))

	var aerr *domain.AttachmentError
	if !errors.As(err, &aerr) || aerr.Message != domain.MsgImageTooLarge {
		t.Fatalf("Select() error = %v, want size rejection", err)
	}
	if up.Calls() != 0 {
		t.Fatalf("upload called %d times, want 0", up.Calls())
	}
	if state.Phase != domain.AttachmentEmpty || state.Error != domain.MsgImageTooLarge {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestSelectAcceptsExactlyTenMiB(t *testing.T) {
	up := &stubUploader{result: domain.UploadResult{ImageID: "7", ImageURL: "https://img/7"}}
	a := New(up, logger.NewStd(false))

	if _, err := a.Select(context.Background(), png(domain.MaxImageBytes)); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if up.Calls() != 1 {
		t.Fatalf("upload called %d times, want 1", up.Calls())
	}
}

func TestSelectRejectsNonImage(t *testing.T) {
	up := &stubUploader{}
	a := New(up, logger.NewStd(false))

	_, err := a.Select(context.Background(), domain.File{Name: "notes.txt", ContentType: "text/plain", Size: 10})
	if err == nil || err.Error() != domain.MsgNotAnImage {
		t.Fatalf("Select() error = %v, want %q", err, domain.MsgNotAnImage)
	}
	if up.Calls() != 0 {
		t.Fatal("upload should not be called for non-images")
	}
}

func TestSelectAttachesAndNotifies(t *testing.T) {
	up := &stubUploader{result: domain.UploadResult{ImageID: "42", ImageURL: "https://img/42"}}
	a := New(up, logger.NewStd(false))
	var phases []domain.AttachmentPhase
	a.Subscribe(func(s domain.AttachmentState) { phases = append(phases, s.Phase) })

	state, err := a.Select(context.Background(), png(1024))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	want := domain.AttachmentState{
		Phase:      domain.AttachmentAttached,
		ImageID:    "42",
		PreviewURL: "https://img/42",
		Filename:   "cat.png",
		Epoch:      1,
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.AttachmentPhase{domain.AttachmentUploading, domain.AttachmentAttached}, phases); diff != "" {
		t.Fatalf("observer phases mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateUploadIsSoftNotice(t *testing.T) {
	up := &stubUploader{result: domain.UploadResult{ImageID: "9", ImageURL: "u", Duplicate: true}}
	a := New(up, logger.NewStd(false))

	state, err := a.Select(context.Background(), png(10))
	if err != nil {
		t.Fatalf("duplicate must not be an error, got %v", err)
	}
	if !state.Attached() || state.Notice != domain.MsgImageDuplicate || state.Error != "" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestUploadFailureRevertsToEmpty(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"service message", &domain.RemoteError{Status: 500, Message: "Image processing failed"}, "Image processing failed"},
		{"generic fallback", errors.New("connection reset"), domain.MsgUploadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(&stubUploader{err: tt.err}, logger.NewStd(false))
			state, err := a.Select(context.Background(), png(10))
			if err == nil || err.Error() != tt.want {
				t.Fatalf("Select() error = %v, want %q", err, tt.want)
			}
			if state.Phase != domain.AttachmentEmpty || state.Filename != "" || state.Error != tt.want {
				t.Fatalf("unexpected state %+v", state)
			}
		})
	}
}

func TestClearDuringUploadDiscardsLateResult(t *testing.T) {
	up := &stubUploader{
		result:  domain.UploadResult{ImageID: "late", ImageURL: "u"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	a := New(up, logger.NewStd(false))

	type outcome struct {
		state domain.AttachmentState
		err   error
	}
	done := make(chan outcome)
	go func() {
		s, err := a.Select(context.Background(), png(10))
		done <- outcome{s, err}
	}()

	<-up.started
	if !a.State().Uploading() {
		t.Fatalf("expected uploading, got %+v", a.State())
	}
	a.Clear()
	close(up.release)
	res := <-done

	if !errors.Is(res.err, ErrSuperseded) {
		t.Fatalf("Select() error = %v, want ErrSuperseded", res.err)
	}
	if got := a.State(); got.Phase != domain.AttachmentEmpty || got.ImageID != "" {
		t.Fatalf("late result resurrected the attachment: %+v", got)
	}
}

func TestClearIsUnconditional(t *testing.T) {
	a := New(&stubUploader{result: domain.UploadResult{ImageID: "1"}}, logger.NewStd(false))
	if _, err := a.Select(context.Background(), png(10)); err != nil {
		t.Fatal(err)
	}
	a.Clear()
	a.Clear()
	got := a.State()
	if got.Phase != domain.AttachmentEmpty || got.ImageID != "" || got.PreviewURL != "" || got.Filename != "" || got.Error != "" {
		t.Fatalf("Clear left state behind: %+v", got)
	}
}

func TestOpenFileSniffsContentType(t *testing.T) {
	dir := t.TempDir()
	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	path := filepath.Join(dir, "photo.bin")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatal(err)
	}

	file, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if file.ContentType != "image/png" || file.Size != int64(len(pngHeader)) || file.Name != "photo.bin" {
		t.Fatalf("unexpected file %+v", file)
	}
}

type stubCatalog struct {
	mu    sync.Mutex
	urls  []string
	ref   domain.ImageRef
	err   error
	calls int
}

func (s *stubCatalog) Images(context.Context) ([]domain.ImageRef, error) {
	return []domain.ImageRef{s.ref}, s.err
}

func (s *stubCatalog) ImageURL(_ context.Context, id domain.ImageID) (domain.ImageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	ref := s.ref
	if len(s.urls) > 0 {
		ref.URL = s.urls[0]
		s.urls = s.urls[1:]
	}
	return ref, s.err
}

func TestUseAttachesExistingImageWithoutUploading(t *testing.T) {
	up := &stubUploader{}
	cat := &stubCatalog{ref: domain.ImageRef{ImageID: "5", URL: "https://img/5?sig=1", OriginalFilename: "dog.jpg"}}
	a := New(up, logger.NewStd(false), WithCatalog(cat))

	state, err := a.Use(context.Background(), "5")
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	want := domain.AttachmentState{
		Phase:      domain.AttachmentAttached,
		ImageID:    "5",
		PreviewURL: "https://img/5?sig=1",
		Filename:   "dog.jpg",
		Epoch:      1,
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if up.Calls() != 0 {
		t.Fatalf("upload called %d times, want 0", up.Calls())
	}
}

func TestUseUnknownImageLeavesAttachmentEmpty(t *testing.T) {
	cat := &stubCatalog{err: &domain.RemoteError{Status: 404}}
	a := New(&stubUploader{result: domain.UploadResult{ImageID: "1", ImageURL: "u"}}, logger.NewStd(false), WithCatalog(cat))
	if _, err := a.Select(context.Background(), png(10)); err != nil {
		t.Fatal(err)
	}

	state, err := a.Use(context.Background(), "999")
	if err == nil || err.Error() != domain.MsgImageNotFound {
		t.Fatalf("Use() error = %v, want %q", err, domain.MsgImageNotFound)
	}
	if state.Phase != domain.AttachmentEmpty || state.ImageID != "" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestUseWithoutCatalog(t *testing.T) {
	a := New(&stubUploader{}, logger.NewStd(false))
	if _, err := a.Use(context.Background(), "5"); !errors.Is(err, domain.ErrNoImageCatalog) {
		t.Fatalf("Use() error = %v, want ErrNoImageCatalog", err)
	}
}

func TestRefreshPreviewKeepsReference(t *testing.T) {
	cat := &stubCatalog{
		ref:  domain.ImageRef{ImageID: "5", OriginalFilename: "dog.jpg"},
		urls: []string{"https://img/5?sig=old", "https://img/5?sig=new"},
	}
	a := New(&stubUploader{}, logger.NewStd(false), WithCatalog(cat))
	if _, err := a.Use(context.Background(), "5"); err != nil {
		t.Fatal(err)
	}

	state, err := a.RefreshPreview(context.Background())
	if err != nil {
		t.Fatalf("RefreshPreview() error = %v", err)
	}
	if state.PreviewURL != "https://img/5?sig=new" || state.ImageID != "5" || state.Epoch != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestRefreshPreviewOnEmptyIsNoop(t *testing.T) {
	cat := &stubCatalog{}
	a := New(&stubUploader{}, logger.NewStd(false), WithCatalog(cat))
	if _, err := a.RefreshPreview(context.Background()); err != nil {
		t.Fatalf("RefreshPreview() error = %v", err)
	}
	if cat.calls != 0 {
		t.Fatalf("catalog called %d times, want 0", cat.calls)
	}
}
