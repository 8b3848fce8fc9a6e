package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// MaxImageBytes is the largest image the client will upload (10 MiB).
const MaxImageBytes = 10 * 1024 * 1024

// ImageMIMEPrefix is the content-type prefix every uploaded file must carry.
const ImageMIMEPrefix = "image/"

// ImageID is an opaque, server-assigned image reference. The service emits
// it as a JSON number; both numbers and strings are accepted on decode and
// numeric ids are echoed back as numbers.
type ImageID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ImageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ImageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ImageID(n.String())
	return nil
}

// MarshalJSON writes ids in canonical integer form as numbers and anything
// else, including "007" or "+5", as a string.
func (id ImageID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// File is a locally selected file awaiting upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// IsImage reports whether the declared content type is an image type.
func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.ContentType), ImageMIMEPrefix)
}

// UploadResult is the service's answer to an image upload.
type UploadResult struct {
	ImageID   ImageID `json:"imageId"`
	ImageURL  string  `json:"imageUrl"`
	Filename  string  `json:"filename,omitempty"`
	Duplicate bool    `json:"duplicate"`
	Message   string  `json:"message,omitempty"`
}

// ImageRef is a previously uploaded image with a fresh, expiring preview URL.
type ImageRef struct {
	ImageID          ImageID `json:"imageId"`
	URL              string  `json:"url"`
	OriginalFilename string  `json:"originalFilename,omitempty"`
	ExpiresInSeconds int     `json:"expiresInSeconds"`
}

// AttachmentPhase is the lifecycle phase of an image attachment.
type AttachmentPhase string

const (
	AttachmentEmpty     AttachmentPhase = "empty"
	AttachmentUploading AttachmentPhase = "uploading"
	AttachmentAttached  AttachmentPhase = "attached"
)

// AttachmentState is an immutable snapshot of an image attachment.
type AttachmentState struct {
	Phase      AttachmentPhase
	ImageID    ImageID
	PreviewURL string
	Filename   string
	// Error holds a hard failure; Notice holds non-fatal information such as
	// a duplicate upload.
	Error  string
	Notice string
	Epoch  uint64
}

// Uploading reports whether an upload is in flight.
func (s AttachmentState) Uploading() bool {
	return s.Phase == AttachmentUploading
}

// Attached reports whether an image reference is available.
func (s AttachmentState) Attached() bool {
	return s.Phase == AttachmentAttached && s.ImageID != ""
}

// Supersedes reports whether s is at least as recent as prev. A later epoch
// always wins; within one epoch a settled phase wins over uploading, which is
// the only order an attachment moves in.
func (s AttachmentState) Supersedes(prev AttachmentState) bool {
	if s.Epoch != prev.Epoch {
		return s.Epoch > prev.Epoch
	}
	return !s.Uploading() || prev.Uploading()
}
