package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/doeshing/widgera/internal/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload implements ports.ImageUploader. The file is sent as the multipart
// field "file" with its declared content type.
func (c *Client) Upload(ctx context.Context, file domain.File) (domain.UploadResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", file.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return domain.UploadResult{}, err
	}
	if _, err := part.Write(file.Data); err != nil {
		return domain.UploadResult{}, err
	}
	if err := form.Close(); err != nil {
		return domain.UploadResult{}, err
	}

	var res domain.UploadResult
	if err := c.do(ctx, http.MethodPost, pathUpload, form.FormDataContentType(), &buf, &res); err != nil {
		return domain.UploadResult{}, err
	}
	if res.Filename == "" {
		res.Filename = file.Name
	}
	return res, nil
}

// Images implements ports.ImageCatalog.
func (c *Client) Images(ctx context.Context) ([]domain.ImageRef, error) {
	var refs []domain.ImageRef
	if err := c.do(ctx, http.MethodGet, pathImages, "", nil, &refs); err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []domain.ImageRef{}
	}
	return refs, nil
}

// ImageURL implements ports.ImageCatalog. The service answers 404 for ids
// the user does not own.
func (c *Client) ImageURL(ctx context.Context, id domain.ImageID) (domain.ImageRef, error) {
	var ref domain.ImageRef
	path := pathImages + "/" + url.PathEscape(string(id)) + "/url"
	if err := c.do(ctx, http.MethodGet, path, "", nil, &ref); err != nil {
		return domain.ImageRef{}, err
	}
	if ref.ImageID == "" {
		ref.ImageID = id
	}
	return ref, nil
}
