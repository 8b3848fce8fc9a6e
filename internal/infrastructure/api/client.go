// Package api implements the remote service contract over HTTP/JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/pkg/requestid"
	"github.com/doeshing/widgera/internal/ports"
)

const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathUpload   = "/images/upload"
	pathImages   = "/images"
	pathPrompt   = "/prompt"
	pathHistory  = "/prompt/history"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// Client talks to the remote service. It implements ports.AuthService,
// ports.ImageUploader, ports.ImageCatalog, ports.PromptService and
// ports.HistoryFetcher.
// Calls are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   ports.SessionProvider
	logger     ports.Logger
}

// NewClient returns a client for baseURL. A zero timeout uses
// domain.DefaultHTTPClientTimeout.
func NewClient(baseURL string, timeout time.Duration, sessions ports.SessionProvider, logger ports.Logger) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultHTTPClientTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sessions:   sessions,
		logger:     logger,
	}
}

// BaseURL returns the service root all paths are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the service answers at all. Any HTTP status counts as
// reachable.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHistory, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload), out)
}

// do sends one request and decodes a 2xx JSON body into out. Numbers are
// decoded as json.Number so output values keep their wire text.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	id := requestid.From(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", id)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	auth := isAuthPath(path)
	if !auth && c.sessions != nil {
		if token := c.sessions.Current().Token; token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", map[string]interface{}{"method": method, "path": path, "request_id": id, "error": err.Error()})
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request completed", map[string]interface{}{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": id,
		"elapsed":    time.Since(started).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && !auth {
			c.expireSession()
			if remote.Message == "" {
				remote.Message = domain.MsgSessionExpired
			}
		}
		return remote
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) expireSession() {
	if c.sessions == nil {
		return
	}
	if err := c.sessions.Expire(); err != nil {
		c.logger.Warn("failed to expire session", map[string]interface{}{"error": err.Error()})
		return
	}
	c.logger.Info("session expired by remote service", nil)
}

// decodeError reads the {message} body of a failed response. Bodies that
// are not JSON, or carry no message, yield an error without one.
func decodeError(resp *http.Response) *domain.RemoteError {
	remote := &domain.RemoteError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return remote
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		remote.Message = strings.TrimSpace(body.Message)
	}
	return remote
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}
