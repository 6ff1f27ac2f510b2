// Package upstream talks to the aggregation service that parses statements, fetches NAVs and produces
// analytics snapshots.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// maxErrorBody bounds how much of an error response is read into a message.
const maxErrorBody = 4 << 10

// Client provides methods for calling the upstream aggregation service.
// It wraps an HTTP client and a base URL; every call honours the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new upstream client.
//
// Parameters:
//   - baseURL: Service root, e.g. "http://localhost:5000" (a trailing slash is ignored)
//   - timeout: Per-request timeout; refreshes can run for minutes, so keep this generous
//
// Returns:
//   - *Client: A new client instance ready for use
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchSnapshot retrieves the current analytics snapshot.
// The payload is decoded but not validated; callers run it through validation before use.
//
// Returns:
//   - *model.Snapshot: The decoded snapshot
//   - error: apperrors.ErrUpstreamUnavailable on transport failure, apperrors.ErrUpstreamRejected on a
//     non-2xx status, or a decode error
func (c *Client) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/data", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUpstreamRejected, errorMessage(resp))
	}

	var snap model.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// RefreshNAV asks the service to fetch the latest NAVs and rebuild analytics.
func (c *Client) RefreshNAV(ctx context.Context) (model.OperationResult, error) {
	return c.post(ctx, "/api/refresh/nav", nil, "")
}

// RefreshData asks the service to reprocess existing statements.
func (c *Client) RefreshData(ctx context.Context) (model.OperationResult, error) {
	return c.post(ctx, "/api/refresh/data", nil, "")
}

// UploadStatement forwards a statement PDF and its password as a multipart form with fields "file" and
// "password".
func (c *Client) UploadStatement(ctx context.Context, filename string, file io.Reader, password string) (model.OperationResult, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return model.OperationResult{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return model.OperationResult{}, fmt.Errorf("failed to copy statement: %w", err)
	}
	if err := form.WriteField("password", password); err != nil {
		return model.OperationResult{}, fmt.Errorf("failed to write password field: %w", err)
	}
	if err := form.Close(); err != nil {
		return model.OperationResult{}, fmt.Errorf("failed to finalise form: %w", err)
	}

	return c.post(ctx, "/api/upload", &body, form.FormDataContentType())
}

// post is an internal helper for the {status, message} endpoints.
// A transport failure maps to ErrUpstreamUnavailable. A non-2xx status or a body with status "error"
// maps to ErrUpstreamRejected; the decoded result is still returned so the message can be shown.
func (c *Client) post(ctx context.Context, path string, body io.Reader, contentType string) (model.OperationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return model.OperationResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.OperationResult{}, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.OperationResult{}, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	var result model.OperationResult
	if err := json.Unmarshal(data, &result); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return model.OperationResult{}, fmt.Errorf("%w: status %d", apperrors.ErrUpstreamRejected, resp.StatusCode)
		}
		return model.OperationResult{}, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || result.Status == "error" {
		msg := result.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return result, fmt.Errorf("%w: %s", apperrors.ErrUpstreamRejected, msg)
	}
	return result, nil
}

// errorMessage extracts {"error": ...} from an error response, falling back to the status line.
func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return resp.Status
}
