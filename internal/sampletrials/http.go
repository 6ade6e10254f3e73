package sampletrials

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	"github.com/okian/fieldtrials/pkg/logger"
)

// HTTPClient talks to a running fieldtrials service.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client with the given request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// UploadResponse mirrors the body of POST /sessions.
type UploadResponse struct {
	SessionID   string `json:"session_id"`
	Filename    string `json:"filename"`
	Rows        int    `json:"rows"`
	DroppedRows int    `json:"dropped_rows"`
	Groups      int    `json:"groups"`
}

// HeadToHeadResponse mirrors the body of GET /sessions/{id}/head-to-head.
type HeadToHeadResponse struct {
	Rows    []headtohead.Row   `json:"rows"`
	Summary headtohead.Summary `json:"summary"`
}

// StatusError is returned for unexpected response codes.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, "", http.StatusOK, nil)
}

// Upload posts a workbook as a multipart form.
func (c *HTTPClient) Upload(ctx context.Context, filename string, workbook []byte) (UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(workbook); err != nil {
		return UploadResponse{}, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("close multipart: %w", err)
	}
	var out UploadResponse
	err = c.do(ctx, http.MethodPost, "/sessions", &body, mw.FormDataContentType(), http.StatusCreated, &out)
	return out, err
}

// DecisionMatrix fetches the ranked score rows of a session scored with w.
func (c *HTTPClient) DecisionMatrix(ctx context.Context, sessionID string, w scoring.Weights) ([]scoring.Row, error) {
	q := url.Values{
		"w_mean": {formatFloat(w.Mean)},
		"w_max":  {formatFloat(w.Max)},
		"w_min":  {formatFloat(w.Min)},
	}
	path := "/sessions/" + url.PathEscape(sessionID) + "/decision-matrix?" + q.Encode()
	var out []scoring.Row
	err := c.do(ctx, http.MethodGet, path, nil, "", http.StatusOK, &out)
	return out, err
}

// Candidates fetches the head and check lists of a session.
func (c *HTTPClient) Candidates(ctx context.Context, sessionID string) (headtohead.Candidates, error) {
	var out headtohead.Candidates
	err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID)+"/head-to-head/candidates", nil, "", http.StatusOK, &out)
	return out, err
}

// HeadToHead compares head against check.
func (c *HTTPClient) HeadToHead(ctx context.Context, sessionID, head, check string) (HeadToHeadResponse, error) {
	q := url.Values{"head": {head}, "check": {check}}
	path := "/sessions/" + url.PathEscape(sessionID) + "/head-to-head?" + q.Encode()
	var out HeadToHeadResponse
	err := c.do(ctx, http.MethodGet, path, nil, "", http.StatusOK, &out)
	return out, err
}

// DeleteSession removes a session.
func (c *HTTPClient) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil, "", http.StatusNoContent, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode != want {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
