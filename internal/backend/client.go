// Package backend is the HTTP client for the Q&A backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"kb-chat/internal/common/errors"
	commonhttp "kb-chat/internal/common/http"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/models"
)

const (
	PathQuery      = "/api/query"
	PathUpload     = "/upload"
	PathReindex    = "/api/reindex"
	PathDownloadKB = "/download_kb"

	// cap on error bodies kept for display
	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL string
	http    *commonhttp.Client
	logger  logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	return NewClientWithHTTP(cfg, commonhttp.NewClient(cfg.Timeout), log)
}

func NewClientWithHTTP(cfg Config, hc *commonhttp.Client, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		logger:  log.With(map[string]interface{}{"component": "backend"}),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL turns backend-relative links such as /download_kb?kb=... into
// absolute URLs; absolute URLs pass through.
func (c *Client) ResolveURL(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// Query sends a question with the conversation so far. Logical failures
// reported by the backend come back in QueryResponse.Error, not as err.
func (c *Client) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	if req.ChatHistory == nil {
		req.ChatHistory = []models.HistoryPair{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathQuery, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewBackendUnreachableError(PathQuery, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	status, raw, err := c.do(httpReq, PathQuery)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewBackendUnreachableError(PathQuery,
			fmt.Errorf("invalid JSON response (status %d): %w", status, err))
	}

	// only a body "error" field is a logical failure; the status is not
	resp := c.decodeQuery(doc)

	c.logger.Debug("query answered", map[string]interface{}{
		"status":      status,
		"sourceCount": len(resp.Sources),
		"hasError":    resp.Error != "",
	})
	return resp, nil
}

// decodeQuery validates doc and keeps only the fields that passed.
func (c *Client) decodeQuery(doc interface{}) *models.QueryResponse {
	resp := &models.QueryResponse{}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		c.logger.Warn("query response is not an object", map[string]interface{}{"type": fmt.Sprintf("%T", doc)})
		return resp
	}

	result, err := querySchema.Validate(obj)
	if err == nil && !result.Valid {
		c.logger.Warn("query response failed schema validation", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		for _, field := range result.TopLevelFields() {
			delete(obj, field)
		}
	}

	cleaned, err := json.Marshal(obj)
	if err != nil {
		return resp
	}
	_ = json.Unmarshal(cleaned, resp)

	// null entries are dropped
	kept := resp.Sources[:0]
	for _, rec := range resp.Sources {
		if rec != nil {
			kept = append(kept, rec)
		}
	}
	resp.Sources = kept
	return resp
}

// Upload posts files as repeated multipart field "files".
func (c *Client) Upload(ctx context.Context, paths []string) (*models.UploadResult, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("cannot read %s: %v", p, err))
		}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeFiles(mw, paths))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathUpload, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, errors.NewBackendUnreachableError(PathUpload, err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	status, raw, err := c.do(httpReq, PathUpload)
	_ = pr.Close()
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 || !json.Valid(raw) {
		return nil, errors.NewUploadFailedError(status, string(raw))
	}

	c.logger.Info("files uploaded", map[string]interface{}{
		"count":  len(paths),
		"status": status,
	})
	return &models.UploadResult{StatusCode: status, Body: json.RawMessage(raw)}, nil
}

func writeFiles(mw *multipart.Writer, paths []string) error {
	for _, p := range paths {
		if err := writeFile(mw, p); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFile(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

// Reindex asks the backend to rebuild its index. Any JSON reply is
// returned; callers check OK().
func (c *Client) Reindex(ctx context.Context) (*models.ReindexResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathReindex, nil)
	if err != nil {
		return nil, errors.NewBackendUnreachableError(PathReindex, err)
	}

	status, raw, err := c.do(httpReq, PathReindex)
	if err != nil {
		return nil, err
	}

	resp := &models.ReindexResponse{Raw: json.RawMessage(raw)}
	if err := json.Unmarshal(raw, resp); err != nil {
		// a non-object JSON value is still something to show the user
		if !json.Valid(raw) {
			return nil, errors.NewBackendUnreachableError(PathReindex,
				fmt.Errorf("invalid JSON response (status %d): %w", status, err))
		}
	}
	if status < 200 || status >= 300 {
		resp.Status = ""
	}
	return resp, nil
}

// DownloadKB streams the backend-rendered PDF for kbID into w.
func (c *Client) DownloadKB(ctx context.Context, kbID string, w io.Writer) (int64, error) {
	u := c.baseURL + PathDownloadKB + "?kb=" + url.QueryEscape(kbID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, errors.NewBackendUnreachableError(PathDownloadKB, err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, errors.NewBackendUnreachableError(PathDownloadKB, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, errors.NewBackendError(
			fmt.Sprintf("download_kb returned %d", resp.StatusCode),
			strings.TrimSpace(string(body)),
		)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.NewBackendUnreachableError(PathDownloadKB, err)
	}
	return n, nil
}

func (c *Client) do(req *http.Request, endpoint string) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", map[string]interface{}{"endpoint": endpoint, "error": err.Error()})
		return 0, nil, errors.NewBackendUnreachableError(endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.NewBackendUnreachableError(endpoint, fmt.Errorf("read body: %w", err))
	}
	return resp.StatusCode, raw, nil
}
