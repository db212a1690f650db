package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/snapdrop/cli/pkg/model"
)

const defaultTimeout = 30 * time.Second

// Client wraps the HTTP API of the image service. All responses are
// decoded into explicit schemas; a body that does not match its schema
// becomes a server error instead of propagating zero values silently.
type Client struct {
	restClient *resty.Client
}

// NewClient creates a Client for the given base endpoint, e.g.
// "http://localhost:8000".
func NewClient(endpoint string) *Client {
	rc := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(defaultTimeout)
	return &Client{restClient: rc}
}

// SetTimeout overrides the request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.restClient.SetTimeout(d)
}

// UploadRequest is the multipart payload for POST /upload.
type UploadRequest struct {
	FileName    string
	File        io.Reader
	Name        string
	Description string
	Tags        []string
	Fingerprint string
}

// Upload submits a file with its metadata and returns the server's
// verdict. The tags field travels as a JSON-encoded array in a string
// form field, matching the server contract.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*model.UploadResult, error) {
	tagsJSON, err := json.Marshal(model.NormalizeTags(req.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	r, err := c.restClient.R().
		SetContext(ctx).
		SetFileReader("file", req.FileName, req.File).
		SetMultipartFormData(map[string]string{
			"name":               req.Name,
			"description":        req.Description,
			"tags":               string(tagsJSON),
			"device_fingerprint": req.Fingerprint,
		}).
		Post("/upload")

	if err != nil {
		return nil, newNetworkError(err)
	}

	if r.IsError() {
		return nil, newServerError(r.StatusCode(), r.Body(), "upload failed")
	}

	var result model.UploadResult
	if err := json.Unmarshal(r.Body(), &result); err != nil {
		return nil, newServerError(r.StatusCode(), nil, "unexpected upload response shape")
	}
	return &result, nil
}

// TaskStatus returns the status string of a processing task. A non-2xx
// answer or an undecodable body yields an empty status with the
// matching error kind; only transport failures are network errors.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (string, error) {
	r, err := c.restClient.R().
		SetContext(ctx).
		Get("/status/" + url.PathEscape(taskID))

	if err != nil {
		return "", newNetworkError(err)
	}

	if r.IsError() {
		return "", newServerError(r.StatusCode(), r.Body(), "status check failed")
	}

	var payload struct {
		Status string `json:"status"`
	}
	// A malformed body is reported as an empty status, the caller
	// treats it like any other non-terminal answer.
	_ = json.Unmarshal(r.Body(), &payload)
	return payload.Status, nil
}

// UsageResponse mirrors GET /my-uploads. Fields are pointers so the
// caller can tell a missing counter from a zero one.
type UsageResponse struct {
	UploadsUsed  *int64 `json:"uploads_used"`
	Remaining    *int64 `json:"remaining"`
	TotalUploads *int64 `json:"total_uploads"`
}

// MyUploads fetches the quota counters attributed to a fingerprint.
func (c *Client) MyUploads(ctx context.Context, fingerprint string) (*UsageResponse, error) {
	r, err := c.restClient.R().
		SetContext(ctx).
		SetQueryParam("device_fingerprint", fingerprint).
		Get("/my-uploads")

	if err != nil {
		return nil, newNetworkError(err)
	}

	if r.IsError() {
		return nil, newServerError(r.StatusCode(), r.Body(), "failed to load usage stats")
	}

	var result UsageResponse
	if err := json.Unmarshal(r.Body(), &result); err != nil {
		return nil, newServerError(r.StatusCode(), nil, "unexpected usage response shape")
	}
	return &result, nil
}

// Search runs a full-text query. The caller is expected to never send
// an empty query; the debouncer short-circuits those.
func (c *Client) Search(ctx context.Context, query string) ([]model.Image, error) {
	r, err := c.restClient.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get("/search")

	if err != nil {
		return nil, newNetworkError(err)
	}

	if r.IsError() {
		return nil, newServerError(r.StatusCode(), r.Body(), "search failed")
	}

	var payload struct {
		Results []model.Image `json:"results"`
	}
	if err := json.Unmarshal(r.Body(), &payload); err != nil {
		return nil, newServerError(r.StatusCode(), nil, "unexpected search response shape")
	}
	if payload.Results == nil {
		return []model.Image{}, nil
	}
	return payload.Results, nil
}

// Delete removes an image by its content hash.
func (c *Client) Delete(ctx context.Context, hash string) error {
	r, err := c.restClient.R().
		SetContext(ctx).
		Delete("/delete/" + url.PathEscape(hash))

	if err != nil {
		return newNetworkError(err)
	}

	if r.IsError() {
		return newServerError(r.StatusCode(), r.Body(), "delete failed")
	}
	return nil
}

// Stats fetches the service-wide counters.
func (c *Client) Stats(ctx context.Context) (*model.CorpusStats, error) {
	r, err := c.restClient.R().
		SetContext(ctx).
		Get("/stats")

	if err != nil {
		return nil, newNetworkError(err)
	}

	if r.IsError() {
		return nil, newServerError(r.StatusCode(), r.Body(), "failed to load stats")
	}

	var result model.CorpusStats
	if err := json.Unmarshal(r.Body(), &result); err != nil {
		return nil, newServerError(r.StatusCode(), nil, "unexpected stats response shape")
	}
	return &result, nil
}

// Health probes the service.
func (c *Client) Health(ctx context.Context) error {
	r, err := c.restClient.R().
		SetContext(ctx).
		Get("/health")

	if err != nil {
		return newNetworkError(err)
	}

	if r.IsError() {
		return newServerError(r.StatusCode(), r.Body(), "service unhealthy")
	}
	return nil
}
