// Package tryon is a client for the virtual try-on image generation API. Jobs
// are submitted once and then polled until they finish.
package tryon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type JobStatus string

const (
	JobStarting   JobStatus = "starting"
	JobQueued     JobStatus = "in_queue"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

func (s JobStatus) Done() bool {
	return s == JobCompleted || s == JobFailed
}

type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	Output []string  `json:"output,omitempty"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ErrorMessage is the provider's failure reason, if any.
func (j *Job) ErrorMessage() string {
	if j.Error == nil {
		return ""
	}

	return j.Error.Message
}

type submitRequest struct {
	ModelImage   string `json:"model_image"`
	GarmentImage string `json:"garment_image"`
}

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("try-on provider returned %d: %s", e.StatusCode, e.Body)
}

type Client interface {
	Submit(ctx context.Context, photo []byte, mimeType, garmentURL string) (string, error)
	Status(ctx context.Context, jobID string) (*Job, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Submit starts a job for the shopper photo, sent inline as a data URL.
func (c *httpClient) Submit(ctx context.Context, photo []byte, mimeType, garmentURL string) (string, error) {
	body, err := json.Marshal(submitRequest{
		ModelImage:   "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(photo),
		GarmentImage: garmentURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal try-on request: %w", err)
	}

	var job Job
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(body), &job); err != nil {
		return "", err
	}

	if job.ID == "" {
		return "", fmt.Errorf("try-on provider returned no job id")
	}

	return job.ID, nil
}

func (c *httpClient) Status(ctx context.Context, jobID string) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/status/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (c *httpClient) do(ctx context.Context, method, target string, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build try-on request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("try-on provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read try-on response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode try-on response: %w", err)
	}

	return nil
}
