package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/dutyledger/internal/api/request"
	"github.com/mcoot/dutyledger/internal/api/response"
)

// Client talks to the registry's JSON API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is an error response returned by the server
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// RegisterPerson registers a new person
func (c *Client) RegisterPerson(ctx context.Context, name string) (response.Created, error) {
	var out response.Created
	err := c.do(ctx, http.MethodPost, "/api/v1/persons", request.RegisterPersonRequest{Name: name}, &out)
	return out, err
}

// ListPersons lists every person in registration order
func (c *Client) ListPersons(ctx context.Context) (response.PersonList, error) {
	var out response.PersonList
	err := c.do(ctx, http.MethodGet, "/api/v1/persons", nil, &out)
	return out, err
}

// GetPerson returns one person's current status
func (c *Client) GetPerson(ctx context.Context, name string) (response.PersonStatus, error) {
	var out response.PersonStatus
	err := c.do(ctx, http.MethodGet, personPath(name), nil, &out)
	return out, err
}

// AssignDuty records a new current duty
func (c *Client) AssignDuty(ctx context.Context, req request.AssignDutyRequest) (response.Created, error) {
	var out response.Created
	err := c.do(ctx, http.MethodPost, "/api/v1/duties", req, &out)
	return out, err
}

// Retire retires a person. An empty date lets the server use today.
func (c *Client) Retire(ctx context.Context, name, date string) (response.Created, error) {
	var out response.Created
	err := c.do(ctx, http.MethodPost, personPath(name)+"/retire", request.RetireRequest{RetireDate: date}, &out)
	return out, err
}

// DutyHistory returns a person's duties, oldest first unless newestFirst
func (c *Client) DutyHistory(ctx context.Context, name string, newestFirst bool) (response.DutyHistory, error) {
	path := personPath(name) + "/duties"
	if newestFirst {
		path += "?order=desc"
	}
	var out response.DutyHistory
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// ProcessLogs returns recent process log entries. A limit of zero uses the
// server default.
func (c *Client) ProcessLogs(ctx context.Context, limit int) (response.ProcessLogList, error) {
	path := "/api/v1/process-logs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out response.ProcessLogList
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Health checks the server
func (c *Client) Health(ctx context.Context) (response.Health, error) {
	var out response.Health
	err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &out)
	return out, err
}

func personPath(name string) string {
	return "/api/v1/persons/" + url.PathEscape(name)
}

// do performs a request and decodes a successful response into result.
// Error responses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
