package meetctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	service "github.com/okian/meetglobe/internal/app"
	"github.com/okian/meetglobe/internal/domain/model"
)

const maxResponseBytes = 8 << 20

// Client talks to a meetglobe server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, http.StatusOK, nil)
}

// CreateMeeting posts a JSON roster.
func (c *Client) CreateMeeting(ctx context.Context, title string, participants []model.Participant) (service.CreateResult, error) {
	body, err := json.Marshal(map[string]any{"title": title, "participants": participants})
	if err != nil {
		return service.CreateResult{}, fmt.Errorf("marshal request: %w", err)
	}
	var res service.CreateResult
	err = c.do(ctx, http.MethodPost, "/v1/meetings", "application/json", body, http.StatusCreated, &res)
	return res, err
}

// CreateFromRoster posts a text roster of "Name, City" lines.
func (c *Client) CreateFromRoster(ctx context.Context, title, roster string) (service.CreateResult, error) {
	path := "/v1/meetings?title=" + url.QueryEscape(title)
	var res service.CreateResult
	err := c.do(ctx, http.MethodPost, path, "text/plain; charset=utf-8", []byte(roster), http.StatusCreated, &res)
	return res, err
}

// Visualization fetches the computed points and arcs of a meeting.
func (c *Client) Visualization(ctx context.Context, id string) (model.Visualization, error) {
	var v model.Visualization
	err := c.do(ctx, http.MethodGet, "/v1/meetings/"+url.PathEscape(id)+"/visualization", "", nil, http.StatusOK, &v)
	return v, err
}

// DeleteMeeting removes a meeting.
func (c *Client) DeleteMeeting(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/meetings/"+url.PathEscape(id), "", nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, want int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Code == "" {
			return fmt.Errorf("%w: %s %s: status %d", ErrUnexpected, method, path, resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrUnexpected, method, path, err)
	}
	return nil
}
