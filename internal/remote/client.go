// Package remote is the client of the health-tracking service.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// DefaultTimeout bounds every request when none is configured.
const DefaultTimeout = 5 * time.Second

// Client talks to the service's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A non-positive timeout uses
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UpdateWeight records the day's weight for userID.
func (c *Client) UpdateWeight(ctx context.Context, userID string, update model.WeightUpdate) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "weight"), update, nil)
}

// LogWater adds a drink for userID.
func (c *Client) LogWater(ctx context.Context, userID string, log model.WaterLog) error {
	return c.do(ctx, http.MethodPost, userPath(userID, "water"), log, nil)
}

// AddFasting stores a completed fasting session for userID.
func (c *Client) AddFasting(ctx context.Context, userID string, rec model.FastingRecord) error {
	return c.do(ctx, http.MethodPost, userPath(userID, "fasting"), rec, nil)
}

type heightBody struct {
	Height float64 `json:"height"`
}

// SetHeight stores the user's height in centimetres.
func (c *Client) SetHeight(ctx context.Context, userID string, heightCm float64) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "height"), heightBody{Height: heightCm}, nil)
}

// Metadata fetches the user's profile and records.
func (c *Client) Metadata(ctx context.Context, userID string) (*model.Metadata, error) {
	var md model.Metadata
	if err := c.do(ctx, http.MethodGet, userPath(userID, "metadata"), nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// Ping checks the service is reachable and healthy.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func userPath(userID, resource string) string {
	return fmt.Sprintf("/api/users/%s/%s", url.PathEscape(userID), resource)
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.LogDebugf("%s %s failed after %s: %v", method, path, time.Since(start), err)
		return classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(fmt.Errorf("failed to read response body: %w", err))
	}
	util.LogDebugf("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if sonic.Unmarshal(data, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out != nil {
		if err := sonic.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
