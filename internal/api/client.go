// Package api is the OrgForge backend client. Every call goes through
// one HTTP client that attaches the bearer credential and a correlation
// id, and funnels 401 responses into a single unauthorized hook.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orgforge/orgforge/internal/errors"
	"github.com/orgforge/orgforge/internal/log"
)

const (
	apiPrefix      = "/api"
	requestTimeout = 30 * time.Second
)

// Client is the OrgForge platform API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu             sync.RWMutex
	token          string
	onUnauthorized func()

	logger *log.Logger
}

// NewClient creates a new API client for the given backend base URL.
// The client keeps a cookie jar so the backend's session cookie rides
// along with the bearer header.
func NewClient(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	jar, _ := cookiejar.New(nil)

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		logger: logger.WithGroup("api"),
	}
}

// SetToken sets the bearer credential attached to every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer credential.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetUnauthorizedHandler registers the hook invoked whenever any
// endpoint answers 401. This is global by design: an expired session
// forces logout regardless of which feature made the call.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// doRequest performs an HTTP request against /api with authentication
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIRequest, "failed to marshal request body", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+apiPrefix+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIRequest, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIRequestError(path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.handleUnauthorized(path)
		return nil, errors.New(errors.ErrCodeAuthUnauthorized, "session rejected by backend").
			WithSuggestion("Run 'orgforge auth login' to re-authenticate")
	}

	return resp, nil
}

func (c *Client) handleUnauthorized(path string) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()

	c.logger.Warn("received 401, forcing logout", "path", path)
	if fn != nil {
		fn()
	}
}

// errorResponse represents an API error body
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// parseResponse decodes the response body into target
func parseResponse(resp *http.Response, path string, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Message != "" {
				return errors.NewAPIResponseError(path, resp.StatusCode, errResp.Message)
			}
			if errResp.Error != "" {
				return errors.NewAPIResponseError(path, resp.StatusCode, errResp.Error)
			}
		}
		return errors.NewAPIResponseError(path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.Wrap(errors.ErrCodeAPIResponse, fmt.Sprintf("failed to decode response from %s", path), err)
		}
	}
	return nil
}

// get issues a GET request and decodes the response into target
func (c *Client) get(ctx context.Context, path string, target interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, path, target)
}

// post issues a POST request and decodes the response into target
func (c *Client) post(ctx context.Context, path string, body, target interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return parseResponse(resp, path, target)
}

// patch issues a PATCH request and decodes the response into target
func (c *Client) patch(ctx context.Context, path string, body, target interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodPatch, path, body)
	if err != nil {
		return err
	}
	return parseResponse(resp, path, target)
}

// delete issues a DELETE request
func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, path, nil)
}
