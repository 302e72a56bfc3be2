// Package backends provides the HTTP plumbing shared by the Emby, Jellyfin and
// Jellyseerr account clients.
package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/ortelius/media-provisioner/model"
)

// maxErrorBody bounds how much of an unexpected response is kept for diagnostics
const maxErrorBody = 512

// Client issues authenticated JSON requests against one backend.
// Calls are never retried; a failed call is final.
type Client struct {
	Backend    model.Backend
	BaseURL    string
	AuthHeader string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a client for a backend using a fixed auth header scheme
func NewClient(backend model.Backend, baseURL, authHeader, apiKey string, timeout time.Duration) *Client {
	return &Client{
		Backend:    backend,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AuthHeader: authHeader,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Do sends a request and requires the response status to be one of expected.
// When out is non-nil the response body is decoded into it.
func (c *Client) Do(ctx context.Context, op, method, path string, query url.Values, body, out any, expected ...int) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Backend: c.Backend, Op: op, Kind: model.FailureInvalidResponse, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &Error{Backend: c.Backend, Op: op, Kind: model.FailureTransport, Err: err}
	}
	req.Header.Set(c.AuthHeader, c.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &Error{Backend: c.Backend, Op: op, Kind: model.FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	if !slices.Contains(expected, resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Backend:    c.Backend,
			Op:         op,
			Kind:       model.FailureStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{
			Backend:    c.Backend,
			Op:         op,
			Kind:       model.FailureInvalidResponse,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// FindAccount resolves a username against a listing, ignoring case
func FindAccount(backend model.Backend, op string, accounts []model.Account, username string) (model.Account, error) {
	for _, account := range accounts {
		if account.MatchesName(username) {
			return account, nil
		}
	}
	return model.Account{}, &Error{
		Backend: backend,
		Op:      op,
		Kind:    model.FailureNotFound,
		Err:     fmt.Errorf("user '%s' not found", username),
	}
}
