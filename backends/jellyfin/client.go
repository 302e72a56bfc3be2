// Package jellyfin manages accounts on the secondary media server.
package jellyfin

import (
	"context"
	"net/http"
	"time"

	"github.com/ortelius/media-provisioner/backends"
	"github.com/ortelius/media-provisioner/model"
)

// AuthHeader carries the Jellyfin API key on every request
const AuthHeader = "X-MediaBrowser-Token"

// Client creates and deletes Jellyfin accounts
type Client struct {
	*backends.Client
}

// NewUserRequest is the body of POST /Users/New
type NewUserRequest struct {
	Name     string `json:"Name"`
	Password string `json:"Password"`
}

// NewClient creates a Jellyfin client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{Client: backends.NewClient(model.BackendJellyfin, baseURL, AuthHeader, apiKey, timeout)}
}

// ListUsers returns every Jellyfin account
func (c *Client) ListUsers(ctx context.Context) ([]model.Account, error) {
	return c.ListMediaBrowserUsers(ctx)
}

// FindUserID resolves a username to its Jellyfin id
func (c *Client) FindUserID(ctx context.Context, username string) (string, error) {
	return c.FindMediaBrowserUserID(ctx, username)
}

// CreateUser creates an account with the given password in a single call
func (c *Client) CreateUser(ctx context.Context, username, password string) error {
	return c.Do(ctx, "create user", http.MethodPost, "/Users/New", nil,
		NewUserRequest{Name: username, Password: password}, nil, http.StatusOK)
}

// DeleteUser removes a Jellyfin account by name
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.DeleteMediaBrowserUser(ctx, username)
}
