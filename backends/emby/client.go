// Package emby manages accounts on the primary media server.
package emby

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ortelius/media-provisioner/backends"
	"github.com/ortelius/media-provisioner/model"
)

// AuthHeader carries the Emby API key on every request
const AuthHeader = "X-Emby-Token"

// Client creates and deletes Emby accounts. New accounts copy the policy and
// configuration of a template account.
type Client struct {
	*backends.Client
	SettingsUser string
}

// NewUserRequest is the body of POST /Users/New
type NewUserRequest struct {
	Name                  string   `json:"Name"`
	Password              string   `json:"Password"`
	PasswordResetRequired bool     `json:"PasswordResetRequired"`
	CopyFromUserID        string   `json:"CopyFromUserId"`
	UserCopyOptions       []string `json:"UserCopyOptions"`
}

// PasswordRequest is the body of POST /Users/{id}/Password
type PasswordRequest struct {
	CurrentPw string `json:"CurrentPw"`
	NewPw     string `json:"NewPw"`
}

// NewClient creates an Emby client
func NewClient(baseURL, apiKey, settingsUser string, timeout time.Duration) *Client {
	return &Client{
		Client:       backends.NewClient(model.BackendEmby, baseURL, AuthHeader, apiKey, timeout),
		SettingsUser: settingsUser,
	}
}

// ListUsers returns every Emby account
func (c *Client) ListUsers(ctx context.Context) ([]model.Account, error) {
	return c.ListMediaBrowserUsers(ctx)
}

// FindUserID resolves a username to its Emby id
func (c *Client) FindUserID(ctx context.Context, username string) (string, error) {
	return c.FindMediaBrowserUserID(ctx, username)
}

// CreateUser creates an account cloned from the template account, then sets
// its password. Emby accepts the create call with a system-assigned password,
// so a failed password call leaves a half-configured account behind and is
// reported as a partial creation.
func (c *Client) CreateUser(ctx context.Context, username, password string) error {
	templateID, err := c.FindUserID(ctx, c.SettingsUser)
	if err != nil {
		if backends.IsNotFound(err) {
			return &backends.Error{
				Backend: model.BackendEmby,
				Op:      "find template",
				Kind:    model.FailureTemplateMissing,
				Err:     fmt.Errorf("template user '%s' not found", c.SettingsUser),
			}
		}
		return err
	}

	var created backends.MediaBrowserUser
	err = c.Do(ctx, "create user", http.MethodPost, "/Users/New", nil, NewUserRequest{
		Name:                  username,
		Password:              password,
		PasswordResetRequired: false,
		CopyFromUserID:        templateID,
		UserCopyOptions:       []string{"UserPolicy", "UserConfiguration"},
	}, &created, http.StatusOK)
	if err != nil {
		return err
	}
	if created.ID == "" {
		return &backends.Error{
			Backend: model.BackendEmby,
			Op:      "create user",
			Kind:    model.FailureInvalidResponse,
			Err:     fmt.Errorf("created user '%s' has no id", username),
		}
	}

	err = c.Do(ctx, "set password", http.MethodPost, "/Users/"+url.PathEscape(created.ID)+"/Password", nil,
		PasswordRequest{CurrentPw: "", NewPw: password}, nil, http.StatusNoContent)
	if err != nil {
		return &backends.Error{
			Backend:    model.BackendEmby,
			Op:         "set password",
			Kind:       model.FailurePartialCreate,
			StatusCode: backends.StatusOf(err),
			AccountID:  created.ID,
			Err:        err,
		}
	}
	return nil
}

// DeleteUser removes an Emby account by name
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.DeleteMediaBrowserUser(ctx, username)
}
