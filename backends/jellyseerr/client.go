// Package jellyseerr manages accounts on the request manager. Accounts are
// never created directly; they are imported from the linked Jellyfin server.
package jellyseerr

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ortelius/media-provisioner/backends"
	"github.com/ortelius/media-provisioner/model"
)

// AuthHeader carries the Jellyseerr API key on every request
const AuthHeader = "X-Api-Key"

// pageSize is the number of users requested per page when listing
const pageSize = 100

// maxPages stops runaway pagination against a misbehaving server
const maxPages = 1000

// Client imports and deletes Jellyseerr accounts
type Client struct {
	*backends.Client
}

// User is a Jellyseerr account as returned by /api/v1/user
type User struct {
	ID               int    `json:"id"`
	Username         string `json:"username"`
	JellyfinUsername string `json:"jellyfinUsername"`
	DisplayName      string `json:"displayName"`
	Email            string `json:"email"`
}

// Name is the username accounts are matched on. Local accounts with no
// Jellyfin link have no name and never match.
func (u User) Name() string {
	return u.JellyfinUsername
}

// PageInfo describes a paginated listing
type PageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"pageSize"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

// UserPage is one page of /api/v1/user
type UserPage struct {
	PageInfo PageInfo `json:"pageInfo"`
	Results  []User   `json:"results"`
}

// JellyfinUser is an account visible on the linked Jellyfin server
type JellyfinUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Thumb    string `json:"thumb,omitempty"`
}

// ImportRequest is the body of POST /api/v1/user/import-from-jellyfin
type ImportRequest struct {
	JellyfinUserIDs []string `json:"jellyfinUserIds"`
}

// NewClient creates a Jellyseerr client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{Client: backends.NewClient(model.BackendJellyseerr, baseURL, AuthHeader, apiKey, timeout)}
}

// ListUsers pages through every Jellyseerr account linked to Jellyfin
func (c *Client) ListUsers(ctx context.Context) ([]model.Account, error) {
	accounts := []model.Account{}
	seen := 0
	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("take", strconv.Itoa(pageSize))
		query.Set("skip", strconv.Itoa(page*pageSize))

		var resp UserPage
		if err := c.Do(ctx, "list users", http.MethodGet, "/api/v1/user", query, nil, &resp, http.StatusOK); err != nil {
			return nil, err
		}
		seen += len(resp.Results)
		for _, u := range resp.Results {
			if u.Name() == "" {
				continue
			}
			accounts = append(accounts, model.Account{ID: strconv.Itoa(u.ID), Name: u.Name()})
		}

		if len(resp.Results) < pageSize || seen >= resp.PageInfo.Results {
			break
		}
	}
	return accounts, nil
}

// FindUserID resolves a username to its Jellyseerr id
func (c *Client) FindUserID(ctx context.Context, username string) (string, error) {
	accounts, err := c.ListUsers(ctx)
	if err != nil {
		return "", backends.AsLookupFailure(err)
	}
	account, err := backends.FindAccount(model.BackendJellyseerr, "find user", accounts, username)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

// DeleteUser removes a Jellyseerr account by name. Both 200 and 204 count as success.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	id, err := c.FindUserID(ctx, username)
	if err != nil {
		return err
	}
	return c.Do(ctx, "delete user", http.MethodDelete, "/api/v1/user/"+url.PathEscape(id), nil, nil, nil,
		http.StatusOK, http.StatusNoContent)
}

// ListJellyfinUsers returns the Jellyfin accounts Jellyseerr can see
func (c *Client) ListJellyfinUsers(ctx context.Context) ([]JellyfinUser, error) {
	var users []JellyfinUser
	if err := c.Do(ctx, "list jellyfin users", http.MethodGet, "/api/v1/settings/jellyfin/users", nil, nil, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// ImportUser imports a Jellyfin account into Jellyseerr. The account must
// already be visible through the Jellyfin link, which can lag behind creation.
func (c *Client) ImportUser(ctx context.Context, username string) error {
	users, err := c.ListJellyfinUsers(ctx)
	if err != nil {
		return backends.AsLookupFailure(err)
	}

	accounts := make([]model.Account, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, model.Account{ID: u.ID, Name: u.Username})
	}
	account, err := backends.FindAccount(model.BackendJellyseerr, "find jellyfin user", accounts, username)
	if err != nil {
		return err
	}

	return c.Do(ctx, "import user", http.MethodPost, "/api/v1/user/import-from-jellyfin", nil,
		ImportRequest{JellyfinUserIDs: []string{account.ID}}, nil, http.StatusCreated)
}
