package backends

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ortelius/media-provisioner/model"
)

// MediaBrowserUser is the user shape shared by Emby and Jellyfin
type MediaBrowserUser struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// ListMediaBrowserUsers fetches GET /Users from an Emby or Jellyfin server
func (c *Client) ListMediaBrowserUsers(ctx context.Context) ([]model.Account, error) {
	var users []MediaBrowserUser
	if err := c.Do(ctx, "list users", http.MethodGet, "/Users", nil, nil, &users, http.StatusOK); err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, model.Account{ID: u.ID, Name: u.Name})
	}
	return accounts, nil
}

// FindMediaBrowserUserID resolves a username to its id
func (c *Client) FindMediaBrowserUserID(ctx context.Context, username string) (string, error) {
	accounts, err := c.ListMediaBrowserUsers(ctx)
	if err != nil {
		return "", AsLookupFailure(err)
	}
	account, err := FindAccount(c.Backend, "find user", accounts, username)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

// DeleteMediaBrowserUser removes a user by name; a missing user is a failure
func (c *Client) DeleteMediaBrowserUser(ctx context.Context, username string) error {
	id, err := c.FindMediaBrowserUserID(ctx, username)
	if err != nil {
		return err
	}
	return c.Do(ctx, "delete user", http.MethodDelete, "/Users/"+url.PathEscape(id), nil, nil, nil, http.StatusNoContent)
}
