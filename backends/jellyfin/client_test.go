package jellyfin

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ortelius/media-provisioner/backends"
	"github.com/ortelius/media-provisioner/backends/backendtest"
	"github.com/ortelius/media-provisioner/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	srv := backendtest.NewMediaServer(t, AuthHeader, "jf-key")
	c := NewClient(srv.URL, "jf-key", time.Second)

	require.NoError(t, c.CreateUser(context.Background(), "carol", "carol"))
	assert.Equal(t, []string{"carol"}, srv.Usernames())
	assert.Equal(t, "carol", srv.Password("carol"))
	assert.Equal(t, []string{"POST /Users/New"}, srv.Requests())
}

func TestCreateUser_Rejected(t *testing.T) {
	srv := backendtest.NewMediaServer(t, AuthHeader, "jf-key")
	srv.FailCreateFor["carol"] = true
	c := NewClient(srv.URL, "jf-key", time.Second)

	err := c.CreateUser(context.Background(), "Carol", "Carol")
	assert.Equal(t, model.FailureStatus, backends.KindOf(err))
}

func TestListUsers(t *testing.T) {
	srv := backendtest.NewMediaServer(t, AuthHeader, "jf-key", "a", "b")
	c := NewClient(srv.URL, "jf-key", time.Second)

	accounts, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a", accounts[0].Name)
	assert.Equal(t, srv.UserID("b"), accounts[1].ID)
}

func TestDeleteUser(t *testing.T) {
	srv := backendtest.NewMediaServer(t, AuthHeader, "jf-key", "Bob")
	c := NewClient(srv.URL, "jf-key", time.Second)

	require.NoError(t, c.DeleteUser(context.Background(), "BOB"))
	assert.Empty(t, srv.Usernames())
}

func TestDeleteUser_UnexpectedStatus(t *testing.T) {
	srv := backendtest.NewMediaServer(t, AuthHeader, "jf-key", "bob")
	srv.DeleteStatus = http.StatusOK
	c := NewClient(srv.URL, "jf-key", time.Second)

	err := c.DeleteUser(context.Background(), "bob")
	assert.Equal(t, model.FailureStatus, backends.KindOf(err), "only 204 counts for Jellyfin")
}

func TestDeleteUser_ListFailureIsNotAMiss(t *testing.T) {
	srv := backendtest.NewMediaServer(t, AuthHeader, "jf-key", "bob")
	srv.ListStatus = http.StatusBadGateway
	c := NewClient(srv.URL, "jf-key", time.Second)

	err := c.DeleteUser(context.Background(), "bob")
	assert.Equal(t, model.FailureLookup, backends.KindOf(err))
	assert.False(t, backends.IsNotFound(err))
}
