package emby

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

func newTestClient(t *testing.T, users ...string) (*Client, *backendtest.MediaServer) {
	t.Helper()
	srv := backendtest.NewMediaServer(t, AuthHeader, "emby-key", users...)
	return NewClient(srv.URL, "emby-key", "settings", time.Second), srv
}

func TestCreateUser_CopiesTemplateAndSetsPassword(t *testing.T) {
	c, srv := newTestClient(t, "Settings")
	ctx := context.Background()

	require.NoError(t, c.CreateUser(ctx, "bob", "bob"))

	assert.Equal(t, []string{"Settings", "bob"}, srv.Usernames())
	assert.Equal(t, srv.UserID("settings"), srv.CopiedFrom("bob"))
	assert.Equal(t, "bob", srv.Password("bob"))
	assert.Equal(t, []string{
		"GET /Users",
		"POST /Users/New",
		"POST /Users/" + srv.UserID("bob") + "/Password",
	}, srv.Requests())
}

func TestCreateUser_TemplateMissing(t *testing.T) {
	c, srv := newTestClient(t, "alice")

	err := c.CreateUser(context.Background(), "bob", "bob")
	require.Error(t, err)
	assert.Equal(t, model.FailureTemplateMissing, backends.KindOf(err))
	assert.Equal(t, []string{"GET /Users"}, srv.Requests(), "no create call without a template")
}

func TestCreateUser_TemplateLookupFails(t *testing.T) {
	c, srv := newTestClient(t, "settings")
	srv.ListStatus = http.StatusInternalServerError

	err := c.CreateUser(context.Background(), "bob", "bob")
	assert.Equal(t, model.FailureLookup, backends.KindOf(err))
}

func TestCreateUser_PasswordFailureIsPartial(t *testing.T) {
	c, srv := newTestClient(t, "settings")
	srv.PasswordStatus = http.StatusBadRequest

	err := c.CreateUser(context.Background(), "bob", "bob")
	require.Error(t, err)
	assert.Equal(t, model.FailurePartialCreate, backends.KindOf(err))

	var be *backends.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, srv.UserID("bob"), be.AccountID)
	assert.Equal(t, http.StatusBadRequest, be.StatusCode)
	assert.Contains(t, srv.Usernames(), "bob", "account exists half-configured")
}

func TestCreateUser_CreateRejected(t *testing.T) {
	c, srv := newTestClient(t, "settings")
	srv.CreateStatus = http.StatusBadRequest

	err := c.CreateUser(context.Background(), "bob", "bob")
	assert.Equal(t, model.FailureStatus, backends.KindOf(err))
}

func TestDeleteUser_CaseInsensitive(t *testing.T) {
	c, srv := newTestClient(t, "settings", "Alice")

	require.NoError(t, c.DeleteUser(context.Background(), "alice"))
	assert.Equal(t, []string{"settings"}, srv.Usernames())
}

func TestDeleteUser_NotFoundFails(t *testing.T) {
	c, srv := newTestClient(t, "settings")

	err := c.DeleteUser(context.Background(), "dave")
	assert.Equal(t, model.FailureNotFound, backends.KindOf(err))
	assert.Equal(t, []string{"GET /Users"}, srv.Requests())
}

func TestFindUserID_WrongKeyIsLookupFailure(t *testing.T) {
	srv := backendtest.NewMediaServer(t, AuthHeader, "emby-key", "settings")
	c := NewClient(srv.URL, "wrong", "settings", time.Second)

	_, err := c.FindUserID(context.Background(), "settings")
	assert.Equal(t, model.FailureLookup, backends.KindOf(err))
	assert.Equal(t, http.StatusUnauthorized, backends.StatusOf(err))
}
