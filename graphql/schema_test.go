package graphql

import (
	"context"
	"errors"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/internal/services"
	"github.com/ortelius/media-provisioner/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	accounts []model.Account
	err      error
}

func (l staticLister) ListUsers(context.Context) ([]model.Account, error) {
	return l.accounts, l.err
}

func testConfig() *config.Config {
	return &config.Config{
		Emby:     config.BackendConfig{URL: "http://emby", APIKey: "k"},
		Jellyfin: config.BackendConfig{URL: "http://jellyfin", APIKey: "k"},
	}
}

func run(t *testing.T, listers map[model.Backend]services.AccountLister, query string) *graphql.Result {
	t.Helper()
	schema, err := CreateSchema(testConfig(), listers)
	require.NoError(t, err)
	return graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: context.Background()})
}

func TestBackendsQuery(t *testing.T) {
	result := run(t, nil, `{ backends { name role active } }`)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	list := data["backends"].([]interface{})
	require.Len(t, list, 3)

	first := list[0].(map[string]interface{})
	assert.Equal(t, "emby", first["name"])
	assert.Equal(t, "primary media server", first["role"])
	assert.Equal(t, true, first["active"])
	assert.Equal(t, false, list[2].(map[string]interface{})["active"])
}

func TestAccountsQuery(t *testing.T) {
	listers := map[model.Backend]services.AccountLister{
		model.BackendEmby: staticLister{accounts: []model.Account{{ID: "1", Name: "settings"}, {ID: "2", Name: "bob"}}},
	}

	result := run(t, listers, `{ accounts(backend: "Emby") { id name } }`)
	require.Empty(t, result.Errors)
	accounts := result.Data.(map[string]interface{})["accounts"].([]interface{})
	require.Len(t, accounts, 2)
	assert.Equal(t, "bob", accounts[1].(map[string]interface{})["name"])

	result = run(t, listers, `{ accounts(backend: "jellyseerr") { id } }`)
	require.Empty(t, result.Errors)
	assert.Empty(t, result.Data.(map[string]interface{})["accounts"])
}

func TestAccountsQuery_Errors(t *testing.T) {
	result := run(t, nil, `{ accounts(backend: "plex") { id } }`)
	assert.NotEmpty(t, result.Errors)

	listers := map[model.Backend]services.AccountLister{
		model.BackendJellyfin: staticLister{err: errors.New("down")},
	}
	result = run(t, listers, `{ accounts(backend: "jellyfin") { id } }`)
	assert.NotEmpty(t, result.Errors)
}
