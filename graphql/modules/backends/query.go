package backends

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/internal/services"
	"github.com/ortelius/media-provisioner/model"
)

// GetQueryFields returns the backend queries to be mounted in the root schema.
func GetQueryFields(cfg *config.Config, listers map[model.Backend]services.AccountLister) graphql.Fields {
	return graphql.Fields{
		"backends": &graphql.Field{
			Type: graphql.NewList(BackendType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveBackends(cfg), nil
			},
		},
		"accounts": &graphql.Field{
			Type: graphql.NewList(AccountType),
			Args: graphql.FieldConfigArgument{
				"backend": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				name := p.Args["backend"].(string)
				backend, ok := model.ParseBackend(name)
				if !ok {
					return nil, fmt.Errorf("unknown backend '%s'", name)
				}

				lister, ok := listers[backend]
				if !ok || !cfg.IsActive(backend) {
					return []model.Account{}, nil
				}
				return lister.ListUsers(p.Context)
			},
		},
	}
}

// ResolveBackends reports every backend in processing order with its availability
func ResolveBackends(cfg *config.Config) []BackendStatus {
	statuses := make([]BackendStatus, 0, len(model.Backends))
	for _, b := range model.Backends {
		statuses = append(statuses, BackendStatus{Backend: b, Active: cfg.IsActive(b)})
	}
	return statuses
}
