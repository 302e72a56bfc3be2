// Package graphql assembles the read-only GraphQL schema.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/graphql/modules/backends"
	"github.com/ortelius/media-provisioner/internal/services"
	"github.com/ortelius/media-provisioner/model"
)

// CreateSchema builds the root query from every module's fields
func CreateSchema(cfg *config.Config, listers map[model.Backend]services.AccountLister) (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range backends.GetQueryFields(cfg, listers) {
		fields[name] = field
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: fields,
		}),
	})
}
