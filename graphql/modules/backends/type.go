// Package backends defines the GraphQL types for backend availability and accounts.
package backends

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/media-provisioner/model"
)

// BackendStatus is the source object of BackendType
type BackendStatus struct {
	Backend model.Backend
	Active  bool
}

// BackendType represents one configured or unconfigured backend.
var BackendType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Backend",
	Fields: graphql.Fields{
		"name": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if s, ok := p.Source.(BackendStatus); ok {
					return string(s.Backend), nil
				}
				return nil, nil
			},
		},
		"displayName": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if s, ok := p.Source.(BackendStatus); ok {
					return s.Backend.DisplayName(), nil
				}
				return nil, nil
			},
		},
		"role": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if s, ok := p.Source.(BackendStatus); ok {
					return s.Backend.Role(), nil
				}
				return nil, nil
			},
		},
		"active": &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if s, ok := p.Source.(BackendStatus); ok {
					return s.Active, nil
				}
				return nil, nil
			},
		},
	},
})

// AccountType represents a live account on a backend.
var AccountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Account",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.String},
		"name": &graphql.Field{Type: graphql.String},
	},
})
