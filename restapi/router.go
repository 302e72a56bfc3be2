// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/ortelius/media-provisioner/internal/commands"
	"github.com/ortelius/media-provisioner/restapi/modules/auth"
	"github.com/ortelius/media-provisioner/restapi/modules/chat"
	"github.com/ortelius/media-provisioner/restapi/modules/provisioning"
	"go.uber.org/zap"
)

// Dependencies are the components the routes are wired to
type Dependencies struct {
	Dispatcher *commands.Dispatcher
	Tokens     *auth.Tokens
	AllowList  *auth.AllowList
	Schema     graphql.Schema
	ChatSecret string
	Logger     *zap.Logger
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	if !deps.Tokens.Enabled() {
		deps.Logger.Warn("JWT_SECRET is not set; REST and GraphQL endpoints will reject every request")
	}

	// API Group /api/v1
	api := app.Group("/api/v1")
	requireAdmin := []fiber.Handler{auth.RequireAuth(deps.Tokens), auth.RequireAllowedPrincipal(deps.AllowList)}

	// GraphQL Route - read only, lists account names
	api.Post("/graphql", append(requireAdmin, GraphQLHandler(deps.Schema))...)

	// Account batches
	users := api.Group("/users", requireAdmin...)
	users.Post("/", provisioning.PostUsers(deps.Dispatcher))
	users.Delete("/", provisioning.DeleteUsers(deps.Dispatcher))

	// Chat bot webhook; the sender id is only trusted behind the secret
	if deps.ChatSecret == "" {
		deps.Logger.Warn("CHAT_WEBHOOK_SECRET is not set; chat webhook is disabled")
	} else {
		api.Post("/chat/webhook", chat.Webhook(deps.Dispatcher, deps.ChatSecret, deps.Logger))
	}

	deps.Logger.Info("API routes initialized successfully")
}
