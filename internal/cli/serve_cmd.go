package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/graphql"
	"github.com/ortelius/media-provisioner/internal/api"
	"github.com/ortelius/media-provisioner/internal/commands"
	"github.com/ortelius/media-provisioner/internal/kafka"
	"github.com/ortelius/media-provisioner/restapi"
	"github.com/ortelius/media-provisioner/restapi/modules/auth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(loader ConfigLoader, newLogger LoggerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, chat webhook and Kafka command consumer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var opts []commands.Option
	if cfg.Kafka.Enabled() {
		producer := kafka.NewResultProducer(cfg.Kafka)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("Failed to close Kafka producer", zap.Error(err))
			}
		}()
		opts = append(opts, commands.WithPublisher(producer))
	}

	app := NewApp(cfg, logger, opts...)

	if cfg.Kafka.Enabled() {
		if err := kafka.RunCommandProcessor(ctx, cfg.Kafka, app.Dispatcher, logger); err != nil {
			return fmt.Errorf("failed to start Kafka command processor: %w", err)
		}
	}

	schema, err := graphql.CreateSchema(cfg, app.Clients.Listers())
	if err != nil {
		return fmt.Errorf("failed to create GraphQL schema: %w", err)
	}

	fiberApp := api.NewFiberApp(restapi.Dependencies{
		Dispatcher: app.Dispatcher,
		Tokens:     auth.NewTokens(cfg.JWTSecret),
		AllowList:  app.AllowList,
		Schema:     schema,
		ChatSecret: cfg.ChatWebhookSecret,
		Logger:     logger,
	}, app.Metrics)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warn("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting server",
		zap.String("port", cfg.Port),
		zap.Bool("kafka", cfg.Kafka.Enabled()))
	logger.Info("GraphQL endpoint available at /api/v1/graphql")

	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
