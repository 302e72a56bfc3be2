package cli

import (
	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/internal/commands"
	"github.com/ortelius/media-provisioner/internal/services"
	"github.com/ortelius/media-provisioner/restapi/modules/auth"
	"go.uber.org/zap"
)

// App holds the components built once at startup
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *services.Metrics
	Clients     services.Clients
	Provisioner *services.Provisioner
	AllowList   *auth.AllowList
	Dispatcher  *commands.Dispatcher
}

// NewApp wires the orchestrator and dispatcher from configuration
func NewApp(cfg *config.Config, logger *zap.Logger, opts ...commands.Option) *App {
	metrics := services.NewMetrics()
	clients := services.NewClients(cfg)
	provisioner := services.NewProvisioner(cfg, clients, logger, services.WithMetrics(metrics))
	allow := auth.NewAllowList(cfg.AuthorizedUsers, logger)

	opts = append([]commands.Option{commands.WithMetrics(metrics)}, opts...)
	dispatcher := commands.NewDispatcher(provisioner, allow,
		services.ReportOptions{IncludeFailures: cfg.ReportFailures}, logger, opts...)

	if allow.Len() == 0 {
		logger.Warn("AUTHORIZED_USERS is empty; every command will be rejected")
	}
	for _, b := range cfg.ActiveBackends() {
		logger.Info("Backend configured", zap.String("backend", b.DisplayName()), zap.String("url", cfg.Backend(b).URL))
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics,
		Clients:     clients,
		Provisioner: provisioner,
		AllowList:   allow,
		Dispatcher:  dispatcher,
	}
}
