package services

import (
	"context"

	"github.com/ortelius/media-provisioner/backends/emby"
	"github.com/ortelius/media-provisioner/backends/jellyfin"
	"github.com/ortelius/media-provisioner/backends/jellyseerr"
	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/model"
)

// NewClients builds a client for every active backend. Inactive backends
// get no client, so they cannot be contacted by mistake.
func NewClients(cfg *config.Config) Clients {
	var clients Clients
	if cfg.IsActive(model.BackendEmby) {
		clients.Emby = emby.NewClient(cfg.Emby.URL, cfg.Emby.APIKey, cfg.SettingsUser, cfg.BackendTimeout)
	}
	if cfg.IsActive(model.BackendJellyfin) {
		clients.Jellyfin = jellyfin.NewClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, cfg.BackendTimeout)
	}
	if cfg.IsActive(model.BackendJellyseerr) {
		clients.Jellyseerr = jellyseerr.NewClient(cfg.Jellyseerr.URL, cfg.Jellyseerr.APIKey, cfg.BackendTimeout)
	}
	return clients
}

// AccountLister lists the live accounts of a backend
type AccountLister interface {
	ListUsers(ctx context.Context) ([]model.Account, error)
}

// Listers returns the account lister of every active backend that has one
func (c Clients) Listers() map[model.Backend]AccountLister {
	listers := map[model.Backend]AccountLister{}
	candidates := map[model.Backend]any{
		model.BackendEmby:       c.Emby,
		model.BackendJellyfin:   c.Jellyfin,
		model.BackendJellyseerr: c.Jellyseerr,
	}
	for backend, client := range candidates {
		if lister, ok := client.(AccountLister); ok {
			listers[backend] = lister
		}
	}
	return listers
}
