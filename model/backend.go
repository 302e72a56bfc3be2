// Package model provides data models for the media account provisioner.
package model

import "strings"

// Backend identifies one of the fixed media services accounts are provisioned on
type Backend string

const (
	// BackendEmby is the primary media server
	BackendEmby Backend = "emby"
	// BackendJellyfin is the secondary media server
	BackendJellyfin Backend = "jellyfin"
	// BackendJellyseerr is the request manager, fed from Jellyfin
	BackendJellyseerr Backend = "jellyseerr"
)

// Backends lists every backend in processing and reporting order.
// The order matters: Jellyseerr imports depend on the Jellyfin step.
var Backends = []Backend{BackendEmby, BackendJellyfin, BackendJellyseerr}

// DisplayName returns the product name used in reports
func (b Backend) DisplayName() string {
	switch b {
	case BackendEmby:
		return "Emby"
	case BackendJellyfin:
		return "Jellyfin"
	case BackendJellyseerr:
		return "Jellyseerr"
	}
	return string(b)
}

// Role returns the part the backend plays in the workflow
func (b Backend) Role() string {
	switch b {
	case BackendEmby:
		return "primary media server"
	case BackendJellyfin:
		return "secondary media server"
	case BackendJellyseerr:
		return "request manager"
	}
	return "unknown"
}

// ParseBackend resolves a backend from its name, ignoring case
func ParseBackend(name string) (Backend, bool) {
	for _, b := range Backends {
		if strings.EqualFold(string(b), strings.TrimSpace(name)) {
			return b, true
		}
	}
	return "", false
}

// Account is a transient projection of a user as a backend reports it
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchesName compares usernames the way every backend lookup does
func (a Account) MatchesName(name string) bool {
	return strings.EqualFold(a.Name, name)
}
