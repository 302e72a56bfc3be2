package auth

import (
	"github.com/ortelius/media-provisioner/config"
	"go.uber.org/zap"
)

// DeniedMessage is the reply sent to principals outside the allow-list
const DeniedMessage = "You are not authorized to use this command."

// AllowList is the fixed set of principals allowed to run mutating commands.
// It is built once at startup and only read afterwards.
type AllowList struct {
	ids    map[int64]struct{}
	logger *zap.Logger
}

// NewAllowList creates an allow-list from principal ids. An empty list
// authorizes nobody.
func NewAllowList(ids []int64, logger *zap.Logger) *AllowList {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AllowList{ids: make(map[int64]struct{}, len(ids)), logger: logger}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// ParseAllowList parses a comma, semicolon or whitespace separated list of
// principal ids. Every malformed entry is reported.
func ParseAllowList(s string, logger *zap.Logger) (*AllowList, error) {
	ids, err := config.ParsePrincipals(s)
	if err != nil {
		return nil, err
	}
	return NewAllowList(ids, logger), nil
}

// IsAuthorized reports whether the principal may run add and delete commands
func (a *AllowList) IsAuthorized(principal int64) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[principal]
	if !ok {
		a.logger.Warn("Unauthorized principal", zap.Int64("principal", principal))
		return false
	}
	a.logger.Debug("Principal authorized", zap.Int64("principal", principal))
	return true
}

// Len returns the number of allowed principals
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}
