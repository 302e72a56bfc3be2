// Package services provides the provisioning orchestrator and report formatting.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ortelius/media-provisioner/backends"
	"github.com/ortelius/media-provisioner/config"
	"github.com/ortelius/media-provisioner/model"
	"go.uber.org/zap"
)

// AccountCreator creates an account with a password
type AccountCreator interface {
	CreateUser(ctx context.Context, username, password string) error
}

// AccountDeleter deletes an account by name
type AccountDeleter interface {
	DeleteUser(ctx context.Context, username string) error
}

// AccountImporter imports an account that exists on a linked server
type AccountImporter interface {
	ImportUser(ctx context.Context, username string) error
}

// MediaServer is implemented by the Emby and Jellyfin clients
type MediaServer interface {
	AccountCreator
	AccountDeleter
}

// RequestManager is implemented by the Jellyseerr client
type RequestManager interface {
	AccountImporter
	AccountDeleter
}

// Clients holds one client per backend; nil clients are treated as inactive
type Clients struct {
	Emby       MediaServer
	Jellyfin   MediaServer
	Jellyseerr RequestManager
}

// PasswordFunc chooses the initial password of a new account
type PasswordFunc func(username string) string

// UsernameAsPassword gives every new account its username as password
func UsernameAsPassword(username string) string {
	return username
}

// Provisioner runs add and delete batches across the configured backends.
// Usernames are processed one at a time and backends in a fixed order; a
// failure is recorded against its (username, backend, operation) and never
// stops the batch.
type Provisioner struct {
	cfg      *config.Config
	clients  Clients
	logger   *zap.Logger
	metrics  *Metrics
	password PasswordFunc
}

// Option customizes a Provisioner
type Option func(*Provisioner)

// WithPasswordFunc overrides the initial password policy
func WithPasswordFunc(fn PasswordFunc) Option {
	return func(p *Provisioner) {
		p.password = fn
	}
}

// WithMetrics records every outcome in the given metrics
func WithMetrics(m *Metrics) Option {
	return func(p *Provisioner) {
		p.metrics = m
	}
}

// NewProvisioner creates an orchestrator over immutable configuration
func NewProvisioner(cfg *config.Config, clients Clients, logger *zap.Logger, opts ...Option) *Provisioner {
	p := &Provisioner{
		cfg:      cfg,
		clients:  clients,
		logger:   logger,
		password: UsernameAsPassword,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add creates each username on Emby and Jellyfin, then imports it into
// Jellyseerr as allowed by the configured import policy
func (p *Provisioner) Add(ctx context.Context, usernames []string) *model.BatchResult {
	usernames = cleanUsernames(usernames)
	result := model.NewBatchResult(model.ActionAdd, usernames)

	for _, username := range usernames {
		password := p.password(username)

		if p.active(model.BackendEmby) {
			p.attempt(result, username, model.BackendEmby, model.OperationCreate, func() error {
				return p.clients.Emby.CreateUser(ctx, username, password)
			})
		} else {
			p.skip(result, username, model.BackendEmby, model.OperationCreate)
		}

		jellyfinOK := false
		if p.active(model.BackendJellyfin) {
			jellyfinOK = p.attempt(result, username, model.BackendJellyfin, model.OperationCreate, func() error {
				return p.clients.Jellyfin.CreateUser(ctx, username, password)
			})
		} else {
			p.skip(result, username, model.BackendJellyfin, model.OperationCreate)
		}

		switch {
		case !p.active(model.BackendJellyseerr):
			p.skip(result, username, model.BackendJellyseerr, model.OperationImport)
		case p.shouldImport(jellyfinOK):
			p.attempt(result, username, model.BackendJellyseerr, model.OperationImport, func() error {
				return p.clients.Jellyseerr.ImportUser(ctx, username)
			})
		default:
			p.record(result, model.Outcome{
				Username:  username,
				Backend:   model.BackendJellyseerr,
				Operation: model.OperationImport,
				Status:    model.StatusFailed,
				Kind:      model.FailureDependency,
				Message:   "jellyfin account was not created",
			})
		}
	}

	p.logger.Info("Add batch complete",
		zap.Int("usernames", len(usernames)),
		zap.Int("failures", len(result.Failures())))
	return result
}

// Delete removes each username from every active backend. Backends are
// attempted independently of each other's outcome.
func (p *Provisioner) Delete(ctx context.Context, usernames []string) *model.BatchResult {
	usernames = cleanUsernames(usernames)
	result := model.NewBatchResult(model.ActionDelete, usernames)

	for _, username := range usernames {
		for _, backend := range model.Backends {
			deleter := p.deleter(backend)
			if deleter == nil {
				p.skip(result, username, backend, model.OperationDelete)
				continue
			}
			p.attempt(result, username, backend, model.OperationDelete, func() error {
				return deleter.DeleteUser(ctx, username)
			})
		}
	}

	p.logger.Info("Delete batch complete",
		zap.Int("usernames", len(usernames)),
		zap.Int("failures", len(result.Failures())))
	return result
}

// shouldImport applies the import policy to the Jellyfin step's outcome
func (p *Provisioner) shouldImport(jellyfinOK bool) bool {
	if p.cfg.ImportPolicy == config.ImportAlways {
		return true
	}
	return jellyfinOK || !p.active(model.BackendJellyfin)
}

// active is the availability gate: configured and wired to a client
func (p *Provisioner) active(b model.Backend) bool {
	if !p.cfg.IsActive(b) {
		return false
	}
	switch b {
	case model.BackendEmby:
		return p.clients.Emby != nil
	case model.BackendJellyfin:
		return p.clients.Jellyfin != nil
	case model.BackendJellyseerr:
		return p.clients.Jellyseerr != nil
	}
	return false
}

func (p *Provisioner) deleter(b model.Backend) AccountDeleter {
	if !p.active(b) {
		return nil
	}
	switch b {
	case model.BackendEmby:
		return p.clients.Emby
	case model.BackendJellyfin:
		return p.clients.Jellyfin
	case model.BackendJellyseerr:
		return p.clients.Jellyseerr
	}
	return nil
}

// attempt runs one backend call and records its outcome
func (p *Provisioner) attempt(result *model.BatchResult, username string, backend model.Backend, op model.Operation, call func() error) bool {
	err := safeCall(call)

	outcome := model.Outcome{
		Username:  username,
		Backend:   backend,
		Operation: op,
		Status:    model.StatusSucceeded,
	}
	if err != nil {
		outcome.Status = model.StatusFailed
		outcome.Kind = backends.KindOf(err)
		outcome.Message = err.Error()
	}
	p.record(result, outcome)
	return err == nil
}

func (p *Provisioner) skip(result *model.BatchResult, username string, backend model.Backend, op model.Operation) {
	p.record(result, model.Outcome{
		Username:  username,
		Backend:   backend,
		Operation: op,
		Status:    model.StatusSkipped,
	})
}

func (p *Provisioner) record(result *model.BatchResult, o model.Outcome) {
	result.Record(o)
	p.metrics.Observe(o)

	fields := []zap.Field{
		zap.String("username", o.Username),
		zap.String("backend", string(o.Backend)),
		zap.String("operation", string(o.Operation)),
	}
	switch o.Status {
	case model.StatusSucceeded:
		p.logger.Info("Backend operation succeeded", fields...)
	case model.StatusFailed:
		fields = append(fields, zap.String("kind", string(o.Kind)), zap.String("error", o.Message))
		if o.Kind == model.FailurePartialCreate {
			p.logger.Error("Account created without its password", fields...)
			return
		}
		p.logger.Warn("Backend operation failed", fields...)
	case model.StatusSkipped:
		p.logger.Debug("Backend not configured, skipping", fields...)
	}
}

// safeCall turns a panicking client into an ordinary failure
func safeCall(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend call panicked: %v", r)
		}
	}()
	return call()
}

func cleanUsernames(usernames []string) []string {
	cleaned := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
	}
	return cleaned
}
