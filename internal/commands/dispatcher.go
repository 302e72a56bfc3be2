// Package commands parses administrative text commands and runs them through
// the authorization check and the provisioning orchestrator.
package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ortelius/media-provisioner/internal/services"
	"github.com/ortelius/media-provisioner/model"
	"github.com/ortelius/media-provisioner/restapi/modules/auth"
	"go.uber.org/zap"
)

const (
	// AddCommand provisions accounts
	AddCommand = "adduser"
	// DeleteCommand deprovisions accounts
	DeleteCommand = "deluser"
)

// HelpText lists the supported commands
const HelpText = "Available commands:\n" +
	"/adduser <username> [username...] - create accounts on every configured backend\n" +
	"/deluser <username> [username...] - delete accounts from every configured backend"

// Status classifies how a command was handled
type Status string

const (
	StatusComplete     Status = "complete"
	StatusPartial      Status = "partial"
	StatusUnauthorized Status = "unauthorized"
	StatusUsage        Status = "usage"
	StatusHelp         Status = "help"
)

// Authorizer decides whether a principal may run mutating commands
type Authorizer interface {
	IsAuthorized(principal int64) bool
}

// Runner executes add and delete batches
type Runner interface {
	Add(ctx context.Context, usernames []string) *model.BatchResult
	Delete(ctx context.Context, usernames []string) *model.BatchResult
}

// Publisher receives every completed batch
type Publisher interface {
	PublishResult(ctx context.Context, principal int64, result *model.BatchResult, report string) error
}

// Command is a parsed text command
type Command struct {
	Name string
	Args []string
}

// Reply is the outcome of one command
type Reply struct {
	Status Status
	Text   string
	Result *model.BatchResult
}

// Parse splits text into a command name and its arguments. A leading slash
// and a @botname suffix on the name are accepted. ok is false for empty text.
func Parse(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return Command{Name: strings.ToLower(name), Args: fields[1:]}, true
}

// ActionFor maps a command name to its batch action
func ActionFor(name string) (model.Action, bool) {
	switch name {
	case AddCommand:
		return model.ActionAdd, true
	case DeleteCommand:
		return model.ActionDelete, true
	}
	return "", false
}

// UsageFor returns the usage line of a command
func UsageFor(action model.Action) string {
	name := AddCommand
	if action == model.ActionDelete {
		name = DeleteCommand
	}
	return fmt.Sprintf("Usage: /%s <username> [username...]", name)
}

// Dispatcher runs commands one at a time, whichever transport they come from
type Dispatcher struct {
	mu        sync.Mutex
	runner    Runner
	allow     Authorizer
	report    services.ReportOptions
	metrics   *services.Metrics
	publisher Publisher
	logger    *zap.Logger
}

// Option customizes a Dispatcher
type Option func(*Dispatcher)

// WithPublisher publishes every completed batch
func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

// WithMetrics counts handled commands
func WithMetrics(m *services.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a dispatcher
func NewDispatcher(runner Runner, allow Authorizer, report services.ReportOptions, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner: runner,
		allow:  allow,
		report: report,
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle parses and runs a text command issued by principal
func (d *Dispatcher) Handle(ctx context.Context, principal int64, text string) Reply {
	cmd, ok := Parse(text)
	if !ok {
		return Reply{Status: StatusHelp, Text: HelpText}
	}
	action, ok := ActionFor(cmd.Name)
	if !ok {
		d.logger.Debug("Unknown command", zap.String("command", cmd.Name), zap.Int64("principal", principal))
		return Reply{Status: StatusHelp, Text: HelpText}
	}
	return d.Run(ctx, principal, action, cmd.Args)
}

// Run checks authorization, then usage, then runs the batch. Unauthorized
// and usage replies never reach a backend.
func (d *Dispatcher) Run(ctx context.Context, principal int64, action model.Action, usernames []string) Reply {
	if !d.allow.IsAuthorized(principal) {
		d.logger.Warn("Rejected command from unauthorized principal",
			zap.Int64("principal", principal),
			zap.String("action", string(action)))
		d.metrics.ObserveCommand(string(action), string(StatusUnauthorized))
		return Reply{Status: StatusUnauthorized, Text: auth.DeniedMessage}
	}

	usernames = nonBlank(usernames)
	if len(usernames) == 0 {
		d.metrics.ObserveCommand(string(action), string(StatusUsage))
		return Reply{Status: StatusUsage, Text: UsageFor(action)}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Info("Running command",
		zap.Int64("principal", principal),
		zap.String("action", string(action)),
		zap.Strings("usernames", usernames))

	var result *model.BatchResult
	if action == model.ActionDelete {
		result = d.runner.Delete(ctx, usernames)
	} else {
		result = d.runner.Add(ctx, usernames)
	}

	reply := Reply{
		Status: StatusComplete,
		Text:   services.FormatReport(result, d.report),
		Result: result,
	}
	if !result.Complete() {
		reply.Status = StatusPartial
	}
	d.metrics.ObserveCommand(string(action), string(reply.Status))

	if d.publisher != nil {
		if err := d.publisher.PublishResult(ctx, principal, result, reply.Text); err != nil {
			d.logger.Warn("Failed to publish batch result", zap.Error(err))
		}
	}
	return reply
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
