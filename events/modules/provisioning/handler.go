package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ortelius/media-provisioner/internal/commands"
	"go.uber.org/zap"
)

// CommandHandler runs a text command for a principal
type CommandHandler interface {
	Handle(ctx context.Context, principal int64, text string) commands.Reply
}

// HandleCommandEvent processes one command event from Kafka
func HandleCommandEvent(ctx context.Context, msg []byte, handler CommandHandler, logger *zap.Logger) (commands.Reply, error) {
	var event CommandEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return commands.Reply{}, fmt.Errorf("failed to unmarshal CommandEvent: %w", err)
	}

	if strings.TrimSpace(event.Command) == "" {
		return commands.Reply{}, fmt.Errorf("invalid event %s: missing command", event.EventID)
	}

	logger.Info("Processing command event",
		zap.String("event_id", event.EventID),
		zap.Int64("principal", event.Principal))

	reply := handler.Handle(ctx, event.Principal, event.Command)

	logger.Info("Command event processed",
		zap.String("event_id", event.EventID),
		zap.String("status", string(reply.Status)))
	return reply, nil
}
