package chat

import (
	"context"
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/media-provisioner/internal/commands"
	"go.uber.org/zap"
)

// CommandHandler runs a text command for a principal
type CommandHandler interface {
	Handle(ctx context.Context, principal int64, text string) commands.Reply
}

// Webhook handles POST /api/v1/chat/webhook. Updates without the matching
// secret header are rejected, and an empty secret rejects every update.
// Replies are sent inline as a sendMessage call.
func Webhook(handler CommandHandler, secret string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" || subtle.ConstantTimeCompare([]byte(c.Get(SecretHeader)), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid webhook secret",
			})
		}

		var update Update
		if err := c.BodyParser(&update); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid update payload",
			})
		}

		// Nothing to answer: edits, joins, media without text
		if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
			return c.SendStatus(fiber.StatusOK)
		}

		msg := update.Message
		logger.Debug("Chat command received",
			zap.Int64("update_id", update.UpdateID),
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("principal", msg.From.ID))

		reply := handler.Handle(c.UserContext(), msg.From.ID, msg.Text)

		return c.JSON(SendMessage{
			Method: "sendMessage",
			ChatID: msg.Chat.ID,
			Text:   reply.Text,
		})
	}
}
