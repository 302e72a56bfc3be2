package provisioning

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/media-provisioner/internal/commands"
	"github.com/ortelius/media-provisioner/model"
	"github.com/ortelius/media-provisioner/restapi/modules/auth"
)

// BatchRunner runs an add or delete batch for a principal
type BatchRunner interface {
	Run(ctx context.Context, principal int64, action model.Action, usernames []string) commands.Reply
}

// PostUsers handles POST /api/v1/users
func PostUsers(runner BatchRunner) fiber.Handler {
	return handleBatch(runner, model.ActionAdd)
}

// DeleteUsers handles DELETE /api/v1/users
func DeleteUsers(runner BatchRunner) fiber.Handler {
	return handleBatch(runner, model.ActionDelete)
}

func handleBatch(runner BatchRunner, action model.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		var req UsersRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body: " + err.Error(),
			})
		}

		reply := runner.Run(c.UserContext(), principal, action, req.Usernames)

		switch reply.Status {
		case commands.StatusUnauthorized:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": reply.Text,
			})
		case commands.StatusUsage:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": reply.Text,
			})
		}

		status := fiber.StatusOK
		if reply.Status == commands.StatusPartial {
			status = fiber.StatusMultiStatus
		}

		return c.Status(status).JSON(UsersResponse{
			Success:   reply.Status == commands.StatusComplete,
			Action:    reply.Result.Action,
			Report:    reply.Text,
			Succeeded: reply.Result.Succeeded,
			Outcomes:  reply.Result.Outcomes,
		})
	}
}
