package middlewares

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const MsgServerError = "Server error"

// ErrorHandler is the fiber catch-all. Handlers respond to expected domain
// errors themselves; whatever reaches this point is reported as a generic
// server error so no internal detail leaks to the caller.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := MsgServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	if code == fiber.StatusInternalServerError {
		slog.Error("Unhandled error", "path", ctx.Path(), "error", err)
		message = MsgServerError
	}
	return ctx.Status(code).JSON(fiber.Map{"message": message})
}
