package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rentloop/accounts/internal/auth"
)

const userIDKey = "userID"

// RequireAuth validates the Bearer access token and stores the caller's user
// ID in the request locals.
func RequireAuth(issuer *auth.TokenIssuer) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}
		claims, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}
		userID, err := claims.UserID()
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}
		ctx.Locals(userIDKey, userID)
		return ctx.Next()
	}
}

// AuthUserID returns the user ID stored by RequireAuth, zero when absent.
func AuthUserID(ctx *fiber.Ctx) uint {
	userID, _ := ctx.Locals(userIDKey).(uint)
	return userID
}
