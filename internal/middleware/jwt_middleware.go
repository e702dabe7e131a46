package middleware

import (
	"log"
	"strings"

	"prospects/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Keys under which AuthRequired stores the verified identity.
const (
	LocalUserID = "user_id"
	LocalClaims = "claims"
)

// AuthRequired is a Fiber middleware to check for a valid bearer credential.
func AuthRequired(tokens services.TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		identity, err := tokens.Validate(parts[1])
		if err != nil {
			log.Printf("Credential validation failed: %v", err)
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalUserID, identity.Subject)
		c.Locals(LocalClaims, identity.Claims)

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code":    fiber.StatusUnauthorized,
		"kind":    services.KindInvalidCredentials,
		"message": message,
	})
}
