package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalAccountID = "accountId"
	LocalEmail     = "email"
)

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256) with the
// same rules the issuer signs under. On success the account id is stored in
// c.Locals(LocalAccountID) as a uuid.UUID.
func NewAuthMiddleware(issuer *Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			return unauthorized(c, "missing Authorization header")
		}
		// Support both "Bearer <token>" and "<token>" (no prefix).
		tokenStr := authHeader
		if scheme, rest, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
			tokenStr = strings.TrimSpace(rest)
		}
		if tokenStr == "" {
			return unauthorized(c, "empty token")
		}
		claims, err := issuer.Verify(tokenStr)
		if err != nil {
			return unauthorized(c, "invalid or expired token")
		}
		id, _ := uuid.Parse(claims.Subject)
		c.Locals(LocalAccountID, id)
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// AccountID returns the verified account id stored by the middleware.
func AccountID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(LocalAccountID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": msg})
}
