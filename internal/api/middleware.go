package api

import (
	"errors"
	"strings"

	"github.com/atomizehq/atomize/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const contextUserKey = "current_user"

// AuthRequired resolves the bearer token to a live user and stashes it in
// the request context. A deleted or deactivated account fails exactly like
// a bad token.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return respondUnauthorized(c, "No token provided")
	}

	claims, err := handler.parseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return respondUnauthorized(c, "Token expired")
		}
		return respondUnauthorized(c, "Invalid token")
	}

	user, found, err := handler.repos.Users.FindByID(claims.UserID)
	if err != nil {
		return respondInternalError(c)
	}
	if !found || !user.IsActive {
		return respondUnauthorized(c, "Invalid token")
	}

	c.Locals(contextUserKey, &user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

// mustCurrentUser is used after AuthRequired; a missing user here means a
// route was wired without the middleware.
func mustCurrentUser(c *fiber.Ctx) *models.User {
	user, ok := currentUser(c)
	if !ok {
		panic("handler invoked without AuthRequired")
	}
	return user
}
