package httpapi

import (
	"strings"
	"time"

	"github.com/avolkovs/codepad/internal/server/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// userKey is the fiber.Ctx locals key holding the authenticated user.
	userKey = "user"
	// refreshedTokenKey holds the replacement access token, when the bearer
	// token used for this request was close to expiring.
	refreshedTokenKey = "refreshed_token"
)

// requestLogger assigns each request an id and logs method, path, status and
// duration once the handler chain finishes.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()

		err := c.Next()

		s.logger.Info(c.UserContext(), "request",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String(),
		)
		return err
	}
}

// requireAuth validates the bearer token, loads the bound user into the
// request scope, and decides about sliding refresh while the claims are at
// hand: if the token expires within the configured threshold, a replacement
// is minted and stashed for the handler to attach to its response. Deciding
// here keeps response bodies typed instead of rewriting serialized JSON.
func (s *Server) requireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Msg: "missing or invalid authorization header"})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, claims, err := s.sessions.ResolveUser(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Msg: "invalid or expired token"})
		}

		c.Locals(userKey, user)

		if refreshed, err := s.sessions.RefreshIfNeeded(claims); err == nil && refreshed != "" {
			c.Locals(refreshedTokenKey, refreshed)
		}

		return c.Next()
	}
}

// currentUser returns the user stored by requireAuth.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// refreshedToken returns the replacement token for this request, or "".
func refreshedToken(c *fiber.Ctx) string {
	token, _ := c.Locals(refreshedTokenKey).(string)
	return token
}
