package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/potatophant/magnifier/internal/models"
)

const (
	localsUserKey   = "auth_user"
	localsClaimsKey = "auth_claims"

	bearerScheme = "Bearer"
)

// RequireSession validates the bearer token and re-derives authorization from
// the live user store. The token proves identity only; ban status is checked
// fresh on every request since bans land after issuance.
func (s *Server) RequireSession(c *fiber.Ctx) error {
	raw, ok := extractBearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	claims, err := s.tokens.Validate(raw)
	if err != nil {
		s.logger.Debug("session token rejected", "error", err)
		return s.sendError(c, err)
	}

	user, err := s.users.GetByUsername(c.Context(), claims.Username)
	if err != nil {
		s.logger.Error("session user lookup failed", "username", claims.Username, "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if user == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if user.IsBanned || s.cfg.IsBannedUsername(user.Username) {
		return c.SendStatus(fiber.StatusForbidden)
	}

	c.Locals(localsUserKey, user)
	c.Locals(localsClaimsKey, claims)

	return c.Next()
}

func extractBearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func sessionUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(localsUserKey).(*models.User)
	return user, ok && user != nil
}
