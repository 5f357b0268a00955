package server

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/potatophant/magnifier/internal/auth"
)

// GenerateCode handles GET /api/auth/code. The new code is registered as
// pending before the response is written.
func (s *Server) GenerateCode(c *fiber.Ctx) error {
	code, err := s.codes.Generate(c.Context())
	if err != nil {
		s.logger.Error("code generation request failed", "error", err)
		return s.sendError(c, err)
	}

	return c.SendString(code)
}

// TokenRequest is the payload for GET /api/auth/token.
type TokenRequest struct {
	Code string `query:"code"`
}

// Validate bounds the parameter size only. An empty code is not rejected
// here; it falls through the verifier's pending lookup and comes back as
// unknown, so callers cannot tell validation and lookup apart.
func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Length(1, 128)),
	)
}

// IssueToken handles GET /api/auth/token?code=X.
func (s *Server) IssueToken(c *fiber.Ctx) error {
	payload := TokenRequest{Code: c.Query("code")}

	if err := payload.Validate(); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	token, err := s.verifier.VerifyAndIssue(c.Context(), payload.Code)
	if err != nil {
		return s.sendError(c, err)
	}

	return c.SendString(token)
}

// GetUser handles GET /api/auth/user.
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, ok := sessionUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}

	return c.JSON(user)
}

// GetSettings handles GET /api/auth/settings.
func (s *Server) GetSettings(c *fiber.Ctx) error {
	user, ok := sessionUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if user.Settings == nil {
		return c.JSON(map[string]any{})
	}

	return c.JSON(user.Settings)
}

// UpdateSettings handles PUT /api/auth/settings. The inbound blob replaces
// the stored settings wholesale.
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	user, ok := sessionUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}

	var settings map[string]any
	if err := json.Unmarshal(c.Body(), &settings); err != nil || settings == nil {
		s.logger.Debug("rejected malformed settings payload", "username", user.Username)
		return c.SendStatus(fiber.StatusBadRequest)
	}

	unlock := s.users.Lock(user.Username)
	defer unlock()

	if err := s.users.ReplaceSettings(c.Context(), user.Username, settings); err != nil {
		s.logger.Error("settings update failed", "username", user.Username, "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// sendError maps taxonomy errors onto bare status responses. Clients key
// off the status code alone, so no body is written.
func (s *Server) sendError(c *fiber.Ctx, err error) error {
	return c.SendStatus(auth.HTTPStatus(err))
}
