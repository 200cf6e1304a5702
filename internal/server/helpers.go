package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"clubhouse/internal/middleware"
	"clubhouse/internal/models"
	"clubhouse/internal/policy"
	"clubhouse/internal/session"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	localUser   = "user"
	localClaims = "claims"
	localUserID = "userID"
)

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(session.CookieName)
}

// AuthRequired loads the current user from the session token. The user is
// re-read on every request so role changes apply immediately.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Authentication required"))
		}

		user, claims, err := s.authService.CurrentUser(c.UserContext(), token)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localUser, user)
		c.Locals(localClaims, claims)
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID))
		return c.Next()
	}
}

// RequireAction rejects the request with 403 unless the current user may
// perform action. It runs before any path or body parsing.
func (s *Server) RequireAction(action policy.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := policy.Authorize(currentUser(c), action); err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.Next()
	}
}

// currentUser returns the user stored by AuthRequired, or nil on public routes.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func currentClaims(c *fiber.Ctx) *session.Claims {
	claims, _ := c.Locals(localClaims).(*session.Claims)
	return claims
}
