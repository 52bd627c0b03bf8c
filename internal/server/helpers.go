package server

import (
	"strings"

	"zenith/internal/models"
	"zenith/internal/service"
	"zenith/internal/session"

	"github.com/gofiber/fiber/v2"
)

const currentUserKey = "currentUser"

// currentUser resolves the logged in user for this request, caching the
// lookup in locals. Returns nil for anonymous requests and for stale
// sessions pointing at deleted accounts.
func (s *Server) currentUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(currentUserKey).(*models.User); ok {
		return u
	}
	sess := session.FromCtx(c)
	if sess == nil || !sess.IsAuthenticated() {
		return nil
	}
	user, err := s.userRepo.GetByID(c.UserContext(), sess.Data.UserID)
	if err != nil {
		return nil
	}
	c.Locals(currentUserKey, user)
	return user
}

// isAPIRequest reports whether the failure should be answered with JSON
// instead of a redirect.
func isAPIRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/") ||
		strings.Contains(c.Get(fiber.HeaderAccept), "application/json")
}

// LoginRequired guards routes behind a session. Pages redirect to the login
// form; API calls get a 401 envelope.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.FromCtx(c)
		if sess == nil || !sess.IsAuthenticated() {
			if isAPIRequest(c) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"status":  "error",
					"message": "Faça login para continuar",
				})
			}
			return c.Redirect("/login/?next="+c.Path(), fiber.StatusFound)
		}
		if s.currentUser(c) == nil {
			// Session references a user that no longer exists
			sess.Destroy()
			if isAPIRequest(c) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"status":  "error",
					"message": "Faça login para continuar",
				})
			}
			return c.Redirect("/login/", fiber.StatusFound)
		}
		return c.Next()
	}
}

// StaffRequired rejects non-staff users. Must run after LoginRequired.
func (s *Server) StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := s.currentUser(c)
		if user == nil || !user.IsStaff {
			if isAPIRequest(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"status":  "error",
					"message": "Acesso restrito à equipe",
				})
			}
			return c.Status(fiber.StatusForbidden).SendString("Acesso restrito à equipe")
		}
		return c.Next()
	}
}

// ThemeMiddleware resolves the effective dark mode flag once per request.
func (s *Server) ThemeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.FromCtx(c)
		dark := s.themeService.Resolve(c.UserContext(), sess, c.Cookies(service.ThemeCookieName))
		c.Locals("darkMode", dark)
		return c.Next()
	}
}

func (s *Server) darkMode(c *fiber.Ctx) bool {
	dark, _ := c.Locals("darkMode").(bool)
	return dark
}

// pageData builds the common template payload and merges page-specific keys.
func (s *Server) pageData(c *fiber.Ctx, title string, extra fiber.Map) fiber.Map {
	data := fiber.Map{
		"Title":    title,
		"DarkMode": s.darkMode(c),
		"User":     s.currentUser(c),
	}
	if sess := session.FromCtx(c); sess != nil {
		data["Flashes"] = sess.ConsumeFlashes()
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// respondSuccess writes the standard success envelope with extra payload keys.
func respondSuccess(c *fiber.Ctx, message string, extra fiber.Map) error {
	payload := fiber.Map{
		"status":  "success",
		"message": message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return c.JSON(payload)
}

// handleServiceError converts a service error into the right response shape
// for the current route.
func (s *Server) handleServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
