package server

import (
	"strings"
	"time"

	"zenith/internal/service"
	"zenith/internal/session"

	"github.com/gofiber/fiber/v2"
)

// ToggleTheme flips the dark mode preference. The new value is written to the
// session, the profile when logged in, and a plain cookie so anonymous
// visitors keep their choice across sessions.
func (s *Server) ToggleTheme(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	current := s.darkMode(c)

	next, err := s.themeService.Toggle(c.UserContext(), sess, current)
	if err != nil {
		return s.handleServiceError(c, err)
	}

	hint := "light"
	if next {
		hint = "dark"
	}
	c.Cookie(&fiber.Cookie{
		Name:     service.ThemeCookieName,
		Value:    hint,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if c.Get(fiber.HeaderAccept) == fiber.MIMEApplicationJSON || isAPIRequest(c) {
		return respondSuccess(c, "", fiber.Map{"dark_mode": next})
	}

	back := c.Get(fiber.HeaderReferer)
	if back == "" || strings.HasPrefix(back, "//") {
		back = "/"
	}
	return c.Redirect(back, fiber.StatusFound)
}
