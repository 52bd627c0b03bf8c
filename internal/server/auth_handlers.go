package server

import (
	"strings"

	"zenith/internal/session"

	"github.com/gofiber/fiber/v2"
)

// LoginPage renders the login form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	return c.Render("login", s.pageData(c, "Entrar", fiber.Map{
		"Values": fiber.Map{"username": ""},
	}))
}

// LoginSubmit authenticates the form credentials and binds the user to the
// session.
func (s *Server) LoginSubmit(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	user, err := s.authService.Authenticate(c.UserContext(), username, password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).Render("login", s.pageData(c, "Entrar", fiber.Map{
			"Error":  "Usuário ou senha inválidos",
			"Values": fiber.Map{"username": username},
		}))
	}

	sess := session.FromCtx(c)
	sess.SetUserID(user.ID)

	next := c.Query("next")
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	return c.Redirect(next, fiber.StatusFound)
}

// Logout destroys the session.
func (s *Server) Logout(c *fiber.Ctx) error {
	if sess := session.FromCtx(c); sess != nil {
		sess.Destroy()
	}
	return c.Redirect("/", fiber.StatusFound)
}
