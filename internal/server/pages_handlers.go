package server

import (
	"zenith/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// HomePage renders the landing page with the latest published posts.
func (s *Server) HomePage(c *fiber.Ctx) error {
	posts, _, err := s.postService.ListPublished(c.UserContext(), repository.PostFilter{Page: 1})
	if err != nil {
		return s.handleServiceError(c, err)
	}
	if len(posts) > 3 {
		posts = posts[:3]
	}
	return c.Render("home", s.pageData(c, "ZenithPixels", fiber.Map{
		"Posts": posts,
	}))
}

// ChamaEspiralPage renders the Chama Espiral game page.
func (s *Server) ChamaEspiralPage(c *fiber.Ctx) error {
	return c.Render("chama_espiral", s.pageData(c, "Chama Espiral", nil))
}

// LilithPage renders the Lilith game page.
func (s *Server) LilithPage(c *fiber.Ctx) error {
	return c.Render("lilith", s.pageData(c, "Lilith", nil))
}

// LorePortal renders the lore browser. Unknown fragment ids fall back to the
// first fragment rather than a 404.
func (s *Server) LorePortal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		id = 1
	}
	page := s.lore.BuildPage(id)
	return c.Render("lore", s.pageData(c, "Lore de Chama Espiral", fiber.Map{
		"Page": page,
	}))
}
