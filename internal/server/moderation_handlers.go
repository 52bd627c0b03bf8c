package server

import (
	"zenith/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ApproveCommentAPI marks a pending comment as approved.
func (s *Server) ApproveCommentAPI(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return s.handleServiceError(c, models.NewNotFoundError("Comentário", c.Params("id")))
	}
	comment, approved, err := s.interactionService.ApproveComment(c.UserContext(), s.currentUser(c), uint(id))
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return respondSuccess(c, "Comentário aprovado", fiber.Map{
		"comment":        comment.View(),
		"approved_count": approved,
	})
}

// DeleteCommentAPI removes a comment. Staff can remove any comment, authors
// only their own.
func (s *Server) DeleteCommentAPI(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return s.handleServiceError(c, models.NewNotFoundError("Comentário", c.Params("id")))
	}
	approved, err := s.interactionService.DeleteComment(c.UserContext(), s.currentUser(c), uint(id))
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return respondSuccess(c, "Comentário excluído", fiber.Map{
		"approved_count": approved,
	})
}
