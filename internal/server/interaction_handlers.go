package server

import (
	"fmt"

	"zenith/internal/models"

	"github.com/gofiber/fiber/v2"
)

func postIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, models.NewNotFoundError("Publicação", c.Params("id"))
	}
	return uint(id), nil
}

// ToggleLikeAPI flips the caller's like on a post.
func (s *Server) ToggleLikeAPI(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	result, err := s.interactionService.ToggleLike(c.UserContext(), s.currentUser(c), postID)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	message := "Publicação curtida"
	if !result.Liked {
		message = "Curtida removida"
	}
	return respondSuccess(c, message, fiber.Map{
		"liked":       result.Liked,
		"likes_count": result.LikesCount,
	})
}

type commentRequest struct {
	Content string `json:"content" form:"content"`
}

// AddComment submits a comment on the post behind the :slug parameter.
// Staff comments go live immediately, everything else waits for moderation.
func (s *Server) AddComment(c *fiber.Ctx) error {
	viewer := s.currentUser(c)
	post, err := s.postService.GetDetail(c.UserContext(), c.Params("slug"), viewer)
	if err != nil {
		return s.handleServiceError(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return s.handleServiceError(c, models.NewValidationError("Corpo da requisição inválido"))
	}

	comment, err := s.interactionService.AddComment(c.UserContext(), viewer, post.ID, req.Content)
	if err != nil {
		return s.handleServiceError(c, err)
	}

	message := "Comentário enviado para moderação"
	if comment.IsApproved {
		message = "Comentário publicado"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"comment": comment.View(),
	})
}

// ListCommentsAPI returns the comments visible to the caller.
func (s *Server) ListCommentsAPI(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	comments, err := s.interactionService.ListComments(c.UserContext(), s.currentUser(c), postID)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return respondSuccess(c, "", fiber.Map{
		"comments": models.CommentViews(comments),
		"count":    len(comments),
	})
}

// SharePostAPI returns the canonical share URL for a post.
func (s *Server) SharePostAPI(c *fiber.Ctx) error {
	postID, err := postIDParam(c)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	post, err := s.postRepo.GetByID(c.UserContext(), postID)
	if err != nil {
		return s.handleServiceError(c, models.NewNotFoundError("Publicação", postID))
	}
	if !post.IsPublished() {
		return s.handleServiceError(c, models.NewNotFoundError("Publicação", postID))
	}
	return respondSuccess(c, "Confira esta notícia: "+post.Title, fiber.Map{
		"url":   fmt.Sprintf("%s/noticias/%s/", s.config.BaseURL, post.Slug),
		"title": post.Title,
	})
}
