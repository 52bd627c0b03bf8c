package server

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"zenith/internal/models"
	"zenith/internal/repository"
	"zenith/internal/service"
	"zenith/internal/session"

	"github.com/gofiber/fiber/v2"
)

// DevlogList renders the public feed with category and search filters.
func (s *Server) DevlogList(c *fiber.Ctx) error {
	filter := repository.PostFilter{
		CategorySlug: c.Query("categoria"),
		Query:        strings.TrimSpace(c.Query("q")),
		Page:         c.QueryInt("page", 1),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	posts, total, err := s.postService.ListPublished(c.UserContext(), filter)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	categories, err := s.categoryRepo.ListActive(c.UserContext())
	if err != nil {
		return s.handleServiceError(c, models.NewInternalError(err))
	}

	totalPages := int((total + repository.PageSize - 1) / repository.PageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	return c.Render("devlog_list", s.pageData(c, "Devlog", fiber.Map{
		"Posts":          posts,
		"Categories":     categories,
		"ActiveCategory": filter.CategorySlug,
		"Query":          filter.Query,
		"Page":           filter.Page,
		"TotalPages":     totalPages,
		"HasPrev":        filter.Page > 1,
		"HasNext":        filter.Page < totalPages,
		"PrevPage":       filter.Page - 1,
		"NextPage":       filter.Page + 1,
	}))
}

// DevlogDetail renders a post page and counts the view.
func (s *Server) DevlogDetail(c *fiber.Ctx) error {
	viewer := s.currentUser(c)
	post, err := s.postService.GetDetail(c.UserContext(), c.Params("slug"), viewer)
	if err != nil {
		return s.handleServiceError(c, err)
	}

	if _, err := s.postService.RecordView(c.UserContext(), post); err != nil {
		return s.handleServiceError(c, err)
	}

	related, err := s.postService.Related(c.UserContext(), post)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	comments, err := s.interactionService.ListComments(c.UserContext(), viewer, post.ID)
	if err != nil {
		return s.handleServiceError(c, err)
	}

	data := s.pageData(c, post.Title, fiber.Map{
		"Post":     post,
		"Related":  related,
		"Comments": comments,
		"ShareURL": fmt.Sprintf("%s/noticias/%s/", s.config.BaseURL, post.Slug),
	})
	data["MetaDescription"] = post.MetaDescription
	return c.Render("devlog_detail", data)
}

// DevlogDashboard renders the management table plus the moderation queue.
func (s *Server) DevlogDashboard(c *fiber.Ctx) error {
	actor := s.currentUser(c)
	posts, err := s.postService.Dashboard(c.UserContext(), actor)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	pending, err := s.interactionService.PendingComments(c.UserContext(), actor)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return c.Render("devlog_dashboard", s.pageData(c, "Gerenciar publicações", fiber.Map{
		"Posts":           posts,
		"PendingComments": pending,
	}))
}

// DevlogCreatePage renders the new post form.
func (s *Server) DevlogCreatePage(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.ListActive(c.UserContext())
	if err != nil {
		return s.handleServiceError(c, models.NewInternalError(err))
	}
	return c.Render("devlog_form", s.pageData(c, "Nova publicação", fiber.Map{
		"Categories": categories,
	}))
}

// postInputFromForm reads the shared post form fields, storing an uploaded
// featured image when present.
func (s *Server) postInputFromForm(c *fiber.Ctx) (service.PostInput, error) {
	categoryID, _ := strconv.ParseUint(c.FormValue("category_id"), 10, 32)
	input := service.PostInput{
		Title:           c.FormValue("title"),
		Content:         c.FormValue("content"),
		Excerpt:         c.FormValue("excerpt"),
		MetaDescription: c.FormValue("meta_description"),
		CategoryID:      uint(categoryID),
		Publish:         c.FormValue("publish") == "1",
	}

	file, err := c.FormFile("featured_image")
	if err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return input, models.NewInternalError(err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return input, models.NewInternalError(err)
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		path, err := s.media.Save("posts", ext, data)
		if err != nil {
			return input, models.NewInternalError(err)
		}
		input.FeaturedImage = path
	}
	return input, nil
}

func (s *Server) renderPostForm(c *fiber.Ctx, title string, post *models.Post, formErr error) error {
	categories, err := s.categoryRepo.ListActive(c.UserContext())
	if err != nil {
		return s.handleServiceError(c, models.NewInternalError(err))
	}
	data := fiber.Map{"Categories": categories}
	if post != nil {
		data["Post"] = post
	}
	status := fiber.StatusOK
	if formErr != nil {
		data["Error"] = formErr.Error()
		status = models.StatusForError(formErr)
	}
	return c.Status(status).Render("devlog_form", s.pageData(c, title, data))
}

// DevlogCreateSubmit handles the new post form.
func (s *Server) DevlogCreateSubmit(c *fiber.Ctx) error {
	input, err := s.postInputFromForm(c)
	if err != nil {
		return s.renderPostForm(c, "Nova publicação", nil, err)
	}

	_, err = s.postService.Create(c.UserContext(), s.currentUser(c), input)
	if err != nil {
		return s.renderPostForm(c, "Nova publicação", nil, err)
	}

	if sess := session.FromCtx(c); sess != nil {
		sess.AddFlash("success", "Publicação criada!")
	}
	return c.Redirect("/noticias/gerenciar/", fiber.StatusFound)
}

// postBySlugParam resolves the :slug route parameter regardless of status.
// Authoring routes are staff-guarded, so drafts must resolve too.
func (s *Server) postBySlugParam(c *fiber.Ctx) (*models.Post, error) {
	slug := c.Params("slug")
	post, err := s.postRepo.GetBySlug(c.UserContext(), slug, 0)
	if err != nil {
		return nil, models.NewNotFoundError("Publicação", slug)
	}
	return post, nil
}

// DevlogEditPage renders the edit form for an existing post.
func (s *Server) DevlogEditPage(c *fiber.Ctx) error {
	post, err := s.postBySlugParam(c)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return s.renderPostForm(c, "Editar publicação", post, nil)
}

// DevlogEditSubmit handles the edit form.
func (s *Server) DevlogEditSubmit(c *fiber.Ctx) error {
	post, err := s.postBySlugParam(c)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	input, err := s.postInputFromForm(c)
	if err != nil {
		return s.renderPostForm(c, "Editar publicação", post, err)
	}

	if _, err := s.postService.Update(c.UserContext(), s.currentUser(c), post.ID, input); err != nil {
		return s.renderPostForm(c, "Editar publicação", post, err)
	}

	if sess := session.FromCtx(c); sess != nil {
		sess.AddFlash("success", "Publicação atualizada!")
	}
	return c.Redirect("/noticias/gerenciar/", fiber.StatusFound)
}

// PublishPostAPI moves a post to published.
func (s *Server) PublishPostAPI(c *fiber.Ctx) error {
	return s.transitionPostAPI(c, s.postService.Publish, "Publicação publicada")
}

// ArchivePostAPI moves a post to archived.
func (s *Server) ArchivePostAPI(c *fiber.Ctx) error {
	return s.transitionPostAPI(c, s.postService.Archive, "Publicação arquivada")
}

func (s *Server) transitionPostAPI(c *fiber.Ctx, fn func(ctx context.Context, actor *models.User, id uint) (*models.Post, error), message string) error {
	id, err := postIDParam(c)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	post, err := fn(c.UserContext(), s.currentUser(c), id)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return respondSuccess(c, message, fiber.Map{
		"post_status": post.Status,
	})
}

// DevlogDelete permanently removes a post.
func (s *Server) DevlogDelete(c *fiber.Ctx) error {
	post, err := s.postBySlugParam(c)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	if err := s.postService.Delete(c.UserContext(), s.currentUser(c), post.ID); err != nil {
		return s.handleServiceError(c, err)
	}
	if sess := session.FromCtx(c); sess != nil {
		sess.AddFlash("success", "Publicação excluída.")
	}
	return c.Redirect("/noticias/gerenciar/", fiber.StatusFound)
}
