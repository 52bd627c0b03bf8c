package server

import (
	"io"

	"zenith/internal/models"
	"zenith/internal/service"
	"zenith/internal/session"

	"github.com/gofiber/fiber/v2"
)

// OwnProfilePage redirects to the caller's public profile URL.
func (s *Server) OwnProfilePage(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return c.Redirect("/login/", fiber.StatusFound)
	}
	return c.Redirect("/profile/"+user.Username+"/", fiber.StatusFound)
}

// ProfilePage renders a public profile.
func (s *Server) ProfilePage(c *fiber.Ctx) error {
	viewer := s.currentUser(c)
	view, err := s.profileService.Get(c.UserContext(), c.Params("username"), viewer)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	isOwner := viewer != nil && viewer.ID == view.User.ID
	return c.Render("profile", s.pageData(c, view.User.Username, fiber.Map{
		"Owner":         view.User,
		"Profile":       view.Profile,
		"ShowBirthDate": view.ShowBirthDate,
		"IsOwner":       isOwner,
	}))
}

// ProfileEditPage renders the edit form for the caller's own profile.
func (s *Server) ProfileEditPage(c *fiber.Ctx) error {
	user := s.currentUser(c)
	profile, err := s.userRepo.EnsureProfile(c.UserContext(), user.ID)
	if err != nil {
		return s.handleServiceError(c, models.NewInternalError(err))
	}
	return c.Render("profile_edit", s.pageData(c, "Editar perfil", fiber.Map{
		"Profile": profile,
	}))
}

// ProfileEditSubmit saves profile fields and an optional new avatar.
func (s *Server) ProfileEditSubmit(c *fiber.Ctx) error {
	user := s.currentUser(c)
	input := service.ProfileUpdateInput{
		FirstName:           c.FormValue("first_name"),
		LastName:            c.FormValue("last_name"),
		Role:                c.FormValue("role"),
		Bio:                 c.FormValue("bio"),
		Twitter:             c.FormValue("twitter"),
		LinkedIn:            c.FormValue("linkedin"),
		Website:             c.FormValue("website"),
		Location:            c.FormValue("location"),
		BirthDateVisibility: c.FormValue("birth_date_visibility"),
	}

	profile, err := s.profileService.Update(c.UserContext(), user, input)
	if err != nil {
		data := fiber.Map{"Error": err.Error()}
		if profile != nil {
			data["Profile"] = profile
		} else if p, perr := s.userRepo.EnsureProfile(c.UserContext(), user.ID); perr == nil {
			data["Profile"] = p
		}
		return c.Status(models.StatusForError(err)).Render("profile_edit",
			s.pageData(c, "Editar perfil", data))
	}

	if file, ferr := c.FormFile("avatar"); ferr == nil && file != nil && file.Size > 0 {
		f, err := file.Open()
		if err != nil {
			return s.handleServiceError(c, models.NewInternalError(err))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return s.handleServiceError(c, models.NewInternalError(err))
		}
		if _, err := s.profileService.UpdateAvatar(c.UserContext(), user.ID, data); err != nil {
			return c.Status(models.StatusForError(err)).Render("profile_edit",
				s.pageData(c, "Editar perfil", fiber.Map{
					"Profile": profile,
					"Error":   err.Error(),
				}))
		}
	}

	if sess := session.FromCtx(c); sess != nil {
		sess.AddFlash("success", "Perfil atualizado!")
	}
	return c.Redirect("/profile/"+user.Username+"/", fiber.StatusFound)
}
