package server

import (
	"time"

	"zenith/internal/models"
	"zenith/internal/service"
	"zenith/internal/session"

	"github.com/gofiber/fiber/v2"
)

func step1Values(c *fiber.Ctx) fiber.Map {
	return fiber.Map{
		"first_name": c.FormValue("first_name"),
		"last_name":  c.FormValue("last_name"),
		"email":      c.FormValue("email"),
		"phone":      c.FormValue("phone"),
		"birth_date": c.FormValue("birth_date"),
	}
}

// RegisterStep1Page renders the first registration form.
func (s *Server) RegisterStep1Page(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	return c.Render("register_step1", s.pageData(c, "Criar conta", fiber.Map{
		"Values": fiber.Map{},
	}))
}

// RegisterStep1Submit validates identity data and stashes it in the session.
func (s *Server) RegisterStep1Submit(c *fiber.Ctx) error {
	birth, err := time.Parse("2006-01-02", c.FormValue("birth_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).Render("register_step1", s.pageData(c, "Criar conta", fiber.Map{
			"Error":  "Informe uma data de nascimento válida",
			"Values": step1Values(c),
		}))
	}

	stash, err := s.registrationService.Step1(c.UserContext(), service.Step1Input{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		BirthDate: birth,
	})
	if err != nil {
		return c.Status(models.StatusForError(err)).Render("register_step1", s.pageData(c, "Criar conta", fiber.Map{
			"Error":  err.Error(),
			"Values": step1Values(c),
		}))
	}

	sess := session.FromCtx(c)
	sess.SetSignup(stash)
	return c.Redirect("/cadastro/etapa2/", fiber.StatusFound)
}

// RegisterStep2Page renders the credentials form. Arriving without stashed
// step-one data restarts the flow.
func (s *Server) RegisterStep2Page(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	stash := sess.Data.Signup
	if stash == nil || stash.Expired(time.Now()) {
		sess.ClearSignup()
		sess.AddFlash("error", "Sua sessão de cadastro expirou. Comece novamente.")
		return c.Redirect("/cadastro/", fiber.StatusFound)
	}
	return c.Render("register_step2", s.pageData(c, "Criar conta", fiber.Map{
		"FirstName": stash.FirstName,
		"Values":    fiber.Map{"username": ""},
	}))
}

// RegisterStep2Submit commits the account, clears the stash and logs the new
// user in.
func (s *Server) RegisterStep2Submit(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	stash := sess.Data.Signup

	user, err := s.registrationService.Complete(c.UserContext(), stash, service.Step2Input{
		Username:        c.FormValue("username"),
		Password:        c.FormValue("password"),
		PasswordConfirm: c.FormValue("password_confirm"),
	})
	if err != nil {
		if err == service.ErrStashExpired {
			sess.ClearSignup()
			sess.AddFlash("error", err.Error())
			return c.Redirect("/cadastro/", fiber.StatusFound)
		}
		firstName := ""
		if stash != nil {
			firstName = stash.FirstName
		}
		return c.Status(models.StatusForError(err)).Render("register_step2", s.pageData(c, "Criar conta", fiber.Map{
			"Error":     err.Error(),
			"FirstName": firstName,
			"Values":    fiber.Map{"username": c.FormValue("username")},
		}))
	}

	sess.ClearSignup()
	sess.SetUserID(user.ID)
	sess.AddFlash("success", "Cadastro realizado com sucesso! Bem-vindo, "+user.ShortName()+"!")
	return c.Redirect("/", fiber.StatusFound)
}
