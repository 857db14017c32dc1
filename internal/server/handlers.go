package server

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spigell/recruiter/internal/roles"
)

type roleView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Requirements string `json:"requirements"`
}

func (s *Server) listRoles(c *fiber.Ctx) error {
	all := roles.All()
	out := make([]roleView, 0, len(all))
	for _, r := range all {
		req, err := roles.Requirements(r)
		if err != nil {
			return err
		}
		out = append(out, roleView{ID: r.String(), Title: roles.Title(r), Requirements: req})
	}

	return c.JSON(out)
}

func (s *Server) getApplication(c *fiber.Ctx) error {
	return c.JSON(newRecordView(machineFrom(c).Record()))
}

type roleRequest struct {
	Role string `json:"role"`
}

func (s *Server) selectRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	m := machineFrom(c)
	if err := m.SelectRole(roles.Role(req.Role)); err != nil {
		return err
	}

	return c.JSON(newRecordView(m.Record()))
}

func (s *Server) uploadResume(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "resume file is required")
	}

	f, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "open resume: "+err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "read resume: "+err.Error())
	}

	m := machineFrom(c)
	if err := m.SubmitResume(c.UserContext(), data); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newRecordView(m.Record()))
}

type screeningRequest struct {
	Email string `json:"email"`
}

func (s *Server) requestScreening(c *fiber.Ctx) error {
	var req screeningRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	m := machineFrom(c)
	if _, err := m.RequestScreening(c.UserContext(), req.Email); err != nil {
		return err
	}

	return c.JSON(newRecordView(m.Record()))
}

type decisionRequest struct {
	Selected bool   `json:"selected"`
	Feedback string `json:"feedback"`
}

func (s *Server) completeScreening(c *fiber.Ctx) error {
	var req decisionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	m := machineFrom(c)
	if err := m.CompleteScreening(c.UserContext(), req.Selected, req.Feedback); err != nil {
		return err
	}

	return c.JSON(newRecordView(m.Record()))
}

func (s *Server) proceed(c *fiber.Ctx) error {
	m := machineFrom(c)
	outcome, err := m.Proceed(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"outcome":     newOutcomeView(*outcome),
		"application": newRecordView(m.Record()),
	})
}

func (s *Server) reset(c *fiber.Ctx) error {
	m := machineFrom(c)
	m.Reset()

	return c.JSON(newRecordView(m.Record()))
}
