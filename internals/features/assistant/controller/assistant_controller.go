// file: internals/features/assistant/controller/assistant_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"inscription_backend/internals/features/assistant/dto"
	"inscription_backend/internals/features/assistant/service"
	helper "inscription_backend/internals/helpers"
)

type AssistantController struct {
	Svc *service.Service
}

func NewAssistantController(svc *service.Service) *AssistantController {
	return &AssistantController{Svc: svc}
}

// POST /api/assistant/ask
func (ctl *AssistantController) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return helper.JsonFromError(c, err)
	}
	ans, err := ctl.Svc.Ask(c.UserContext(), req.Question)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", ans)
}

// POST /api/assistant/help-field  (body atau ?field_name=)
func (ctl *AssistantController) HelpField(c *fiber.Ctx) error {
	var req dto.HelpFieldRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if req.FieldName == "" {
		req.FieldName = c.Query("field_name")
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return helper.JsonFromError(c, err)
	}
	h, err := ctl.Svc.FieldHelp(c.UserContext(), req.FieldName)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", h)
}

// GET /api/assistant/codes?category=
func (ctl *AssistantController) Codes(c *fiber.Ctx) error {
	ans, err := ctl.Svc.Codes(c.UserContext(), c.Query("category"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", ans)
}

// GET /api/assistant/documents
func (ctl *AssistantController) Documents(c *fiber.Ctx) error {
	ans, err := ctl.Svc.RequiredDocumentsOverview(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", ans)
}
