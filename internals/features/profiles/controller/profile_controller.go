// file: internals/features/profiles/controller/profile_controller.go
package controller

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"inscription_backend/internals/configs"
	"inscription_backend/internals/features/dossier/export"
	"inscription_backend/internals/features/profiles/dto"
	"inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/features/profiles/service"
	helper "inscription_backend/internals/helpers"
	"inscription_backend/internals/helpers/dbtime"
)

type ProfileController struct {
	Svc         *service.Service
	Institution string
}

func NewProfileController(svc *service.Service, institution string) *ProfileController {
	return &ProfileController{Svc: svc, Institution: institution}
}

/* =========================
   Lifecycle
========================= */

// POST /api/profile/start
func (ctl *ProfileController) Start(c *fiber.Ctx) error {
	p, err := ctl.Svc.Start(c.UserContext(), helper.OptionalAccountID(c))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Session started", fiber.Map{
		"session_id": p.SessionID,
		"phase":      p.Phase,
	})
}

// GET /api/profile/:session_id
func (ctl *ProfileController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "session_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(p))
}

// DELETE /api/profile/:session_id
func (ctl *ProfileController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "session_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Profile deleted", fiber.Map{"session_id": id})
}

/* =========================
   Phase 1
========================= */

// POST /api/profile/:session_id/update
func (ctl *ProfileController) UpdateFacts(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "session_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	req, err := dto.BindUpdateFacts(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	res, err := ctl.Svc.UpdateFacts(c.UserContext(), id, req.ToFacts())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Facts updated", dto.FromFactsResult(res))
}

// POST /api/profile/:session_id/phase2
func (ctl *ProfileController) Advance(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "session_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p, advanced, err := ctl.Svc.Advance(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if !advanced {
		missing := p.Facts().Missing()
		return c.Status(fiber.StatusConflict).JSON(helper.ErrorResponse{
			Success:   false,
			Message:   "phase 1 is not complete: " + strings.Join(missing, ", "),
			ErrorCode: "CONFLICT",
		})
	}
	return helper.JsonOK(c, "Form filling started", dto.FromModel(p))
}

/* =========================
   Phase 2
========================= */

// POST /api/profile/:session_id/form-data
func (ctl *ProfileController) UpdateFormData(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "session_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	req, err := dto.BindUpdateFormData(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	st, err := ctl.Svc.UpdateFormData(c.UserContext(), id, req.ToUpdate())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Form data saved", st)
}

// GET /api/profile/:session_id/missing-fields
func (ctl *ProfileController) MissingFields(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "session_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	v, err := ctl.Svc.MissingFields(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", v)
}

/* =========================
   Export
========================= */

func studentInfo(p *model.StudentProfileModel, institution string) export.StudentInfo {
	info := export.StudentInfo{Institution: institution}
	if s, ok := p.FormData["nom_naissance"].(string); ok {
		info.LastName = s
	}
	if s, ok := p.FormData["prenom_1"].(string); ok {
		info.FirstName = s
	}
	if p.InscriptionType != nil {
		info.EnrollmentLabel = string(*p.InscriptionType)
	}
	return info
}

// GET /api/profile/:session_id/export?format=csv|email
func (ctl *ProfileController) Export(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "session_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	info := studentInfo(p, ctl.Institution)

	if format == export.FormatEmail {
		mail, err := export.EmailOf(p.RequiredDocuments, info)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		return helper.JsonOK(c, "ok", mail)
	}

	body, err := export.CSV(p.RequiredDocuments, info, dbtime.Now(c, configs.AppTimezone))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "documents-a-fournir.csv"))
	return c.Status(fiber.StatusOK).Send(append(append([]byte{}, export.BOM...), body...))
}

