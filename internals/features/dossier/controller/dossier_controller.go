// file: internals/features/dossier/controller/dossier_controller.go
package controller

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"inscription_backend/internals/features/dossier/catalog"
	"inscription_backend/internals/features/dossier/fieldtype"
	"inscription_backend/internals/features/dossier/uploads"
	helper "inscription_backend/internals/helpers"
)

// batas body multipart; aturan terbesar 10MB
const maxUploadBytes = 12 << 20

type DossierController struct {
	Cat   *catalog.Catalog
	Types *fieldtype.Classifier
}

func NewDossierController(cat *catalog.Catalog) *DossierController {
	return &DossierController{Cat: cat, Types: fieldtype.NewClassifier(cat)}
}

/* =========================
   Catalog
========================= */

// GET /api/catalog/sections
func (ctl *DossierController) Sections(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", fiber.Map{
		"version":  ctl.Cat.Version(),
		"sections": ctl.Cat.Sections(),
	})
}

// GET /api/catalog/fields/:name
func (ctl *DossierController) Field(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("name"))
	f, ok := ctl.Cat.Field(name)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Unknown field "+name)
	}
	sec, _ := ctl.Cat.SectionForField(name)
	ft, _ := ctl.Types.TypeOf(name)

	return helper.JsonOK(c, "ok", fiber.Map{
		"field":        f,
		"label":        catalog.Label(name),
		"type":         ft,
		"section":      sec.Number,
		"section_name": sec.Name,
	})
}

/* =========================
   Documents
========================= */

// GET /api/documents/rules
func (ctl *DossierController) DocumentRules(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", uploads.Rules())
}

// POST /api/documents/validate (multipart: document_type, file)
func (ctl *DossierController) ValidateDocument(c *fiber.Ctx) error {
	docType := strings.ToLower(strings.TrimSpace(c.FormValue("document_type")))
	if docType == "" {
		return helper.JsonValidationError(c, map[string][]string{"document_type": {"required"}})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonValidationError(c, map[string][]string{"file": {"required"}})
	}
	if fh.Size > maxUploadBytes {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "File too large")
	}

	src, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Cannot open uploaded file")
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Cannot read uploaded file")
	}

	res, err := uploads.Validate(uploads.DocType(docType), fh.Filename, content)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}
