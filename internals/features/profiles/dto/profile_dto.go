// file: internals/features/profiles/dto/profile_dto.go
package dto

import (
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"inscription_backend/internals/features/dossier/requirements"
	"inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/features/profiles/service"
	"inscription_backend/internals/helpers/apperr"
)

/* =========================
 * Validator instance
 * ========================= */
var validate = validator.New()

/* =========================
 * Request DTO: facts (phase 1)
 * ========================= */

// UpdateFactsRequest adalah patch parsial fakta fase 1. Field nil = tidak dikirim.
type UpdateFactsRequest struct {
	InscriptionType           *string `json:"inscription_type" validate:"omitempty,oneof=premiere_inscription lap master prep_concours"`
	IsBoursier                *bool   `json:"is_boursier"`
	IsMineur                  *bool   `json:"is_mineur"`
	InscritAutreEtablissement *bool   `json:"inscrit_autre_etablissement"`
	HasJDC                    *bool   `json:"has_jdc"`
}

var boolFacts = map[string]func(d *UpdateFactsRequest, v bool){
	"is_boursier":                 func(d *UpdateFactsRequest, v bool) { d.IsBoursier = &v },
	"is_mineur":                   func(d *UpdateFactsRequest, v bool) { d.IsMineur = &v },
	"inscrit_autre_etablissement": func(d *UpdateFactsRequest, v bool) { d.InscritAutreEtablissement = &v },
	"has_jdc":                     func(d *UpdateFactsRequest, v bool) { d.HasJDC = &v },
}

// BindUpdateFacts membaca body sebagai map supaya tipe yang salah
// (mis. "yes" untuk boolean) dilaporkan per field, bukan sebagai 400 umum.
func BindUpdateFacts(c *fiber.Ctx) (*UpdateFactsRequest, error) {
	var raw map[string]any
	if err := c.BodyParser(&raw); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	return ParseFacts(raw)
}

// ParseFacts validates a decoded JSON object into a facts patch.
func ParseFacts(raw map[string]any) (*UpdateFactsRequest, error) {
	d := &UpdateFactsRequest{}
	ve := apperr.NewValidation()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		if k == "inscription_type" {
			s, ok := v.(string)
			if !ok {
				ve.Add(k, "must be a string")
				continue
			}
			s = strings.ToLower(strings.TrimSpace(s))
			d.InscriptionType = &s
			continue
		}
		set, known := boolFacts[k]
		if !known {
			ve.Add(k, "unknown fact")
			continue
		}
		bv, ok := v.(bool)
		if !ok {
			ve.Add(k, "must be a boolean")
			continue
		}
		set(d, bv)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *UpdateFactsRequest) ToFacts() requirements.Facts {
	f := requirements.Facts{
		Scholarship:            d.IsBoursier,
		Minor:                  d.IsMineur,
		EnrolledElsewhere:      d.InscritAutreEtablissement,
		HasMilitaryCertificate: d.HasJDC,
	}
	if d.InscriptionType != nil {
		k := requirements.EnrollmentKind(*d.InscriptionType)
		f.EnrollmentKind = &k
	}
	return f
}

/* =========================
 * Request DTO: form data (phase 2)
 * ========================= */

type UpdateFormDataRequest struct {
	FormData       map[string]any `json:"form_data" validate:"required"`
	CurrentStep    *string        `json:"current_step" validate:"omitempty,max=64"`
	CompletedSteps []string       `json:"completed_steps" validate:"omitempty,dive,required,max=64"`
}

func (d *UpdateFormDataRequest) Sanitize() {
	if d.CurrentStep != nil {
		s := strings.TrimSpace(*d.CurrentStep)
		d.CurrentStep = &s
	}
	for i, s := range d.CompletedSteps {
		d.CompletedSteps[i] = strings.TrimSpace(s)
	}
}

func (d *UpdateFormDataRequest) Validate() error { return validate.Struct(d) }

func (d *UpdateFormDataRequest) ToUpdate() service.FormDataUpdate {
	u := service.FormDataUpdate{Data: d.FormData, CompletedSteps: d.CompletedSteps}
	if d.CurrentStep != nil {
		u.CurrentStep = *d.CurrentStep
	}
	return u
}

func BindUpdateFormData(c *fiber.Ctx) (*UpdateFormDataRequest, error) {
	var d UpdateFormDataRequest
	if err := c.BodyParser(&d); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	d.Sanitize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

/* =========================
 * Response DTO
 * ========================= */

type ProfileResponse struct {
	SessionID                 uuid.UUID      `json:"session_id"`
	AccountID                 *uuid.UUID     `json:"account_id,omitempty"`
	Phase                     model.Phase    `json:"phase"`
	InscriptionType           *string        `json:"inscription_type"`
	IsBoursier                *bool          `json:"is_boursier"`
	IsMineur                  *bool          `json:"is_mineur"`
	InscritAutreEtablissement *bool          `json:"inscrit_autre_etablissement"`
	HasJDC                    *bool          `json:"has_jdc"`
	IsPhase1Complete          bool           `json:"is_phase1_complete"`
	RequiredDocuments         []string       `json:"required_documents"`
	FormData                  map[string]any `json:"form_data"`
	FormCompleted             bool           `json:"form_completed"`
	CurrentStep               string         `json:"current_step"`
	CompletedSteps            []string       `json:"completed_steps"`
	CreatedAt                 time.Time      `json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
}

func FromModel(p *model.StudentProfileModel) ProfileResponse {
	r := ProfileResponse{
		SessionID:                 p.SessionID,
		AccountID:                 p.AccountID,
		Phase:                     p.Phase,
		IsBoursier:                p.IsBoursier,
		IsMineur:                  p.IsMineur,
		InscritAutreEtablissement: p.InscritAutreEtablissement,
		HasJDC:                    p.HasJDC,
		IsPhase1Complete:          p.CanAdvance(),
		RequiredDocuments:         append([]string{}, p.RequiredDocuments...),
		FormData:                  map[string]any(p.FormData),
		FormCompleted:             p.FormCompleted,
		CurrentStep:               p.CurrentStep,
		CompletedSteps:            append([]string{}, p.CompletedSteps...),
		CreatedAt:                 p.CreatedAt,
		UpdatedAt:                 p.UpdatedAt,
	}
	if p.InscriptionType != nil {
		s := string(*p.InscriptionType)
		r.InscriptionType = &s
	}
	if r.FormData == nil {
		r.FormData = map[string]any{}
	}
	return r
}

func FromModels(rows []model.StudentProfileModel) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

type FactsResponse struct {
	Profile           ProfileResponse `json:"profile"`
	Phase1Complete    bool            `json:"phase1_complete"`
	MissingFacts      []string        `json:"missing_facts,omitempty"`
	RequiredDocuments []string        `json:"required_documents"`
}

func FromFactsResult(r *service.FactsResult) FactsResponse {
	return FactsResponse{
		Profile:           FromModel(r.Profile),
		Phase1Complete:    r.Phase1Complete,
		MissingFacts:      r.MissingFacts,
		RequiredDocuments: r.RequiredDocuments,
	}
}
