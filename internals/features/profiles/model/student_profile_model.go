// file: internals/features/profiles/model/student_profile_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"inscription_backend/internals/features/dossier/requirements"
)

type Phase string

const (
	PhaseCollectingFacts Phase = "collecte_info"
	PhaseFillingForm     Phase = "remplissage_formulaire"
)

// Step markers.
const (
	StepStart        = "start"
	StepPersonalInfo = "personal_info"
)

// Section-1 form key filled from the enrollment kind on advance.
const FieldEnrollmentLabel = "type_inscription"

// StudentProfileModel merepresentasikan tabel student_profiles.
// Fakta fase 1 dan form_data hanya boleh diubah lewat method di file ini.
type StudentProfileModel struct {
	SessionID uuid.UUID  `gorm:"type:uuid;primaryKey" json:"session_id"`
	AccountID *uuid.UUID `gorm:"type:uuid;index:idx_student_profiles_account" json:"account_id,omitempty"`

	Phase Phase `gorm:"type:varchar(32);not null;default:'collecte_info'" json:"phase"`

	// Fase 1 (nil = belum dijawab)
	InscriptionType           *requirements.EnrollmentKind `gorm:"type:varchar(32)" json:"inscription_type"`
	IsBoursier                *bool                        `json:"is_boursier"`
	IsMineur                  *bool                        `json:"is_mineur"`
	InscritAutreEtablissement *bool                        `json:"inscrit_autre_etablissement"`
	HasJDC                    *bool                        `gorm:"column:has_jdc" json:"has_jdc"`

	RequiredDocuments pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"required_documents"`

	// Fase 2
	FormData       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"form_data"`
	FormCompleted  bool              `gorm:"not null;default:false" json:"form_completed"`
	CurrentStep    string            `gorm:"type:varchar(64);not null;default:'start'" json:"current_step"`
	CompletedSteps pq.StringArray    `gorm:"type:text[];not null;default:'{}'" json:"completed_steps"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();index" json:"updated_at"`
}

func (StudentProfileModel) TableName() string {
	return "student_profiles"
}

// NewStudentProfile returns a fresh profile in the fact-collection phase.
func NewStudentProfile(accountID *uuid.UUID) *StudentProfileModel {
	now := time.Now().UTC()
	return &StudentProfileModel{
		SessionID:         uuid.New(),
		AccountID:         accountID,
		Phase:             PhaseCollectingFacts,
		RequiredDocuments: pq.StringArray{},
		FormData:          datatypes.JSONMap{},
		CurrentStep:       StepStart,
		CompletedSteps:    pq.StringArray{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (p *StudentProfileModel) touch() { p.UpdatedAt = time.Now().UTC() }

func (p *StudentProfileModel) Facts() requirements.Facts {
	return requirements.Facts{
		EnrollmentKind:         p.InscriptionType,
		Scholarship:            p.IsBoursier,
		Minor:                  p.IsMineur,
		EnrolledElsewhere:      p.InscritAutreEtablissement,
		HasMilitaryCertificate: p.HasJDC,
	}
}

// ApplyFacts copies every answered fact of the patch onto the profile and
// recomputes the document list.
func (p *StudentProfileModel) ApplyFacts(patch requirements.Facts) {
	if patch.EnrollmentKind != nil {
		k := *patch.EnrollmentKind
		p.InscriptionType = &k
	}
	if patch.Scholarship != nil {
		p.IsBoursier = boolPtr(*patch.Scholarship)
	}
	if patch.Minor != nil {
		p.IsMineur = boolPtr(*patch.Minor)
	}
	if patch.EnrolledElsewhere != nil {
		p.InscritAutreEtablissement = boolPtr(*patch.EnrolledElsewhere)
	}
	if patch.HasMilitaryCertificate != nil {
		p.HasJDC = boolPtr(*patch.HasMilitaryCertificate)
	}
	p.RecomputeDocuments()
}

// RecomputeDocuments replaces the document list from the current facts.
func (p *StudentProfileModel) RecomputeDocuments() {
	p.RequiredDocuments = pq.StringArray(requirements.RequiredDocuments(p.Facts()))
	p.touch()
}

func (p *StudentProfileModel) CanAdvance() bool { return p.Facts().Complete() }

// Advance moves the profile to the form-filling phase. It returns false and
// leaves the profile untouched when a fact is still unanswered. A profile
// already filling the form is left as is.
func (p *StudentProfileModel) Advance() bool {
	if p.Phase == PhaseFillingForm {
		return true
	}
	if !p.CanAdvance() {
		return false
	}
	p.RecomputeDocuments()
	if p.FormData == nil {
		p.FormData = datatypes.JSONMap{}
	}
	if _, ok := p.FormData[FieldEnrollmentLabel]; !ok {
		p.FormData[FieldEnrollmentLabel] = p.InscriptionType.DisplayLabel()
	}
	p.Phase = PhaseFillingForm
	p.CurrentStep = StepPersonalInfo
	return true
}

// MergeFormData overlays patch onto the stored form data.
func (p *StudentProfileModel) MergeFormData(patch map[string]any) {
	if p.FormData == nil {
		p.FormData = datatypes.JSONMap{}
	}
	for k, v := range patch {
		p.FormData[k] = v
	}
	p.touch()
}

// SetProgress moves the step marker when step is non-empty and adds the given
// steps to the completed set, keeping first-seen order.
func (p *StudentProfileModel) SetProgress(step string, completed []string) {
	if step != "" {
		p.CurrentStep = step
	}
	seen := make(map[string]bool, len(p.CompletedSteps))
	for _, s := range p.CompletedSteps {
		seen[s] = true
	}
	for _, s := range completed {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		p.CompletedSteps = append(p.CompletedSteps, s)
	}
	p.touch()
}

// FormMap returns the form data as a plain map for the completeness checks.
func (p *StudentProfileModel) FormMap() map[string]any {
	return map[string]any(p.FormData)
}

func boolPtr(v bool) *bool { return &v }
