// Package uploads checks scanned documents against the per-document
// format, size and photo constraints.
package uploads

import "inscription_backend/internals/features/dossier/requirements"

type DocType string

const (
	DocTypeMilitary    DocType = "jdc"
	DocTypeInsurance   DocType = "responsabilite_civile"
	DocTypeCVEC        DocType = "cvec"
	DocTypeImageRights DocType = "droit_image"
	DocTypeIdentity    DocType = "identite"
	DocTypeDiploma     DocType = "diplome"
	DocTypePhoto       DocType = "photo"
)

// PhotoSpec is the printed size of an ID photo.
type PhotoSpec struct {
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
}

type Rule struct {
	Type      DocType    `json:"type"`
	Name      string     `json:"name"`
	Document  string     `json:"document"`
	Formats   []string   `json:"formats"`
	MaxSizeMB float64    `json:"max_size_mb"`
	Notes     string     `json:"notes,omitempty"`
	Photo     *PhotoSpec `json:"photo,omitempty"`
}

var (
	anyFormat = []string{"pdf", "jpg", "jpeg", "png"}

	rules = []Rule{
		{
			Type: DocTypeMilitary, Name: "Attestation de participation à la journée Défense et Citoyenneté",
			Document: requirements.DocMilitary, Formats: anyFormat, MaxSizeMB: 5,
		},
		{
			Type: DocTypeInsurance, Name: "Attestation de responsabilité civile",
			Document: requirements.DocLiabilityInsurance, Formats: anyFormat, MaxSizeMB: 5,
			Notes: "Doit contenir le nom de l'étudiant, mention extra-scolaire, et couvrir l'année en cours",
		},
		{
			Type: DocTypeCVEC, Name: "Attestation CVEC",
			Document: requirements.DocCVEC, Formats: anyFormat, MaxSizeMB: 5,
			Notes: "Doit contenir le numéro CVEC (format: AIX0-XXXXXX-XX)",
		},
		{
			Type: DocTypeImageRights, Name: "Formulaire Cession droit à l'image",
			Document: requirements.DocImageRights, Formats: []string{"pdf"}, MaxSizeMB: 5,
		},
		{
			Type: DocTypeIdentity, Name: "Justificatif d'identité",
			Document: requirements.DocIDCopy, Formats: anyFormat, MaxSizeMB: 5,
			Notes: "Carte d'identité, passeport ou autre document officiel en cours de validité",
		},
		{
			Type: DocTypeDiploma, Name: "Photocopie des diplômes et relevés de notes",
			Document: requirements.DocDiploma, Formats: anyFormat, MaxSizeMB: 10,
			Notes: "Dernière formation validée en France ou à l'étranger",
		},
		{
			Type: DocTypePhoto, Name: "Photo d'identité",
			Document: requirements.DocPhoto, Formats: []string{"jpg", "jpeg"}, MaxSizeMB: 2,
			Notes: "Format 35x45mm, JPG uniquement (pas de PDF)",
			Photo: &PhotoSpec{WidthMM: 35, HeightMM: 45},
		},
	}
)

// Rules returns the document rules in presentation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Formats = append([]string(nil), r.Formats...)
		if r.Photo != nil {
			p := *r.Photo
			r.Photo = &p
		}
		out[i] = r
	}
	return out
}

func RuleFor(t DocType) (Rule, bool) {
	for _, r := range Rules() {
		if r.Type == t {
			return r, true
		}
	}
	return Rule{}, false
}
