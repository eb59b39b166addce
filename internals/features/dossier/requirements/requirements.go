// file: internals/features/dossier/requirements/requirements.go
package requirements

import (
	"fmt"
	"strings"
)

// EnrollmentKind is the phase-1 enrollment situation.
type EnrollmentKind string

const (
	KindFirstEnrollment EnrollmentKind = "premiere_inscription"
	KindContinuing      EnrollmentKind = "lap"
	KindGraduate        EnrollmentKind = "master"
	KindPrep            EnrollmentKind = "prep_concours"
)

// Labels written into section 1 of the form.
const (
	LabelFirstEnrollment = "1ère Inscription"
	LabelReenrollment    = "Réinscription"
)

var allKinds = []EnrollmentKind{KindFirstEnrollment, KindContinuing, KindGraduate, KindPrep}

func Kinds() []EnrollmentKind { return append([]EnrollmentKind(nil), allKinds...) }

func (k EnrollmentKind) Valid() bool {
	for _, v := range allKinds {
		if k == v {
			return true
		}
	}
	return false
}

func (k EnrollmentKind) IsReenrollment() bool {
	return k == KindContinuing || k == KindGraduate || k == KindPrep
}

// DisplayLabel is the section-1 value matching the kind.
func (k EnrollmentKind) DisplayLabel() string {
	if k == KindFirstEnrollment {
		return LabelFirstEnrollment
	}
	return LabelReenrollment
}

// ParseKind accepts the stored value, case- and space-insensitively.
func ParseKind(s string) (EnrollmentKind, error) {
	k := EnrollmentKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown enrollment kind %q", s)
	}
	return k, nil
}

// Facts are the five phase-1 answers. A nil pointer means not answered yet.
type Facts struct {
	EnrollmentKind         *EnrollmentKind `json:"inscription_type"`
	Scholarship            *bool           `json:"is_boursier"`
	Minor                  *bool           `json:"is_mineur"`
	EnrolledElsewhere      *bool           `json:"inscrit_autre_etablissement"`
	HasMilitaryCertificate *bool           `json:"has_jdc"`
}

// Complete reports whether every fact has been answered.
func (f Facts) Complete() bool {
	return f.EnrollmentKind != nil &&
		f.Scholarship != nil &&
		f.Minor != nil &&
		f.EnrolledElsewhere != nil &&
		f.HasMilitaryCertificate != nil
}

// Missing lists the JSON names of unanswered facts in collection order.
func (f Facts) Missing() []string {
	var out []string
	if f.EnrollmentKind == nil {
		out = append(out, "inscription_type")
	}
	if f.Scholarship == nil {
		out = append(out, "is_boursier")
	}
	if f.Minor == nil {
		out = append(out, "is_mineur")
	}
	if f.EnrolledElsewhere == nil {
		out = append(out, "inscrit_autre_etablissement")
	}
	if f.HasMilitaryCertificate == nil {
		out = append(out, "has_jdc")
	}
	return out
}

// Document labels as printed on the checklist.
const (
	DocPhoto              = "Photo d'identité (35x45mm, JPG) avec nom, prénom et année d'inscription au verso"
	DocIDCopy             = "Photocopie recto-verso pièce d'identité"
	DocLiabilityInsurance = "Attestation responsabilité civile (année universitaire en cours)"
	DocCVEC               = "Attestation CVEC (acquittement ou exonération)"
	DocDiploma            = "Photocopie diplôme ou relevé notes baccalauréat (si obtenu en 2025)"
	DocImageRights        = "Formulaire cession droit à l'image"
	DocMilitary           = "Attestation JDC ou attestation d'exemption"
	DocAuthorization      = "Autorisation d'inscription"
	DocPriorStudentCard   = "Carte étudiante de l'année précédente"
	DocParentalConsent    = "Autorisation parentale"
	DocScholarship        = "Attestation CROUS portant la mention « boursier » pour l'année universitaire en cours"
	DocFeePayment         = "Copie du bulletin de versement des droits universitaires"
)

var baseline = []string{DocPhoto, DocIDCopy, DocLiabilityInsurance, DocCVEC}

func isTrue(b *bool) bool { return b != nil && *b }

// RequiredDocuments derives the ordered checklist from the facts: baseline
// first, then kind-specific, then cross-cutting. Unanswered facts count as
// false. The result is a fresh slice.
func RequiredDocuments(f Facts) []string {
	docs := make([]string, 0, 10)
	docs = append(docs, baseline...)

	if f.EnrollmentKind != nil {
		switch k := *f.EnrollmentKind; {
		case k == KindFirstEnrollment:
			docs = append(docs, DocDiploma, DocImageRights)
			if !isTrue(f.HasMilitaryCertificate) {
				docs = append(docs, DocMilitary)
			}
		// prep_concours has no differentiator from lap/master today.
		case k.IsReenrollment():
			docs = append(docs, DocAuthorization, DocPriorStudentCard)
			if isTrue(f.Minor) {
				docs = append(docs, DocParentalConsent)
			}
			if !isTrue(f.HasMilitaryCertificate) {
				docs = append(docs, DocMilitary)
			}
		}
	}

	if isTrue(f.Scholarship) {
		docs = append(docs, DocScholarship)
	}
	if isTrue(f.EnrolledElsewhere) {
		docs = append(docs, DocFeePayment)
	}
	return docs
}
