package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscription_backend/internals/features/dossier/requirements"
)

func kindPtr(k requirements.EnrollmentKind) *requirements.EnrollmentKind { return &k }

func fullFacts(k requirements.EnrollmentKind) requirements.Facts {
	return requirements.Facts{
		EnrollmentKind:         kindPtr(k),
		Scholarship:            boolPtr(false),
		Minor:                  boolPtr(false),
		EnrolledElsewhere:      boolPtr(false),
		HasMilitaryCertificate: boolPtr(false),
	}
}

func TestNewStudentProfile(t *testing.T) {
	p := NewStudentProfile(nil)
	assert.NotEqual(t, uuid.Nil, p.SessionID)
	assert.Equal(t, PhaseCollectingFacts, p.Phase)
	assert.Equal(t, StepStart, p.CurrentStep)
	assert.Empty(t, p.RequiredDocuments)
	assert.NotNil(t, p.FormData)
	assert.False(t, p.CanAdvance())
}

func TestApplyFactsRecomputesDocuments(t *testing.T) {
	p := NewStudentProfile(nil)
	before := p.UpdatedAt
	time.Sleep(time.Millisecond)

	p.ApplyFacts(requirements.Facts{EnrollmentKind: kindPtr(requirements.KindFirstEnrollment)})
	assert.True(t, p.UpdatedAt.After(before))
	assert.Len(t, p.RequiredDocuments, 7)

	p.ApplyFacts(requirements.Facts{HasMilitaryCertificate: boolPtr(true)})
	assert.Equal(t, requirements.KindFirstEnrollment, *p.InscriptionType)
	assert.Len(t, p.RequiredDocuments, 6)
	assert.NotContains(t, p.RequiredDocuments, requirements.DocMilitary)
}

func TestApplyFactsCopiesPatchValues(t *testing.T) {
	p := NewStudentProfile(nil)
	v := true
	p.ApplyFacts(requirements.Facts{Scholarship: &v})
	v = false
	assert.True(t, *p.IsBoursier)
}

func TestAdvanceBlockedWhileFactMissing(t *testing.T) {
	p := NewStudentProfile(nil)
	f := fullFacts(requirements.KindFirstEnrollment)
	f.Scholarship = nil
	p.ApplyFacts(f)
	snapshot := *p

	assert.False(t, p.Advance())
	assert.Equal(t, PhaseCollectingFacts, p.Phase)
	assert.Equal(t, StepStart, p.CurrentStep)
	assert.Equal(t, snapshot.UpdatedAt, p.UpdatedAt)
	assert.NotContains(t, p.FormData, FieldEnrollmentLabel)
}

func TestAdvanceBackfillsEnrollmentLabel(t *testing.T) {
	cases := map[requirements.EnrollmentKind]string{
		requirements.KindFirstEnrollment: "1ère Inscription",
		requirements.KindContinuing:      "Réinscription",
		requirements.KindGraduate:        "Réinscription",
		requirements.KindPrep:            "Réinscription",
	}
	for k, want := range cases {
		p := NewStudentProfile(nil)
		p.ApplyFacts(fullFacts(k))
		require.True(t, p.Advance(), k)
		assert.Equal(t, PhaseFillingForm, p.Phase)
		assert.Equal(t, StepPersonalInfo, p.CurrentStep)
		assert.Equal(t, want, p.FormData[FieldEnrollmentLabel])
	}
}

func TestAdvanceKeepsExistingEnrollmentLabel(t *testing.T) {
	p := NewStudentProfile(nil)
	p.ApplyFacts(fullFacts(requirements.KindFirstEnrollment))
	p.MergeFormData(map[string]any{FieldEnrollmentLabel: "Réinscription"})
	require.True(t, p.Advance())
	assert.Equal(t, "Réinscription", p.FormData[FieldEnrollmentLabel])
}

func TestAdvanceRecomputesStaleDocuments(t *testing.T) {
	p := NewStudentProfile(nil)
	p.ApplyFacts(fullFacts(requirements.KindFirstEnrollment))
	// simulate a fact changed without recomputation
	p.IsBoursier = boolPtr(true)
	require.True(t, p.Advance())
	assert.Contains(t, p.RequiredDocuments, requirements.DocScholarship)
}

func TestAdvanceAgainKeepsProgress(t *testing.T) {
	p := NewStudentProfile(nil)
	p.ApplyFacts(fullFacts(requirements.KindGraduate))
	require.True(t, p.Advance())
	p.SetProgress("identity", []string{StepPersonalInfo})
	before := p.UpdatedAt

	assert.True(t, p.Advance())
	assert.Equal(t, PhaseFillingForm, p.Phase)
	assert.Equal(t, "identity", p.CurrentStep)
	assert.Equal(t, before, p.UpdatedAt)
}

func TestMergeFormDataIdempotent(t *testing.T) {
	p := NewStudentProfile(nil)
	p.MergeFormData(map[string]any{"x": "1"})
	once := len(p.FormData)
	p.MergeFormData(map[string]any{"x": "1"})
	assert.Equal(t, once, len(p.FormData))
	assert.Equal(t, "1", p.FormData["x"])

	p.MergeFormData(map[string]any{"y": "2"})
	assert.Equal(t, "1", p.FormData["x"])
	assert.Equal(t, "2", p.FormData["y"])
}

func TestSetProgress(t *testing.T) {
	p := NewStudentProfile(nil)
	p.SetProgress("identity", []string{"start", "identity", "start"})
	assert.Equal(t, "identity", p.CurrentStep)
	assert.Equal(t, []string{"start", "identity"}, []string(p.CompletedSteps))

	p.SetProgress("", []string{"birth"})
	assert.Equal(t, "identity", p.CurrentStep)
	assert.Equal(t, []string{"start", "identity", "birth"}, []string(p.CompletedSteps))
}
