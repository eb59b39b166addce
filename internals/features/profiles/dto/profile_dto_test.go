package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscription_backend/internals/features/dossier/requirements"
	"inscription_backend/internals/helpers/apperr"
)

func TestParseFacts(t *testing.T) {
	d, err := ParseFacts(map[string]any{
		"inscription_type": " Master ",
		"is_boursier":      true,
		"has_jdc":          false,
	})
	require.NoError(t, err)

	f := d.ToFacts()
	require.NotNil(t, f.EnrollmentKind)
	assert.Equal(t, requirements.KindGraduate, *f.EnrollmentKind)
	assert.True(t, *f.Scholarship)
	assert.False(t, *f.HasMilitaryCertificate)
	assert.Nil(t, f.Minor)
	assert.Nil(t, f.EnrolledElsewhere)
}

func TestParseFactsTypeErrors(t *testing.T) {
	_, err := ParseFacts(map[string]any{
		"is_boursier":      "yes",
		"is_mineur":        nil,
		"inscription_type": 3.0,
		"favourite_colour": "blue",
	})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"must be a boolean"}, ve.Fields["is_boursier"])
	assert.Equal(t, []string{"must be a boolean"}, ve.Fields["is_mineur"])
	assert.Equal(t, []string{"must be a string"}, ve.Fields["inscription_type"])
	assert.Equal(t, []string{"unknown fact"}, ve.Fields["favourite_colour"])
}

func TestParseFactsUnknownKind(t *testing.T) {
	_, err := ParseFacts(map[string]any{"inscription_type": "reinscription"})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "InscriptionType", ve[0].Field())
}

func TestUpdateFormDataRequestValidate(t *testing.T) {
	d := UpdateFormDataRequest{}
	assert.Error(t, d.Validate())

	step := "  identity "
	d = UpdateFormDataRequest{FormData: map[string]any{"a": 1}, CurrentStep: &step, CompletedSteps: []string{" x "}}
	d.Sanitize()
	require.NoError(t, d.Validate())
	u := d.ToUpdate()
	assert.Equal(t, "identity", u.CurrentStep)
	assert.Equal(t, []string{"x"}, u.CompletedSteps)
}
