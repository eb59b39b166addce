package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscription_backend/internals/helpers/apperr"
)

var docs = []string{"Photo d'identité", "Copie pièce d'identité"}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"csv", FormatCSV, true},
		{" CSV ", FormatCSV, true},
		{"", FormatCSV, true},
		{"Email", FormatEmail, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if !tt.ok {
			assert.True(t, apperr.IsValidation(err), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCSV(t *testing.T) {
	now := time.Date(2025, 9, 3, 10, 0, 0, 0, time.UTC)
	out, err := CSV(docs, StudentInfo{LastName: "DUPONT", FirstName: "Marie", EnrollmentLabel: "1ère Inscription"}, now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	assert.Equal(t, "DOCUMENTS À FOURNIR - SCIENCES PO AIX", lines[0])
	assert.Equal(t, "Étudiant:;DUPONT Marie", lines[2])
	assert.Equal(t, "Type d'inscription:;1ère Inscription", lines[3])
	assert.Equal(t, "Numéro;Document", lines[5])
	assert.Equal(t, "1;Photo d'identité", lines[7])
	assert.Equal(t, "2;Copie pièce d'identité", lines[8])
	assert.Equal(t, "Généré le;03/09/2025", lines[10])
	assert.Equal(t, "Source;Agent d'inscription Sciences Po Aix", lines[11])
}

func TestCSVWithoutStudentBlock(t *testing.T) {
	out, err := CSV(docs, StudentInfo{Institution: "IEP Lyon"}, time.Now())
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "DOCUMENTS À FOURNIR - IEP LYON\n"))
	assert.NotContains(t, s, "Étudiant:")
}

func TestEmail(t *testing.T) {
	e, err := EmailOf(docs, StudentInfo{})
	require.NoError(t, err)
	assert.Equal(t, "Documents à fournir - Sciences Po Aix", e.Subject)
	assert.Contains(t, e.Body, "1. Photo d'identité\n2. Copie pièce d'identité\n")
	assert.True(t, strings.HasSuffix(e.Body, "Cordialement"))
}

func TestEmptyListRejected(t *testing.T) {
	_, err := CSV(nil, StudentInfo{}, time.Now())
	assert.True(t, apperr.IsValidation(err))
	_, err = EmailOf([]string{}, StudentInfo{})
	assert.True(t, apperr.IsValidation(err))
}
