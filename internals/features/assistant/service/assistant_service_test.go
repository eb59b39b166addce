package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscription_backend/internals/features/dossier/catalog"
	"inscription_backend/internals/features/dossier/fieldtype"
	"inscription_backend/internals/helpers/apperr"
)

type fakeAnswerer struct {
	questions []string
	err       error
}

func (f *fakeAnswerer) Answer(_ context.Context, q string) (*Answer, error) {
	f.questions = append(f.questions, q)
	if f.err != nil {
		return nil, f.err
	}
	return &Answer{Answer: "ok", Sources: []Source{}}, nil
}

func newService(t *testing.T, a Answerer) *Service {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return New(a, cat, "Sciences Po Aix")
}

func TestFieldHelpCodedField(t *testing.T) {
	fa := &fakeAnswerer{}
	svc := newService(t, fa)

	h, err := svc.FieldHelp(context.Background(), "csp_etudiant_code")
	require.NoError(t, err)
	assert.Equal(t, "Code CSP étudiant", h.Label)
	assert.Equal(t, fieldtype.KindCodedReference, h.Type.Kind)
	assert.Equal(t, 5, h.Type.Annex)
	require.NotNil(t, h.Answer)

	require.Len(t, fa.questions, 1)
	q := fa.questions[0]
	assert.Contains(t, q, `"Code CSP étudiant" (ou "csp_etudiant_code")`)
	assert.Contains(t, q, "ANNEXE 5")
}

func TestFieldHelpPlainField(t *testing.T) {
	fa := &fakeAnswerer{}
	svc := newService(t, fa)

	h, err := svc.FieldHelp(context.Background(), "nom_naissance")
	require.NoError(t, err)
	assert.Equal(t, fieldtype.KindUppercase, h.Type.Kind)
	assert.NotContains(t, fa.questions[0], "\n5.")
}

func TestFieldHelpWithoutCorpus(t *testing.T) {
	svc := newService(t, &fakeAnswerer{err: fmt.Errorf("x: %w", apperr.ErrCorpusUnavailable)})

	h, err := svc.FieldHelp(context.Background(), "nom_naissance")
	require.NoError(t, err)
	assert.Nil(t, h.Answer)
	assert.Equal(t, "Texte en MAJUSCULES", h.Format)
}

func TestFieldHelpUnknownField(t *testing.T) {
	svc := newService(t, &fakeAnswerer{})
	_, err := svc.FieldHelp(context.Background(), "nope")
	assert.True(t, apperr.IsNotFound(err))
}

func TestCodesAndOverview(t *testing.T) {
	fa := &fakeAnswerer{}
	svc := newService(t, fa)
	ctx := context.Background()

	_, _ = svc.Codes(ctx, " CSP ")
	_, _ = svc.Codes(ctx, "")
	_, _ = svc.RequiredDocumentsOverview(ctx)

	assert.Equal(t, "Quels sont les codes pour CSP dans les annexes d'inscription?", fa.questions[0])
	assert.Equal(t, CodesQuestion(""), fa.questions[1])
	assert.Contains(t, fa.questions[2], "à Sciences Po Aix?")
}

func TestCorpusUnavailablePropagates(t *testing.T) {
	svc := newService(t, &fakeAnswerer{err: apperr.ErrCorpusUnavailable})
	_, err := svc.Codes(context.Background(), "")
	assert.Equal(t, 503, apperr.Status(err))
}
