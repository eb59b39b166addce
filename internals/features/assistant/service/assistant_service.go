package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inscription_backend/internals/features/dossier/catalog"
	"inscription_backend/internals/features/dossier/fieldtype"
	"inscription_backend/internals/helpers/apperr"
)

type Service struct {
	answerer    Answerer
	cat         *catalog.Catalog
	types       *fieldtype.Classifier
	institution string
}

func New(answerer Answerer, cat *catalog.Catalog, institution string) *Service {
	return &Service{
		answerer:    answerer,
		cat:         cat,
		types:       fieldtype.NewClassifier(cat),
		institution: institution,
	}
}

func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	return s.answerer.Answer(ctx, question)
}

// FieldHelp bundles what the catalog knows about a field with the
// assistant's answer. Answer is nil when no corpus is loaded.
type FieldHelp struct {
	Field       string              `json:"field"`
	Label       string              `json:"label"`
	Section     int                 `json:"section"`
	SectionName string              `json:"section_name"`
	Type        fieldtype.FieldType `json:"type"`
	Required    bool                `json:"required"`
	Format      string              `json:"format,omitempty"`
	Options     []string            `json:"options,omitempty"`
	Condition   string              `json:"condition,omitempty"`
	Help        string              `json:"help,omitempty"`
	WhereToFind string              `json:"where_to_find,omitempty"`
	Note        string              `json:"note,omitempty"`
	Question    string              `json:"question"`
	Answer      *Answer             `json:"answer"`
}

// FieldQuestion composes the question sent for a field.
func FieldQuestion(name, label string, ft fieldtype.FieldType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dans le dossier d'inscription administrative, pour le champ \"%s\" (ou \"%s\") :\n", label, name)
	b.WriteString("1. Quel est le format exact attendu (nombre de caractères, type de données, etc.) ?\n")
	b.WriteString("2. Où l'étudiant peut-il trouver cette information ?\n")
	b.WriteString("3. Y a-t-il des conditions particulières (par exemple : uniquement pour réinscription, uniquement pour bacheliers, etc.) ?\n")
	b.WriteString("4. Quelles sont les instructions spécifiques données dans le dossier d'inscription pour ce champ ?")
	switch {
	case ft.IsCoded() && ft.Annex > 0:
		fmt.Fprintf(&b, "\n5. IMPORTANT : Ce champ nécessite un CODE depuis l'ANNEXE %d. Quels sont les codes disponibles dans l'annexe %d pour ce champ ? Liste les codes avec leurs descriptions pour aider l'étudiant à choisir.", ft.Annex, ft.Annex)
	case ft.IsCoded():
		b.WriteString("\n5. IMPORTANT : Ce champ nécessite un CODE depuis une ANNEXE. Quelle annexe contient les codes pour ce champ ? Liste les codes disponibles avec leurs descriptions.")
	}
	b.WriteString("\n\nDonne-moi toutes les informations utiles du dossier d'inscription pour aider l'étudiant à remplir ce champ correctement.")
	return b.String()
}

func (s *Service) FieldHelp(ctx context.Context, name string) (*FieldHelp, error) {
	f, ok := s.cat.Field(name)
	if !ok {
		return nil, apperr.NotFound("field " + name)
	}
	sec, _ := s.cat.SectionForField(name)
	ft, _ := s.types.TypeOf(name)
	label := catalog.Label(name)

	h := &FieldHelp{
		Field:       name,
		Label:       label,
		Section:     sec.Number,
		SectionName: sec.Name,
		Type:        ft,
		Required:    f.Required,
		Format:      f.Format,
		Options:     f.Options,
		Condition:   f.Condition,
		Help:        f.Help,
		WhereToFind: f.WhereToFind,
		Note:        f.Note,
		Question:    FieldQuestion(name, label, ft),
	}

	ans, err := s.answerer.Answer(ctx, h.Question)
	switch {
	case err == nil:
		h.Answer = ans
	case errors.Is(err, apperr.ErrCorpusUnavailable):
		// catalog data alone is still useful
	default:
		return nil, err
	}
	return h, nil
}

// CodesQuestion composes the annex-codes question; category may be empty.
func CodesQuestion(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return fmt.Sprintf("Quels sont les codes pour %s dans les annexes d'inscription?", c)
	}
	return "Liste tous les codes disponibles dans les annexes d'inscription administrative avec leurs descriptions"
}

func (s *Service) Codes(ctx context.Context, category string) (*Answer, error) {
	return s.answerer.Answer(ctx, CodesQuestion(category))
}

func (s *Service) RequiredDocumentsOverview(ctx context.Context) (*Answer, error) {
	q := fmt.Sprintf("Quelle est la liste complète des pièces à fournir pour l'inscription administrative à %s?", s.institution)
	return s.answerer.Answer(ctx, q)
}
