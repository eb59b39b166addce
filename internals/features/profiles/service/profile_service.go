// file: internals/features/profiles/service/profile_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"inscription_backend/internals/features/dossier/catalog"
	"inscription_backend/internals/features/dossier/completeness"
	"inscription_backend/internals/features/dossier/requirements"
	"inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/helpers/apperr"
)

// ProfileStore is the persistence contract for student profiles. Load
// returns an apperr NotFound error for unknown sessions. Save fully replaces
// an existing record except its account link, or fails without partial
// effect; a record deleted in the meantime yields NotFound.
type ProfileStore interface {
	Create(ctx context.Context, p *model.StudentProfileModel) error
	Load(ctx context.Context, sessionID uuid.UUID) (*model.StudentProfileModel, error)
	Save(ctx context.Context, p *model.StudentProfileModel) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	LoadByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]model.StudentProfileModel, int64, error)
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}

type Service struct {
	store ProfileStore
	cat   *catalog.Catalog
	locks *sessionLocks
}

func New(store ProfileStore, cat *catalog.Catalog) *Service {
	return &Service{store: store, cat: cat, locks: newSessionLocks()}
}

/* ===================== Results ===================== */

type FactsResult struct {
	Profile           *model.StudentProfileModel `json:"profile"`
	Phase1Complete    bool                       `json:"phase1_complete"`
	MissingFacts      []string                   `json:"missing_facts,omitempty"`
	RequiredDocuments []string                   `json:"required_documents"`
}

type FormStatus struct {
	FormCompleted  bool     `json:"form_completed"`
	MissingFields  []string `json:"missing_fields"`
	NextField      *string  `json:"next_field"`
	TotalMissing   int      `json:"total_missing"`
	CurrentStep    string   `json:"current_step"`
	CompletedSteps []string `json:"completed_steps"`
}

type MissingFieldsView struct {
	MissingFields []string                      `json:"missing_fields"`
	NextField     *string                       `json:"next_field"`
	TotalMissing  int                           `json:"total_missing"`
	Sections      []completeness.MissingSection `json:"sections"`
}

// FormDataUpdate is a partial form-data patch with optional progress markers.
type FormDataUpdate struct {
	Data           map[string]any
	CurrentStep    string
	CompletedSteps []string
}

/* ===================== Lifecycle ===================== */

func (s *Service) Start(ctx context.Context, accountID *uuid.UUID) (*model.StudentProfileModel, error) {
	p := model.NewStudentProfile(accountID)
	if err := s.store.Create(ctx, p); err != nil {
		return nil, apperr.Persistence("create profile", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.StudentProfileModel, error) {
	p, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("load profile", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.lock(id)
	defer unlock()
	return apperr.Persistence("delete profile", s.store.Delete(ctx, id))
}

func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]model.StudentProfileModel, int64, error) {
	rows, total, err := s.store.LoadByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence("list profiles", err)
	}
	return rows, total, nil
}

// LockSession holds the per-session lock used by every profile mutation.
// Other writers of a profile row (account linking) take it too.
func (s *Service) LockSession(id uuid.UUID) (unlock func()) {
	return s.locks.lock(id)
}

// mutate loads, applies fn and saves under the session lock. fn returning
// false skips the save.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(p *model.StudentProfileModel) (bool, error)) (*model.StudentProfileModel, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	p, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("load profile", err)
	}
	save, err := fn(p)
	if err != nil {
		return nil, err
	}
	if !save {
		return p, nil
	}
	if err := s.store.Save(ctx, p); err != nil {
		log.Printf("[ERROR] save profile %s: %v", id, err)
		return nil, apperr.Persistence("save profile", err)
	}
	return p, nil
}

/* ===================== Phase 1 ===================== */

// UpdateFacts records the answered facts and recomputes the document list.
// It never changes the phase.
func (s *Service) UpdateFacts(ctx context.Context, id uuid.UUID, patch requirements.Facts) (*FactsResult, error) {
	if patch.EnrollmentKind != nil && !patch.EnrollmentKind.Valid() {
		return nil, apperr.Invalid("inscription_type", fmt.Sprintf("unknown enrollment kind %q", *patch.EnrollmentKind))
	}
	p, err := s.mutate(ctx, id, func(p *model.StudentProfileModel) (bool, error) {
		p.ApplyFacts(patch)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	facts := p.Facts()
	return &FactsResult{
		Profile:           p,
		Phase1Complete:    facts.Complete(),
		MissingFacts:      facts.Missing(),
		RequiredDocuments: append([]string(nil), p.RequiredDocuments...),
	}, nil
}

// Advance requests the move to form filling. advanced is false, with a nil
// error, when a fact is still unanswered.
func (s *Service) Advance(ctx context.Context, id uuid.UUID) (*model.StudentProfileModel, bool, error) {
	advanced := false
	p, err := s.mutate(ctx, id, func(p *model.StudentProfileModel) (bool, error) {
		already := p.Phase == model.PhaseFillingForm
		advanced = p.Advance()
		return advanced && !already, nil
	})
	if err != nil {
		return nil, false, err
	}
	return p, advanced, nil
}

/* ===================== Phase 2 ===================== */

// UpdateFormData merges a partial form into the profile. Keys must be known
// catalog fields and the profile must already be filling the form.
func (s *Service) UpdateFormData(ctx context.Context, id uuid.UUID, upd FormDataUpdate) (*FormStatus, error) {
	if unknown := s.unknownKeys(upd.Data); len(unknown) > 0 {
		ve := apperr.NewValidation()
		for _, k := range unknown {
			ve.Add(k, "unknown form field")
		}
		return nil, ve
	}

	p, err := s.mutate(ctx, id, func(p *model.StudentProfileModel) (bool, error) {
		if p.Phase != model.PhaseFillingForm {
			return false, fmt.Errorf("form data before facts are complete: %w", apperr.ErrInvalidTransition)
		}
		p.MergeFormData(upd.Data)
		p.SetProgress(upd.CurrentStep, upd.CompletedSteps)
		p.FormCompleted = completeness.IsComplete(s.cat, p.FormMap())
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	missing := completeness.MissingFieldNames(s.cat, p.FormMap())
	return &FormStatus{
		FormCompleted:  p.FormCompleted,
		MissingFields:  nonNil(missing),
		NextField:      firstOrNil(missing),
		TotalMissing:   len(missing),
		CurrentStep:    p.CurrentStep,
		CompletedSteps: append([]string{}, p.CompletedSteps...),
	}, nil
}

// MissingFields lists what is still to fill, in presentation order.
func (s *Service) MissingFields(ctx context.Context, id uuid.UUID) (*MissingFieldsView, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Phase != model.PhaseFillingForm {
		return nil, fmt.Errorf("missing fields before facts are complete: %w", apperr.ErrInvalidTransition)
	}
	sections := completeness.MissingSections(s.cat, p.FormMap())
	var names []string
	for _, m := range sections {
		names = append(names, m.MissingFields...)
	}
	if sections == nil {
		sections = []completeness.MissingSection{}
	}
	return &MissingFieldsView{
		MissingFields: nonNil(names),
		NextField:     firstOrNil(names),
		TotalMissing:  len(names),
		Sections:      sections,
	}, nil
}

/* ===================== Housekeeping ===================== */

// PurgeStale deletes anonymous profiles untouched since before.
func (s *Service) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.store.PurgeStale(ctx, before)
	return n, apperr.Persistence("purge stale profiles", err)
}

func (s *Service) unknownKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return s.cat.UnknownFields(keys)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstOrNil(s []string) *string {
	if len(s) == 0 {
		return nil
	}
	v := s[0]
	return &v
}
