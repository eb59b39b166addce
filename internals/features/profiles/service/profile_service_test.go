package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscription_backend/internals/features/dossier/catalog"
	"inscription_backend/internals/features/dossier/requirements"
	"inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/features/profiles/repository"
	"inscription_backend/internals/helpers/apperr"
)

func newService(t *testing.T) (*Service, *repository.MemoryStore) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	return New(store, cat), store
}

func b(v bool) *bool { return &v }

func kind(k requirements.EnrollmentKind) *requirements.EnrollmentKind { return &k }

func allFacts() requirements.Facts {
	return requirements.Facts{
		EnrollmentKind:         kind(requirements.KindFirstEnrollment),
		Scholarship:            b(false),
		Minor:                  b(false),
		EnrolledElsewhere:      b(false),
		HasMilitaryCertificate: b(false),
	}
}

func TestStartAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseCollectingFacts, p.Phase)

	got, err := svc.Get(ctx, p.SessionID)
	require.NoError(t, err)
	assert.Equal(t, p.SessionID, got.SessionID)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateFactsReportsProgress(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.Start(ctx, nil)

	res, err := svc.UpdateFacts(ctx, p.SessionID, requirements.Facts{EnrollmentKind: kind(requirements.KindGraduate)})
	require.NoError(t, err)
	assert.False(t, res.Phase1Complete)
	assert.Equal(t, []string{"is_boursier", "is_mineur", "inscrit_autre_etablissement", "has_jdc"}, res.MissingFacts)
	assert.Contains(t, res.RequiredDocuments, requirements.DocAuthorization)

	res, err = svc.UpdateFacts(ctx, p.SessionID, requirements.Facts{
		Scholarship:            b(true),
		Minor:                  b(false),
		EnrolledElsewhere:      b(false),
		HasMilitaryCertificate: b(true),
	})
	require.NoError(t, err)
	assert.True(t, res.Phase1Complete)
	assert.Equal(t, model.PhaseCollectingFacts, res.Profile.Phase, "fact updates never advance")
	assert.Contains(t, res.RequiredDocuments, requirements.DocScholarship)

	stored, _ := svc.Get(ctx, p.SessionID)
	assert.Equal(t, res.RequiredDocuments, []string(stored.RequiredDocuments))
}

func TestUpdateFactsRejectsUnknownKind(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.Start(ctx, nil)

	_, err := svc.UpdateFacts(ctx, p.SessionID, requirements.Facts{EnrollmentKind: kind("reinscription")})
	assert.True(t, apperr.IsValidation(err))
}

func TestAdvanceGuard(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.Start(ctx, nil)

	f := allFacts()
	f.Scholarship = nil
	_, err := svc.UpdateFacts(ctx, p.SessionID, f)
	require.NoError(t, err)

	got, advanced, err := svc.Advance(ctx, p.SessionID)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, model.PhaseCollectingFacts, got.Phase)

	stored, _ := svc.Get(ctx, p.SessionID)
	assert.Equal(t, model.PhaseCollectingFacts, stored.Phase)

	_, err = svc.UpdateFacts(ctx, p.SessionID, requirements.Facts{Scholarship: b(false)})
	require.NoError(t, err)
	got, advanced, err = svc.Advance(ctx, p.SessionID)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, model.PhaseFillingForm, got.Phase)
	assert.Equal(t, "1ère Inscription", got.FormData["type_inscription"])
	assert.Len(t, got.RequiredDocuments, 7)
}

func advancedProfile(t *testing.T, svc *Service) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	p, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	_, err = svc.UpdateFacts(ctx, p.SessionID, allFacts())
	require.NoError(t, err)
	_, ok, err := svc.Advance(ctx, p.SessionID)
	require.NoError(t, err)
	require.True(t, ok)
	return p.SessionID
}

func TestUpdateFormDataRequiresFillingPhase(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.Start(ctx, nil)

	_, err := svc.UpdateFormData(ctx, p.SessionID, FormDataUpdate{Data: map[string]any{"nom_naissance": "DUPONT"}})
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = svc.MissingFields(ctx, p.SessionID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestUpdateFormDataRejectsUnknownKeys(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := advancedProfile(t, svc)

	_, err := svc.UpdateFormData(ctx, id, FormDataUpdate{Data: map[string]any{"nom_naissance": "DUPONT", "nom": "x", "age": 3}})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
	assert.Contains(t, ve.Fields, "nom")
	assert.Contains(t, ve.Fields, "age")

	stored, _ := svc.Get(ctx, id)
	assert.NotContains(t, stored.FormData, "nom_naissance", "rejected patch is not partially applied")
}

func TestUpdateFormDataMergesAndTracksCompletion(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := advancedProfile(t, svc)

	st, err := svc.UpdateFormData(ctx, id, FormDataUpdate{
		Data:           map[string]any{"nom_naissance": "DUPONT"},
		CurrentStep:    "identity",
		CompletedSteps: []string{"personal_info"},
	})
	require.NoError(t, err)
	assert.False(t, st.FormCompleted)
	require.NotNil(t, st.NextField)
	assert.Equal(t, "prenom_1", *st.NextField)
	assert.Equal(t, "identity", st.CurrentStep)
	assert.Equal(t, []string{"personal_info"}, st.CompletedSteps)

	again, err := svc.UpdateFormData(ctx, id, FormDataUpdate{Data: map[string]any{"nom_naissance": "DUPONT"}})
	require.NoError(t, err)
	assert.Equal(t, st.TotalMissing, again.TotalMissing)

	cat, _ := catalog.Default()
	rest := map[string]any{}
	for _, name := range cat.AllRequiredFieldNames(nil) {
		rest[name] = "ok"
	}
	done, err := svc.UpdateFormData(ctx, id, FormDataUpdate{Data: rest})
	require.NoError(t, err)
	assert.True(t, done.FormCompleted)
	assert.Nil(t, done.NextField)
	assert.Empty(t, done.MissingFields)

	stored, _ := svc.Get(ctx, id)
	assert.True(t, stored.FormCompleted)
	assert.Equal(t, "ok", stored.FormData["nom_naissance"])
}

func TestMissingFieldsView(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := advancedProfile(t, svc)

	v, err := svc.MissingFields(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, v.NextField)
	// section 1 was backfilled on advance
	assert.Equal(t, "nom_naissance", *v.NextField)
	assert.Equal(t, 2, v.Sections[0].Number)
	assert.Equal(t, len(v.MissingFields), v.TotalMissing)
}

func TestSaveFailureIsReported(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p, _ := svc.Start(ctx, nil)

	store.FailSave = errors.New("disk full")
	_, err := svc.UpdateFacts(ctx, p.SessionID, allFacts())
	assert.True(t, apperr.IsPersistence(err))

	store.FailSave = nil
	stored, _ := svc.Get(ctx, p.SessionID)
	assert.Nil(t, stored.InscriptionType)
}

func TestAdvanceTwiceKeepsCurrentStep(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := advancedProfile(t, svc)

	_, err := svc.UpdateFormData(ctx, id, FormDataUpdate{Data: map[string]any{"nom_naissance": "DUPONT"}, CurrentStep: "identity"})
	require.NoError(t, err)

	got, advanced, err := svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, "identity", got.CurrentStep)

	stored, _ := svc.Get(ctx, id)
	assert.Equal(t, "identity", stored.CurrentStep)
}

// pausedSave blocks the first Save until release is closed.
type pausedSave struct {
	*repository.MemoryStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (p *pausedSave) Save(ctx context.Context, m *model.StudentProfileModel) error {
	p.once.Do(func() {
		close(p.entered)
		<-p.release
	})
	return p.MemoryStore.Save(ctx, m)
}

func TestPurgeDuringMutationIsNotUndone(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	ctx := context.Background()
	store := &pausedSave{MemoryStore: repository.NewMemoryStore(), entered: make(chan struct{}), release: make(chan struct{})}
	svc := New(store, cat)

	p, err := svc.Start(ctx, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.UpdateFacts(ctx, p.SessionID, allFacts())
		done <- err
	}()
	<-store.entered

	n, err := svc.PurgeStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	close(store.release)

	assert.True(t, apperr.IsNotFound(<-done))
	_, err = svc.Get(ctx, p.SessionID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestLockSessionSerialisesWithMutations(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.Start(ctx, nil)

	unlock := svc.LockSession(p.SessionID)
	done := make(chan struct{})
	go func() {
		_, _ = svc.UpdateFacts(ctx, p.SessionID, allFacts())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("mutation ran while the session was locked")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	<-done
	assert.Zero(t, svc.locks.size())
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.Start(ctx, nil)

	require.NoError(t, svc.Delete(ctx, p.SessionID))
	assert.True(t, apperr.IsNotFound(svc.Delete(ctx, p.SessionID)))
}

func TestListByAccountAndPurge(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	acc := uuid.New()

	owned, _ := svc.Start(ctx, &acc)
	anon, _ := svc.Start(ctx, nil)

	rows, total, err := svc.ListByAccount(ctx, acc, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, owned.SessionID, rows[0].SessionID)

	n, err := svc.PurgeStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = svc.Get(ctx, anon.SessionID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = svc.Get(ctx, owned.SessionID)
	assert.NoError(t, err)
}

func TestConcurrentMergesAreSerialised(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := advancedProfile(t, svc)

	keys := []string{"nom_naissance", "prenom_1", "numero_ines", "date_naissance", "sexe", "ville_naissance", "bac_ville", "ville"}
	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_, err := svc.UpdateFormData(ctx, id, FormDataUpdate{Data: map[string]any{k: "v"}})
			assert.NoError(t, err)
		}(k)
	}
	wg.Wait()

	stored, _ := svc.Get(ctx, id)
	for _, k := range keys {
		assert.Equal(t, "v", stored.FormData[k], k)
	}
	assert.Zero(t, svc.locks.size())
}
