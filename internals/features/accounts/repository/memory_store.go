package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"inscription_backend/internals/features/accounts/model"
	profileModel "inscription_backend/internals/features/profiles/model"
	profileRepo "inscription_backend/internals/features/profiles/repository"
	"inscription_backend/internals/helpers/apperr"
)

// MemoryStore keeps accounts in process memory and cascades to an
// in-memory profile store.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*model.UserAccountModel
	profiles *profileRepo.MemoryStore
}

func NewMemoryStore(profiles *profileRepo.MemoryStore) *MemoryStore {
	return &MemoryStore{byID: make(map[uuid.UUID]*model.UserAccountModel), profiles: profiles}
}

func cloneAccount(a *model.UserAccountModel) *model.UserAccountModel {
	out := *a
	if a.PasswordHash != nil {
		h := *a.PasswordHash
		out.PasswordHash = &h
	}
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		out.LastLoginAt = &t
	}
	return &out
}

func (s *MemoryStore) findLocked(email string) *model.UserAccountModel {
	for _, a := range s.byID {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (s *MemoryStore) Create(_ context.Context, a *model.UserAccountModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(a.Email) != nil {
		return apperr.Conflict("account " + a.Email)
	}
	s.byID[a.ID] = cloneAccount(a)
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*model.UserAccountModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findLocked(email)
	if a == nil {
		return nil, apperr.NotFound("account " + email)
	}
	return cloneAccount(a), nil
}

func (s *MemoryStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	return ok, nil
}

func (s *MemoryStore) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return apperr.NotFound("account " + id.String())
	}
	a.LastLoginAt = &at
	return nil
}

func (s *MemoryStore) AttachProfile(_ context.Context, email string, sessionID uuid.UUID, candidate *model.UserAccountModel, verify func(*model.UserAccountModel) error) (*model.UserAccountModel, *profileModel.StudentProfileModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findLocked(email)
	created := false
	if a == nil {
		if candidate == nil {
			return nil, nil, apperr.NotFound("account " + email)
		}
		a = cloneAccount(candidate)
		created = true
	}
	if verify != nil {
		if err := verify(cloneAccount(a)); err != nil {
			return nil, nil, err
		}
	}
	if created {
		s.byID[a.ID] = a
	}
	p := s.profiles.Attach(sessionID, a.ID)
	return cloneAccount(a), p, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return apperr.NotFound("account " + id.String())
	}
	s.profiles.DeleteByAccount(id)
	delete(s.byID, id)
	return nil
}
