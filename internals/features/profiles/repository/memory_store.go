package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/helpers/apperr"
)

// MemoryStore keeps profiles in process memory. Records are deep-copied on
// the way in and out so callers never share state with the store. Save only
// updates existing rows and never changes the owning account.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*model.StudentProfileModel

	// FailSave makes Save fail with the given error when set.
	FailSave error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]*model.StudentProfileModel)}
}

func cloneProfile(p *model.StudentProfileModel) *model.StudentProfileModel {
	out := *p
	if p.AccountID != nil {
		id := *p.AccountID
		out.AccountID = &id
	}
	if p.InscriptionType != nil {
		k := *p.InscriptionType
		out.InscriptionType = &k
	}
	out.IsBoursier = copyBool(p.IsBoursier)
	out.IsMineur = copyBool(p.IsMineur)
	out.InscritAutreEtablissement = copyBool(p.InscritAutreEtablissement)
	out.HasJDC = copyBool(p.HasJDC)
	out.RequiredDocuments = append(out.RequiredDocuments[:0:0], p.RequiredDocuments...)
	out.CompletedSteps = append(out.CompletedSteps[:0:0], p.CompletedSteps...)
	out.FormData = nil
	if p.FormData != nil {
		// JSON round trip gives the same value shapes a jsonb column would.
		b, err := json.Marshal(p.FormData)
		if err == nil {
			_ = json.Unmarshal(b, &out.FormData)
		}
	}
	return &out
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func (s *MemoryStore) Create(_ context.Context, p *model.StudentProfileModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.rows[p.SessionID]; dup {
		return apperr.Conflict("profile " + p.SessionID.String())
	}
	s.rows[p.SessionID] = cloneProfile(p)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id uuid.UUID) (*model.StudentProfileModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("profile " + id.String())
	}
	return cloneProfile(p), nil
}

func (s *MemoryStore) Save(_ context.Context, p *model.StudentProfileModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	cur, ok := s.rows[p.SessionID]
	if !ok {
		return apperr.NotFound("profile " + p.SessionID.String())
	}
	next := cloneProfile(p)
	next.AccountID = cur.AccountID
	s.rows[p.SessionID] = next
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("profile " + id.String())
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryStore) LoadByAccount(_ context.Context, accountID uuid.UUID, limit, offset int) ([]model.StudentProfileModel, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []model.StudentProfileModel
	for _, p := range s.rows {
		if p.AccountID != nil && *p.AccountID == accountID {
			all = append(all, *cloneProfile(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *MemoryStore) PurgeStale(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.rows {
		if p.AccountID == nil && p.UpdatedAt.Before(before) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

// Attach links a profile to an account, creating the profile when missing.
func (s *MemoryStore) Attach(sessionID, accountID uuid.UUID) *model.StudentProfileModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[sessionID]
	if !ok {
		p = model.NewStudentProfile(&accountID)
		p.SessionID = sessionID
		s.rows[sessionID] = p
		return cloneProfile(p)
	}
	id := accountID
	p.AccountID = &id
	return cloneProfile(p)
}

// DeleteByAccount removes every profile owned by the account.
func (s *MemoryStore) DeleteByAccount(accountID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.rows {
		if p.AccountID != nil && *p.AccountID == accountID {
			delete(s.rows, id)
			n++
		}
	}
	return n
}
