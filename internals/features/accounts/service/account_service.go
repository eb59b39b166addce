// file: internals/features/accounts/service/account_service.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inscription_backend/internals/features/accounts/model"
	profileModel "inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/helpers/apperr"
)

// ErrBadCredentials is returned by Login for an unknown email or a wrong password.
var ErrBadCredentials = errors.New("invalid email or password")

// ErrTokensDisabled means no signing secret is configured.
var ErrTokensDisabled = errors.New("token signing disabled")

type AccountStore interface {
	Create(ctx context.Context, a *model.UserAccountModel) error
	FindByEmail(ctx context.Context, email string) (*model.UserAccountModel, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// AttachProfile runs verify on the account row it found or locked before
	// linking; a verify error aborts without side effects.
	AttachProfile(ctx context.Context, email string, sessionID uuid.UUID, candidate *model.UserAccountModel, verify func(*model.UserAccountModel) error) (*model.UserAccountModel, *profileModel.StudentProfileModel, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionLocker serialises writers of one profile session.
type SessionLocker interface {
	LockSession(id uuid.UUID) (unlock func())
}

type Service struct {
	store    AccountStore
	sessions SessionLocker
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func New(store AccountStore, sessions SessionLocker, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{store: store, sessions: sessions, secret: secret, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

type LoginResult struct {
	Account     *model.UserAccountModel `json:"account"`
	AccessToken string                  `json:"access_token"`
	ExpiresAt   time.Time               `json:"expires_at"`
}

/* ===================== Credentials ===================== */

func hashPassword(password string) (*string, error) {
	if password == "" {
		return nil, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	h := string(b)
	return &h, nil
}

// checkPassword: akun tanpa sandi selalu lolos.
func checkPassword(a *model.UserAccountModel, password string) bool {
	if !a.HasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(*a.PasswordHash), []byte(password)) == nil
}

// Register creates an account. The password is optional.
func (s *Service) Register(ctx context.Context, email, password string) (*model.UserAccountModel, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	a := model.NewUserAccount(email, hash)
	if err := s.store.Create(ctx, a); err != nil {
		return nil, apperr.Persistence("create account", err)
	}
	return a, nil
}

// Verify reports whether password opens the account.
func (s *Service) Verify(ctx context.Context, email, password string) (bool, error) {
	a, err := s.store.FindByEmail(ctx, email)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Persistence("find account", err)
	}
	return checkPassword(a, password), nil
}

func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.store.Exists(ctx, id)
}

/* ===================== Login ===================== */

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	a, err := s.store.FindByEmail(ctx, email)
	if apperr.IsNotFound(err) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, apperr.Persistence("find account", err)
	}
	if !checkPassword(a, password) {
		return nil, ErrBadCredentials
	}

	now := s.now()
	if err := s.store.TouchLogin(ctx, a.ID, now); err != nil {
		log.Printf("[ERROR] touch last login %s: %v", a.ID, err)
		return nil, apperr.Persistence("touch login", err)
	}
	a.LastLoginAt = &now

	token, exp, err := s.issueToken(a, now)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: a, AccessToken: token, ExpiresAt: exp}, nil
}

func (s *Service) issueToken(a *model.UserAccountModel, now time.Time) (string, time.Time, error) {
	if s.secret == "" {
		return "", time.Time{}, ErrTokensDisabled
	}
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"typ":   "access",
		"sub":   a.ID.String(),
		"id":    a.ID.String(),
		"email": a.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

/* ===================== Profiles ===================== */

// AttachProfile links sessionID to the account registered under email,
// creating the account (with password) and the profile when missing.
// An existing account with a password requires that password; the check runs
// on the row the store holds inside its transaction. Safe to retry.
func (s *Service) AttachProfile(ctx context.Context, email string, sessionID uuid.UUID, password string) (*model.UserAccountModel, *profileModel.StudentProfileModel, error) {
	var candidate *model.UserAccountModel
	_, err := s.store.FindByEmail(ctx, email)
	switch {
	case apperr.IsNotFound(err):
		hash, err := hashPassword(password)
		if err != nil {
			return nil, nil, err
		}
		candidate = model.NewUserAccount(email, hash)
	case err != nil:
		return nil, nil, apperr.Persistence("find account", err)
	}

	verify := func(a *model.UserAccountModel) error {
		if candidate != nil && a.ID == candidate.ID {
			return nil
		}
		if !checkPassword(a, password) {
			return ErrBadCredentials
		}
		return nil
	}

	if s.sessions != nil {
		unlock := s.sessions.LockSession(sessionID)
		defer unlock()
	}

	a, p, err := s.store.AttachProfile(ctx, email, sessionID, candidate, verify)
	if errors.Is(err, ErrBadCredentials) {
		return nil, nil, ErrBadCredentials
	}
	if err != nil {
		return nil, nil, apperr.Persistence("attach profile", err)
	}
	return a, p, nil
}

// Delete removes the account and every profile it owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return apperr.Persistence("delete account", s.store.Delete(ctx, id))
}
