// file: internals/features/accounts/dto/account_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"inscription_backend/internals/features/accounts/model"
)

var validate = validator.New()

/* =========================
 * Request DTO
 * ========================= */

// CreateAccountRequest: password opsional.
type CreateAccountRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}

func (r *CreateAccountRequest) Sanitize() { r.Email = strings.TrimSpace(r.Email) }

func (r *CreateAccountRequest) Validate() error { return validate.Struct(r) }

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"max=72"`
}

func (r *LoginRequest) Sanitize() { r.Email = strings.TrimSpace(r.Email) }

func (r *LoginRequest) Validate() error { return validate.Struct(r) }

type SaveProfileRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Password  string `json:"password" validate:"max=72"`
}

func (r *SaveProfileRequest) Sanitize() { r.SessionID = strings.TrimSpace(r.SessionID) }

func (r *SaveProfileRequest) Validate() error { return validate.Struct(r) }

// ValidateEmail checks an email taken from the path.
func ValidateEmail(email string) error {
	return validate.Var(email, "required,email,max=255")
}

/* =========================
 * Response DTO
 * ========================= */

type AccountResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	HasPassword bool       `json:"has_password"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func FromModel(a *model.UserAccountModel) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		HasPassword: a.HasPassword(),
		CreatedAt:   a.CreatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

type LoginResponse struct {
	Account     AccountResponse `json:"account"`
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
}
