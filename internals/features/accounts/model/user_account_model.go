// file: internals/features/accounts/model/user_account_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserAccountModel merepresentasikan tabel user_accounts.
// Email unik dan case-sensitive; password boleh kosong (akun tanpa sandi).
type UserAccountModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:uq_user_accounts_email" json:"email"`
	PasswordHash *string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
	LastLoginAt  *time.Time `gorm:"type:timestamptz" json:"last_login_at,omitempty"`
}

func (UserAccountModel) TableName() string {
	return "user_accounts"
}

func NewUserAccount(email string, passwordHash *string) *UserAccountModel {
	return &UserAccountModel{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

func (a *UserAccountModel) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}
