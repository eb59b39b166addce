// file: internals/features/accounts/repository/account_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inscription_backend/internals/features/accounts/model"
	profileModel "inscription_backend/internals/features/profiles/model"
	profileRepo "inscription_backend/internals/features/profiles/repository"
	"inscription_backend/internals/helpers/apperr"
)

// 23505 = unique_violation (driver pgx maupun lib/pq)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Create(ctx context.Context, a *model.UserAccountModel) error {
	err := s.DB.WithContext(ctx).Create(a).Error
	if isUniqueViolation(err) {
		return apperr.Conflict("account " + a.Email)
	}
	return err
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*model.UserAccountModel, error) {
	var a model.UserAccountModel
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("account " + email)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&model.UserAccountModel{}).
		Where("id = ?", id).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.DB.WithContext(ctx).
		Model(&model.UserAccountModel{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// AttachProfile: satu transaksi. Akun dicari (FOR UPDATE) atau dibuat dari
// candidate kalau belum ada, lalu diverifikasi di baris yang sama; profil
// dicari atau dibuat lalu ditautkan. candidate nil berarti akun wajib sudah ada.
func (s *GormStore) AttachProfile(ctx context.Context, email string, sessionID uuid.UUID, candidate *model.UserAccountModel, verify func(*model.UserAccountModel) error) (*model.UserAccountModel, *profileModel.StudentProfileModel, error) {
	var (
		acct    model.UserAccountModel
		profile *profileModel.StudentProfileModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", email).
			First(&acct).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if candidate == nil {
				return apperr.NotFound("account " + email)
			}
			// retry yang bersamaan: yang kalah dapat unique violation
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(candidate).Error; err != nil {
				return err
			}
			if err := tx.Where("email = ?", email).First(&acct).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if verify != nil {
			if err := verify(&acct); err != nil {
				return err
			}
		}

		p, err := profileRepo.AttachToAccount(tx, sessionID, acct.ID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &acct, profile, nil
}

// Delete menghapus akun beserta semua profil miliknya.
func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := profileRepo.DeleteByAccount(tx, id); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.UserAccountModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("account " + id.String())
		}
		return nil
	})
}
