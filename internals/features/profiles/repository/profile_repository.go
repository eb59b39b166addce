// file: internals/features/profiles/repository/profile_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inscription_backend/internals/features/profiles/model"
	"inscription_backend/internals/helpers/apperr"
)

// GormStore menyimpan profil di tabel student_profiles.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Create(ctx context.Context, p *model.StudentProfileModel) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *GormStore) Load(ctx context.Context, sessionID uuid.UUID) (*model.StudentProfileModel, error) {
	var p model.StudentProfileModel
	err := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("profile " + sessionID.String())
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// kolom yang ditulis Save. account_id sengaja tidak ada: hanya
// AttachToAccount / DeleteByAccount yang boleh mengubahnya.
var saveColumns = []string{
	"phase",
	"inscription_type",
	"is_boursier",
	"is_mineur",
	"inscrit_autre_etablissement",
	"has_jdc",
	"required_documents",
	"form_data",
	"form_completed",
	"current_step",
	"completed_steps",
	"updated_at",
}

// Save = satu statement UPDATE, jadi record selalu terganti utuh atau tidak
// sama sekali. Baris yang sudah terhapus (purge, hapus akun) tidak dihidupkan
// lagi: hasilnya NotFound.
func (s *GormStore) Save(ctx context.Context, p *model.StudentProfileModel) error {
	res := s.DB.WithContext(ctx).
		Model(p).
		Where("session_id = ?", p.SessionID).
		Select(saveColumns).
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("profile " + p.SessionID.String())
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&model.StudentProfileModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("profile " + sessionID.String())
	}
	return nil
}

func (s *GormStore) LoadByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]model.StudentProfileModel, int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&model.StudentProfileModel{}).
		Where("account_id = ?", accountID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.StudentProfileModel
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// PurgeStale menghapus sesi anonim (tanpa akun) yang tidak disentuh sejak before.
func (s *GormStore) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("account_id IS NULL AND updated_at < ?", before).
		Delete(&model.StudentProfileModel{})
	return res.RowsAffected, res.Error
}

// AttachToAccount mengaitkan profil ke akun di dalam transaksi tx yang sudah
// dibuka pemanggil. Profil yang belum ada dibuat baru dengan session id tsb.
// Baris dikunci FOR UPDATE agar retry yang bersamaan tidak saling timpa.
func AttachToAccount(tx *gorm.DB, sessionID, accountID uuid.UUID) (*model.StudentProfileModel, error) {
	var p model.StudentProfileModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", sessionID).
		First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		np := model.NewStudentProfile(&accountID)
		np.SessionID = sessionID
		if err := tx.Create(np).Error; err != nil {
			return nil, err
		}
		return np, nil
	case err != nil:
		return nil, err
	}

	if p.AccountID != nil && *p.AccountID == accountID {
		return &p, nil
	}
	p.AccountID = &accountID
	p.UpdatedAt = time.Now().UTC()
	if err := tx.Model(&model.StudentProfileModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{"account_id": accountID, "updated_at": p.UpdatedAt}).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteByAccount menghapus semua profil milik akun, di dalam tx pemanggil.
func DeleteByAccount(tx *gorm.DB, accountID uuid.UUID) (int64, error) {
	res := tx.Where("account_id = ?", accountID).Delete(&model.StudentProfileModel{})
	return res.RowsAffected, res.Error
}
