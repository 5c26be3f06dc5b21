// Package repo – Specialization repository.
//
// Name uniqueness is scoped to active rows, which a plain DB unique index
// cannot express (a deleted specialization may share its name with a live
// one). CountActiveSpecializationsByName supports the service-level check.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// CreateSpecialization inserts a new active specialization.
func CreateSpecialization(ctx context.Context, db *gorm.DB, name, description string) (*domain.Specialization, error) {
	s := &domain.Specialization{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveSpecialization fetches a specialization by id, excluding
// soft-deleted rows. Returns ErrNotFound when no active row exists.
func GetActiveSpecialization(ctx context.Context, db *gorm.DB, id string) (*domain.Specialization, error) {
	var s domain.Specialization
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAnySpecialization fetches a specialization regardless of its tombstone.
func GetAnySpecialization(ctx context.Context, db *gorm.DB, id string) (*domain.Specialization, error) {
	var s domain.Specialization
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActiveSpecializations returns all active specializations. Ordering by
// name is left to the service layer, which applies locale-aware collation.
func ListActiveSpecializations(ctx context.Context, db *gorm.DB) ([]domain.Specialization, error) {
	var out []domain.Specialization
	err := db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Find(&out).Error
	return out, err
}

// CountActiveSpecializationsByName counts active specializations carrying the
// given name, optionally excluding one id (for updates of that same row).
func CountActiveSpecializationsByName(ctx context.Context, db *gorm.DB, name, excludeID string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Specialization{}).
		Where("name = ? AND is_deleted = ?", name, false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// UpdateSpecializationFields applies a partial update to an active
// specialization. Returns ErrNotFound when no active row matched.
func UpdateSpecializationFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Specialization{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
