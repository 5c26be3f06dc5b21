// Package repo – Patient repository.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// CreatePatient inserts a new active patient row.
func CreatePatient(ctx context.Context, db *gorm.DB, p *domain.Patient) (*domain.Patient, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetActivePatient fetches a patient by id, excluding soft-deleted rows.
func GetActivePatient(ctx context.Context, db *gorm.DB, id string) (*domain.Patient, error) {
	var p domain.Patient
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAnyPatient fetches a patient regardless of its tombstone.
func GetAnyPatient(ctx context.Context, db *gorm.DB, id string) (*domain.Patient, error) {
	var p domain.Patient
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActivePatients returns all active patients ordered by name.
func ListActivePatients(ctx context.Context, db *gorm.DB) ([]domain.Patient, error) {
	var out []domain.Patient
	err := db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// UpdatePatientFields applies a partial update to an active patient.
// Returns ErrNotFound when no active row matched.
func UpdatePatientFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Patient{}).
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

// CountActivePatientsByPhone counts active patients with the given phone,
// optionally excluding one id.
func CountActivePatientsByPhone(ctx context.Context, db *gorm.DB, phone, excludeID string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("phone = ? AND is_deleted = ?", phone, false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountActivePatientsByCard counts active patients holding the given card,
// optionally excluding one id. Used both to enforce the one-to-one
// card↔patient rule and to block deletion of a card that is still assigned.
func CountActivePatientsByCard(ctx context.Context, db *gorm.DB, cardID, excludeID string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("card_id = ? AND is_deleted = ?", cardID, false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
