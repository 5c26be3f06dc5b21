// Package repo – PatientCard repository.
//
// The card's audit log lives in history_repo.go; this file only persists the
// current card state. Writing the change row next to a card update is the
// card service's job and happens inside one transaction.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// CreatePatientCard inserts a new active card.
func CreatePatientCard(ctx context.Context, db *gorm.DB, symptoms, diagnosis, meds string) (*domain.PatientCard, error) {
	c := &domain.PatientCard{
		ID:        uuid.NewString(),
		Symptoms:  symptoms,
		Diagnosis: diagnosis,
		Meds:      meds,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetActivePatientCard fetches a card by id, excluding soft-deleted rows.
func GetActivePatientCard(ctx context.Context, db *gorm.DB, id string) (*domain.PatientCard, error) {
	var c domain.PatientCard
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAnyPatientCard fetches a card regardless of its tombstone.
func GetAnyPatientCard(ctx context.Context, db *gorm.DB, id string) (*domain.PatientCard, error) {
	var c domain.PatientCard
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListActivePatientCards returns all active cards, newest first.
func ListActivePatientCards(ctx context.Context, db *gorm.DB) ([]domain.PatientCard, error) {
	var out []domain.PatientCard
	err := db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// UpdatePatientCardFields applies a partial update to an active card.
// Returns ErrNotFound when no active row matched.
func UpdatePatientCardFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.PatientCard{}).
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
