// Package repo – Office repository.
//
// Functions:
//
//   - CreateOffice(ctx, db, name) -> *domain.Office, error
//     Inserts a new active office with a UUID primary key.
//
//   - GetActiveOffice(ctx, db, id) -> *domain.Office, error
//     Fetches an office only if it is not soft-deleted, else ErrNotFound.
//
//   - GetAnyOffice(ctx, db, id) -> *domain.Office, error
//     Unfiltered lookup: returns the row regardless of its tombstone,
//     used for audit inspection and for the restore path.
//
//   - ListActiveOffices(ctx, db) -> []domain.Office, error
//     All active offices ordered by name.
//
//   - UpdateOfficeFields(ctx, db, id, fields) -> error
//     Partial update scoped to the active row; ErrNotFound when no active
//     row matched.
//
// The soft-delete flag itself is flipped by the generic lifecycle component
// in the service layer, not here.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// CreateOffice inserts a new active office with the given name.
func CreateOffice(ctx context.Context, db *gorm.DB, name string) (*domain.Office, error) {
	o := &domain.Office{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// GetActiveOffice fetches an office by id, excluding soft-deleted rows.
// Returns ErrNotFound when no active row exists.
func GetActiveOffice(ctx context.Context, db *gorm.DB, id string) (*domain.Office, error) {
	var o domain.Office
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetAnyOffice fetches an office by id regardless of its tombstone.
func GetAnyOffice(ctx context.Context, db *gorm.DB, id string) (*domain.Office, error) {
	var o domain.Office
	if err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListActiveOffices returns all active offices ordered by name.
func ListActiveOffices(ctx context.Context, db *gorm.DB) ([]domain.Office, error) {
	var out []domain.Office
	err := db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// UpdateOfficeFields applies a partial update to an active office.
// Returns ErrNotFound when the office is missing or soft-deleted.
func UpdateOfficeFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Office{}).
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
