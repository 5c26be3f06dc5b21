// Package repo – append-only audit log of patient-card changes.
//
// CardChange rows are created once and never updated or deleted here; there
// is intentionally no Update/Delete function in this file.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// CreateCardChange appends one immutable audit entry for a card. ChangedAt is
// server-assigned; callers supply only the audited values, actor and reason.
func CreateCardChange(ctx context.Context, db *gorm.DB, ch *domain.CardChange) (*domain.CardChange, error) {
	ch.ID = uuid.NewString()
	ch.ChangedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(ch).Error; err != nil {
		return nil, err
	}
	return ch, nil
}

// ListCardChanges returns every audit entry for a card, newest first.
func ListCardChanges(ctx context.Context, db *gorm.DB, cardID string) ([]domain.CardChange, error) {
	var out []domain.CardChange
	err := db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("changed_at desc, id desc").
		Find(&out).Error
	return out, err
}

// LastCardChange returns the most recent audit entry for a card, or
// ErrNotFound when the card has no recorded changes.
func LastCardChange(ctx context.Context, db *gorm.DB, cardID string) (*domain.CardChange, error) {
	var ch domain.CardChange
	err := db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("changed_at desc, id desc").
		First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}
