// Package services – OfficeService.
//
// Offices are the simplest aggregate: a name and a tombstone. The interesting
// rule lives in the lifecycle/guard pair: an office with active doctors or
// appointments cannot be soft-deleted.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// OfficeService provides office-level operations.
type OfficeService struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
	Life  *Lifecycle
}

// NewOfficeService constructs an OfficeService. Cache may be nil.
func NewOfficeService(db *gorm.DB, c *cache.Coordinator) *OfficeService {
	return &OfficeService{DB: db, Cache: c, Life: NewLifecycle(db, c)}
}

// Create inserts a new active office with a normalized name.
func (s *OfficeService) Create(ctx context.Context, name string) (*domain.Office, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyField
	}
	o, err := repo.CreateOffice(ctx, s.DB, name)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindOffice))
	return o, nil
}

// Update renames an active office. Returns ErrNotFound when the office is
// missing or deleted.
func (s *OfficeService) Update(ctx context.Context, id, name string) error {
	name = normalizeName(name)
	if name == "" {
		return ErrEmptyField
	}
	if err := repo.UpdateOfficeFields(ctx, s.DB, id, map[string]any{"name": name}); err != nil {
		return asNotFound(err)
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindOffice))
	return nil
}

// GetActive returns the office only when it is not soft-deleted.
func (s *OfficeService) GetActive(ctx context.Context, id string) (*domain.Office, error) {
	var o domain.Office
	err := s.Cache.GetThrough(ctx, string(domain.KindOffice), id, &o, func(ctx context.Context) error {
		row, err := repo.GetActiveOffice(ctx, s.DB, id)
		if err != nil {
			return asNotFound(err)
		}
		o = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetAny returns the office regardless of its tombstone, for audit review.
// Bypasses the cache, which only ever holds active rows.
func (s *OfficeService) GetAny(ctx context.Context, id string) (*domain.Office, error) {
	o, err := repo.GetAnyOffice(ctx, s.DB, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return o, nil
}

// ListActive returns all active offices.
func (s *OfficeService) ListActive(ctx context.Context) ([]domain.Office, error) {
	var out []domain.Office
	err := s.Cache.GetThrough(ctx, string(domain.KindOffice), allActiveKey, &out, func(ctx context.Context) error {
		rows, err := repo.ListActiveOffices(ctx, s.DB)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// SoftDelete tombstones the office unless active doctors or appointments
// still reference it (ErrHasDependents).
func (s *OfficeService) SoftDelete(ctx context.Context, id string) error {
	return s.Life.SoftDelete(ctx, domain.KindOffice, id)
}

// Restore reactivates a previously deleted office.
func (s *OfficeService) Restore(ctx context.Context, id string) error {
	return s.Life.Restore(ctx, domain.KindOffice, id)
}

// CanDelete reports whether a soft delete would currently succeed, without
// mutating anything. Exposed so callers can grey out the action up front.
func (s *OfficeService) CanDelete(ctx context.Context, id string) (bool, error) {
	if _, err := repo.GetActiveOffice(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	return CanDelete(ctx, s.DB, domain.KindOffice, id)
}
