// Package services – SpecializationService.
//
// Specialization names are unique among active rows only: soft-deleting
// "Терапевт" frees the name for a new active row, and restoring the old row
// later is still allowed (uniqueness is enforced at write time, not at
// restore time, per the lifecycle contract).
package services

import (
	"context"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// SpecializationService provides specialization-level operations.
type SpecializationService struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
	Life  *Lifecycle

	// Collator orders listings in a locale-aware way; clinic data is
	// typically Cyrillic, where byte order and collation order diverge.
	Collator *collate.Collator
}

// NewSpecializationService constructs a SpecializationService with Russian
// collation for listings. Cache may be nil.
func NewSpecializationService(db *gorm.DB, c *cache.Coordinator) *SpecializationService {
	return &SpecializationService{
		DB:       db,
		Cache:    c,
		Life:     NewLifecycle(db, c),
		Collator: collate.New(language.Russian),
	}
}

// Create inserts a new active specialization. The normalized name must not
// collide with another active specialization (ErrUniqueViolation).
func (s *SpecializationService) Create(ctx context.Context, name, description string) (*domain.Specialization, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyField
	}

	var created *domain.Specialization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.CountActiveSpecializationsByName(ctx, tx, name, "")
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrUniqueViolation
		}
		created, err = repo.CreateSpecialization(ctx, tx, name, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindSpecialization))
	return created, nil
}

// Update renames and/or redescribes an active specialization, re-checking
// name uniqueness against every other active row.
func (s *SpecializationService) Update(ctx context.Context, id string, name, description *string) error {
	fields := map[string]any{}
	if name != nil {
		n := normalizeName(*name)
		if n == "" {
			return ErrEmptyField
		}
		fields["name"] = n
	}
	if description != nil {
		fields["description"] = *description
	}
	if len(fields) == 0 {
		return nil
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if n, ok := fields["name"].(string); ok {
			cnt, err := repo.CountActiveSpecializationsByName(ctx, tx, n, id)
			if err != nil {
				return err
			}
			if cnt > 0 {
				return ErrUniqueViolation
			}
		}
		return asNotFound(repo.UpdateSpecializationFields(ctx, tx, id, fields))
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindSpecialization))
	return nil
}

// GetActive returns the specialization only when it is not soft-deleted.
func (s *SpecializationService) GetActive(ctx context.Context, id string) (*domain.Specialization, error) {
	var sp domain.Specialization
	err := s.Cache.GetThrough(ctx, string(domain.KindSpecialization), id, &sp, func(ctx context.Context) error {
		row, err := repo.GetActiveSpecialization(ctx, s.DB, id)
		if err != nil {
			return asNotFound(err)
		}
		sp = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// GetAny returns the specialization regardless of its tombstone.
func (s *SpecializationService) GetAny(ctx context.Context, id string) (*domain.Specialization, error) {
	sp, err := repo.GetAnySpecialization(ctx, s.DB, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return sp, nil
}

// ListActive returns all active specializations sorted with the configured
// collator (or by raw name when none is set).
func (s *SpecializationService) ListActive(ctx context.Context) ([]domain.Specialization, error) {
	var out []domain.Specialization
	err := s.Cache.GetThrough(ctx, string(domain.KindSpecialization), allActiveKey, &out, func(ctx context.Context) error {
		rows, err := repo.ListActiveSpecializations(ctx, s.DB)
		if err != nil {
			return err
		}
		s.sortByName(rows)
		out = rows
		return nil
	})
	return out, err
}

// SoftDelete tombstones the specialization. Links from doctors are left in
// place; ListDoctorSpecializations filters deleted rows out on read.
func (s *SpecializationService) SoftDelete(ctx context.Context, id string) error {
	return s.Life.SoftDelete(ctx, domain.KindSpecialization, id)
}

// Restore reactivates a previously deleted specialization.
func (s *SpecializationService) Restore(ctx context.Context, id string) error {
	return s.Life.Restore(ctx, domain.KindSpecialization, id)
}

func (s *SpecializationService) sortByName(rows []domain.Specialization) {
	if s.Collator == nil {
		return
	}
	s.Collator.Sort(byName(rows))
}

// byName adapts a specialization slice to the collate.Lister interface.
type byName []domain.Specialization

func (b byName) Len() int           { return len(b) }
func (b byName) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
func (b byName) Bytes(i int) []byte { return []byte(b[i].Name) }
