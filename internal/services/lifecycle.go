// Package services – soft-delete lifecycle manager.
//
// Every entity shares the same two-state machine: Active ⇄ Deleted.
// softDelete moves an active row to Deleted (after the referential guard
// confirms no active dependents for the kinds that have them), restore moves
// a deleted row back. Deleted is reversible, which is what distinguishes the
// tombstone from a physical delete. The machine is implemented once here and
// parameterized by entity kind rather than duplicated per entity service.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// Lifecycle flips the IsDeleted tombstone for any registered entity kind.
type Lifecycle struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
}

// NewLifecycle constructs a lifecycle manager over the given handles.
// Cache may be nil.
func NewLifecycle(db *gorm.DB, c *cache.Coordinator) *Lifecycle {
	return &Lifecycle{DB: db, Cache: c}
}

// tombstone is the projection read by the lifecycle before flipping the flag.
type tombstone struct {
	IsDeleted bool
}

// SoftDelete marks an active row as deleted.
//
// Fails with ErrNotFound when no active row with that id exists, and with
// ErrHasDependents when the referential guard still counts active dependents
// (Office, PatientCard); in both cases nothing is mutated. The check and the
// update run in one transaction; the per-kind cache is evicted only after
// commit.
func (l *Lifecycle) SoftDelete(ctx context.Context, kind domain.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	err = l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row tombstone
		res := tx.Table(table).
			Select("is_deleted").
			Where("id = ?", id).
			Limit(1).
			Scan(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || row.IsDeleted {
			return ErrNotFound
		}

		ok, err := CanDelete(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrHasDependents
		}

		return tx.Table(table).
			Where("id = ?", id).
			Update("is_deleted", true).Error
	})
	if err != nil {
		return err
	}

	l.Cache.InvalidateKind(ctx, string(kind))
	return nil
}

// Restore moves a deleted row back to the active state.
//
// Fails with ErrNotFound when no row (active or deleted) exists, and with
// ErrAlreadyActive when the row is not currently deleted. Restoring never
// re-validates downstream references; a restored office may immediately be
// referenced again.
func (l *Lifecycle) Restore(ctx context.Context, kind domain.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	err = l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row tombstone
		res := tx.Table(table).
			Select("is_deleted").
			Where("id = ?", id).
			Limit(1).
			Scan(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if !row.IsDeleted {
			return ErrAlreadyActive
		}

		return tx.Table(table).
			Where("id = ?", id).
			Update("is_deleted", false).Error
	})
	if err != nil {
		return err
	}

	l.Cache.InvalidateKind(ctx, string(kind))
	return nil
}
