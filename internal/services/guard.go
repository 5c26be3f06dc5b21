// Package services – referential guard.
//
// The guard is the single place where cross-entity references are checked:
// before a mutation may point at another row, the target must resolve to an
// active row; before an Office or PatientCard may be deleted, no active row
// may still reference it. Callers pass their transaction handle so that the
// check and the write it protects observe one consistent snapshot.
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// kindTables maps an entity kind to its table, for kind-parameterized
// queries in the guard and the lifecycle manager.
var kindTables = map[domain.Kind]string{
	domain.KindOffice:         domain.Office{}.TableName(),
	domain.KindSpecialization: domain.Specialization{}.TableName(),
	domain.KindDoctor:         domain.Doctor{}.TableName(),
	domain.KindPatient:        domain.Patient{}.TableName(),
	domain.KindPatientCard:    domain.PatientCard{}.TableName(),
	domain.KindAppointment:    domain.Appointment{}.TableName(),
}

func tableFor(kind domain.Kind) (string, error) {
	t, ok := kindTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
	return t, nil
}

// DependentCount returns the number of active rows that still reference the
// given entity. Only Office and PatientCard have deletion-blocking
// dependents; every other kind deletes freely.
func DependentCount(ctx context.Context, tx *gorm.DB, kind domain.Kind, id string) (int64, error) {
	switch kind {
	case domain.KindOffice:
		doctors, err := repo.CountActiveDoctorsByOffice(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		appts, err := repo.CountActiveAppointmentsByOffice(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		return doctors + appts, nil
	case domain.KindPatientCard:
		patients, err := repo.CountActivePatientsByCard(ctx, tx, id, "")
		if err != nil {
			return 0, err
		}
		appts, err := repo.CountActiveAppointmentsByCard(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		return patients + appts, nil
	default:
		return 0, nil
	}
}

// CanDelete reports whether the entity may be soft-deleted right now, i.e.
// no active row still references it.
func CanDelete(ctx context.Context, tx *gorm.DB, kind domain.Kind, id string) (bool, error) {
	n, err := DependentCount(ctx, tx, kind, id)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// ValidateReference checks that a supplied foreign id resolves to an active
// row of the given kind. A missing or soft-deleted target yields
// ErrInvalidReference; callers run inside a transaction so a failed check
// rolls back the whole operation with no partial write.
func ValidateReference(ctx context.Context, tx *gorm.DB, kind domain.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	var n int64
	if err := tx.WithContext(ctx).
		Table(table).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %q", ErrInvalidReference, kind, id)
	}
	return nil
}
