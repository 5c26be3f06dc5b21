// Package repo – Appointment repository.
//
// The overlap query implements the half-open interval rule used by the
// scheduling conflict detector: two windows [a, b) and [c, d) overlap iff
// a < d AND b > c. Both inequalities are strict, so back-to-back slots where
// one window ends exactly when the next starts do not collide.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// CreateAppointment inserts a new active appointment row.
func CreateAppointment(ctx context.Context, db *gorm.DB, a *domain.Appointment) (*domain.Appointment, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetActiveAppointment fetches an appointment by id, excluding soft-deleted rows.
func GetActiveAppointment(ctx context.Context, db *gorm.DB, id string) (*domain.Appointment, error) {
	var a domain.Appointment
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAnyAppointment fetches an appointment regardless of its tombstone.
func GetAnyAppointment(ctx context.Context, db *gorm.DB, id string) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListActiveAppointments returns all active appointments ordered by window start.
func ListActiveAppointments(ctx context.Context, db *gorm.DB) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("work_hours_from asc").
		Find(&out).Error
	return out, err
}

// ListActiveAppointmentsByDoctor returns the doctor's active appointments
// ordered by window start.
func ListActiveAppointmentsByDoctor(ctx context.Context, db *gorm.DB, doctorID string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND is_deleted = ?", doctorID, false).
		Order("work_hours_from asc").
		Find(&out).Error
	return out, err
}

// ListActiveAppointmentsByPatient returns the patient's active appointments
// ordered by window start.
func ListActiveAppointmentsByPatient(ctx context.Context, db *gorm.DB, patientID string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := db.WithContext(ctx).
		Where("patient_id = ? AND is_deleted = ?", patientID, false).
		Order("work_hours_from asc").
		Find(&out).Error
	return out, err
}

// UpdateAppointmentFields applies a partial update to an active appointment.
// Returns ErrNotFound when no active row matched.
func UpdateAppointmentFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Appointment{}).
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

// HasOverlappingAppointment reports whether the doctor already has an active
// appointment whose half-open window overlaps [from, to). excludeID, when
// non-empty, removes one appointment from the comparison set (the row being
// updated).
func HasOverlappingAppointment(ctx context.Context, db *gorm.DB, doctorID string, from, to time.Time, excludeID string) (bool, error) {
	q := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("doctor_id = ? AND is_deleted = ?", doctorID, false).
		Where("work_hours_from < ? AND work_hours_for > ?", to, from)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActiveAppointmentsByOffice counts active appointments booked into an
// office. A nonzero count blocks the office's soft deletion.
func CountActiveAppointmentsByOffice(ctx context.Context, db *gorm.DB, officeID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("office_id = ? AND is_deleted = ?", officeID, false).
		Count(&n).Error
	return n, err
}

// CountActiveAppointmentsByCard counts active appointments referencing a
// patient card. A nonzero count blocks the card's soft deletion.
func CountActiveAppointmentsByCard(ctx context.Context, db *gorm.DB, cardID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("card_id = ? AND is_deleted = ?", cardID, false).
		Count(&n).Error
	return n, err
}
