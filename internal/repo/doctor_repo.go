// Package repo – Doctor repository, including the doctor↔specialization link
// table. Traversal of the many-to-many relation is explicit: link rows are
// created and removed one by one, and ListDoctorSpecializations resolves the
// linked specializations with a join instead of ORM graph navigation.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// CreateDoctor inserts a new active doctor row.
func CreateDoctor(ctx context.Context, db *gorm.DB, d *domain.Doctor) (*domain.Doctor, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// GetActiveDoctor fetches a doctor by id, excluding soft-deleted rows.
func GetActiveDoctor(ctx context.Context, db *gorm.DB, id string) (*domain.Doctor, error) {
	var d domain.Doctor
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAnyDoctor fetches a doctor regardless of its tombstone.
func GetAnyDoctor(ctx context.Context, db *gorm.DB, id string) (*domain.Doctor, error) {
	var d domain.Doctor
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListActiveDoctors returns all active doctors ordered by name.
func ListActiveDoctors(ctx context.Context, db *gorm.DB) ([]domain.Doctor, error) {
	var out []domain.Doctor
	err := db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// UpdateDoctorFields applies a partial update to an active doctor.
// Returns ErrNotFound when no active row matched.
func UpdateDoctorFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Doctor{}).
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

// CountActiveDoctorsByPhone counts active doctors with the given phone,
// optionally excluding one id. Supports the active-scoped uniqueness check.
func CountActiveDoctorsByPhone(ctx context.Context, db *gorm.DB, phone, excludeID string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Doctor{}).
		Where("phone = ? AND is_deleted = ?", phone, false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountActiveDoctorsByOffice counts active doctors assigned to an office.
// A nonzero count blocks the office's soft deletion.
func CountActiveDoctorsByOffice(ctx context.Context, db *gorm.DB, officeID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Doctor{}).
		Where("office_id = ? AND is_deleted = ?", officeID, false).
		Count(&n).Error
	return n, err
}

// CreateDoctorSpecialization inserts a doctor↔specialization link.
// A duplicate pair violates the composite primary key and maps to ErrDuplicate.
func CreateDoctorSpecialization(ctx context.Context, db *gorm.DB, doctorID, specializationID string) error {
	link := &domain.DoctorSpecialization{
		DoctorID:         doctorID,
		SpecializationID: specializationID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(link).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteDoctorSpecialization removes a doctor↔specialization link.
// Returns ErrNotFound when the pair does not exist. Link rows are plain
// associations, not audited records, so they are removed physically.
func DeleteDoctorSpecialization(ctx context.Context, db *gorm.DB, doctorID, specializationID string) error {
	res := db.WithContext(ctx).
		Where("doctor_id = ? AND specialization_id = ?", doctorID, specializationID).
		Delete(&domain.DoctorSpecialization{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasDoctorSpecialization reports whether the link pair already exists.
func HasDoctorSpecialization(ctx context.Context, db *gorm.DB, doctorID, specializationID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.DoctorSpecialization{}).
		Where("doctor_id = ? AND specialization_id = ?", doctorID, specializationID).
		Count(&n).Error
	return n > 0, err
}

// ListDoctorSpecializations resolves the active specializations linked to a
// doctor, ordered by name.
func ListDoctorSpecializations(ctx context.Context, db *gorm.DB, doctorID string) ([]domain.Specialization, error) {
	var out []domain.Specialization
	err := db.WithContext(ctx).
		Model(&domain.Specialization{}).
		Joins("JOIN doctor_specializations ds ON ds.specialization_id = specializations.id").
		Where("ds.doctor_id = ? AND specializations.is_deleted = ?", doctorID, false).
		Order("specializations.name asc").
		Find(&out).Error
	return out, err
}
