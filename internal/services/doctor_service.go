// Package services – DoctorService.
//
// A doctor points at an office and owns a set of specialization links.
// Creation is atomic: the doctor row and all its links commit together, and
// any invalid reference (deleted office, deleted specialization) rolls the
// whole operation back. Phone uniqueness is scoped to active doctors.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// DoctorService provides doctor-level operations.
type DoctorService struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
	Life  *Lifecycle
}

// NewDoctorService constructs a DoctorService. Cache may be nil.
func NewDoctorService(db *gorm.DB, c *cache.Coordinator) *DoctorService {
	return &DoctorService{DB: db, Cache: c, Life: NewLifecycle(db, c)}
}

// CreateDoctorInput carries the fields for DoctorService.Create.
type CreateDoctorInput struct {
	Name              string
	Phone             string
	WorkHoursFrom     time.Time
	WorkHoursFor      time.Time
	OfficeID          string
	SpecializationIDs []string
}

// Create inserts a doctor and its specialization links in one transaction.
//
// Every supplied foreign id must resolve to an active row
// (ErrInvalidReference otherwise), the phone must be free among active
// doctors (ErrUniqueViolation), and a repeated specialization id in the
// input is rejected as a duplicate link. On any failure no row is written.
func (s *DoctorService) Create(ctx context.Context, in CreateDoctorInput) (*domain.Doctor, error) {
	in.Name = normalizeName(in.Name)
	in.Phone = normalizePhone(in.Phone)
	if in.Name == "" || in.Phone == "" {
		return nil, ErrEmptyField
	}

	var created *domain.Doctor
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ValidateReference(ctx, tx, domain.KindOffice, in.OfficeID); err != nil {
			return err
		}
		for _, specID := range in.SpecializationIDs {
			if err := ValidateReference(ctx, tx, domain.KindSpecialization, specID); err != nil {
				return err
			}
		}

		n, err := repo.CountActiveDoctorsByPhone(ctx, tx, in.Phone, "")
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrUniqueViolation
		}

		created, err = repo.CreateDoctor(ctx, tx, &domain.Doctor{
			Name:          in.Name,
			Phone:         in.Phone,
			WorkHoursFrom: in.WorkHoursFrom,
			WorkHoursFor:  in.WorkHoursFor,
			OfficeID:      in.OfficeID,
		})
		if err != nil {
			return err
		}

		for _, specID := range in.SpecializationIDs {
			if err := repo.CreateDoctorSpecialization(ctx, tx, created.ID, specID); err != nil {
				if repo.IsDuplicate(err) {
					return ErrUniqueViolation
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindDoctor))
	return created, nil
}

// UpdateDoctorInput carries the optional fields for DoctorService.Update;
// nil fields are left untouched.
type UpdateDoctorInput struct {
	Name          *string
	Phone         *string
	WorkHoursFrom *time.Time
	WorkHoursFor  *time.Time
	OfficeID      *string
}

// Update applies a partial update to an active doctor, re-validating the
// office reference and phone uniqueness when those fields are supplied.
func (s *DoctorService) Update(ctx context.Context, id string, in UpdateDoctorInput) error {
	fields := map[string]any{}
	if in.Name != nil {
		n := normalizeName(*in.Name)
		if n == "" {
			return ErrEmptyField
		}
		fields["name"] = n
	}
	if in.Phone != nil {
		p := normalizePhone(*in.Phone)
		if p == "" {
			return ErrEmptyField
		}
		fields["phone"] = p
	}
	if in.WorkHoursFrom != nil {
		fields["work_hours_from"] = *in.WorkHoursFrom
	}
	if in.WorkHoursFor != nil {
		fields["work_hours_for"] = *in.WorkHoursFor
	}
	if in.OfficeID != nil {
		fields["office_id"] = *in.OfficeID
	}
	if len(fields) == 0 {
		return nil
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.OfficeID != nil {
			if err := ValidateReference(ctx, tx, domain.KindOffice, *in.OfficeID); err != nil {
				return err
			}
		}
		if p, ok := fields["phone"].(string); ok {
			n, err := repo.CountActiveDoctorsByPhone(ctx, tx, p, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrUniqueViolation
			}
		}
		return asNotFound(repo.UpdateDoctorFields(ctx, tx, id, fields))
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindDoctor))
	return nil
}

// GetActive returns the doctor only when it is not soft-deleted.
func (s *DoctorService) GetActive(ctx context.Context, id string) (*domain.Doctor, error) {
	var d domain.Doctor
	err := s.Cache.GetThrough(ctx, string(domain.KindDoctor), id, &d, func(ctx context.Context) error {
		row, err := repo.GetActiveDoctor(ctx, s.DB, id)
		if err != nil {
			return asNotFound(err)
		}
		d = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAny returns the doctor regardless of its tombstone.
func (s *DoctorService) GetAny(ctx context.Context, id string) (*domain.Doctor, error) {
	d, err := repo.GetAnyDoctor(ctx, s.DB, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return d, nil
}

// ListActive returns all active doctors.
func (s *DoctorService) ListActive(ctx context.Context) ([]domain.Doctor, error) {
	var out []domain.Doctor
	err := s.Cache.GetThrough(ctx, string(domain.KindDoctor), allActiveKey, &out, func(ctx context.Context) error {
		rows, err := repo.ListActiveDoctors(ctx, s.DB)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// SoftDelete tombstones the doctor. Doctors have no deletion-blocking
// dependents; their appointments keep the doctor id for history.
func (s *DoctorService) SoftDelete(ctx context.Context, id string) error {
	return s.Life.SoftDelete(ctx, domain.KindDoctor, id)
}

// Restore reactivates a previously deleted doctor.
func (s *DoctorService) Restore(ctx context.Context, id string) error {
	return s.Life.Restore(ctx, domain.KindDoctor, id)
}

// AddSpecialization links an active specialization to an active doctor.
// A duplicate pair yields ErrUniqueViolation.
func (s *DoctorService) AddSpecialization(ctx context.Context, doctorID, specializationID string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ValidateReference(ctx, tx, domain.KindDoctor, doctorID); err != nil {
			return err
		}
		if err := ValidateReference(ctx, tx, domain.KindSpecialization, specializationID); err != nil {
			return err
		}
		if err := repo.CreateDoctorSpecialization(ctx, tx, doctorID, specializationID); err != nil {
			if repo.IsDuplicate(err) {
				return ErrUniqueViolation
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindDoctor))
	return nil
}

// RemoveSpecialization unlinks a specialization from a doctor. Returns
// ErrNotFound when the pair does not exist.
func (s *DoctorService) RemoveSpecialization(ctx context.Context, doctorID, specializationID string) error {
	if err := repo.DeleteDoctorSpecialization(ctx, s.DB, doctorID, specializationID); err != nil {
		return asNotFound(err)
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindDoctor))
	return nil
}

// ListSpecializations returns the doctor's active specializations. Returns
// ErrNotFound when the doctor has no active row.
func (s *DoctorService) ListSpecializations(ctx context.Context, doctorID string) ([]domain.Specialization, error) {
	if _, err := repo.GetActiveDoctor(ctx, s.DB, doctorID); err != nil {
		return nil, asNotFound(err)
	}
	return repo.ListDoctorSpecializations(ctx, s.DB, doctorID)
}
