// Package services – PatientService.
//
// A patient holds exactly one medical card. The card reference must resolve
// to an active card that is either unassigned or already held by this same
// patient; two active patients can never share a card.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// PatientService provides patient-level operations.
type PatientService struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
	Life  *Lifecycle
}

// NewPatientService constructs a PatientService. Cache may be nil.
func NewPatientService(db *gorm.DB, c *cache.Coordinator) *PatientService {
	return &PatientService{DB: db, Cache: c, Life: NewLifecycle(db, c)}
}

// CreatePatientInput carries the fields for PatientService.Create.
type CreatePatientInput struct {
	Name        string
	BirthDate   time.Time
	Phone       string
	InsuranceID string
	CardID      string
}

// Create inserts a patient after validating the card reference (active and
// unassigned) and phone uniqueness among active patients.
func (s *PatientService) Create(ctx context.Context, in CreatePatientInput) (*domain.Patient, error) {
	in.Name = normalizeName(in.Name)
	in.Phone = normalizePhone(in.Phone)
	if in.Name == "" || in.Phone == "" {
		return nil, ErrEmptyField
	}

	var created *domain.Patient
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ValidateReference(ctx, tx, domain.KindPatientCard, in.CardID); err != nil {
			return err
		}
		holders, err := repo.CountActivePatientsByCard(ctx, tx, in.CardID, "")
		if err != nil {
			return err
		}
		if holders > 0 {
			return fmt.Errorf("%w: card %q is already assigned", ErrInvalidReference, in.CardID)
		}

		n, err := repo.CountActivePatientsByPhone(ctx, tx, in.Phone, "")
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrUniqueViolation
		}

		created, err = repo.CreatePatient(ctx, tx, &domain.Patient{
			Name:        in.Name,
			BirthDate:   in.BirthDate,
			Phone:       in.Phone,
			InsuranceID: in.InsuranceID,
			CardID:      in.CardID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindPatient))
	return created, nil
}

// UpdatePatientInput carries the optional fields for PatientService.Update;
// nil fields are left untouched.
type UpdatePatientInput struct {
	Name        *string
	BirthDate   *time.Time
	Phone       *string
	InsuranceID *string
	CardID      *string
}

// Update applies a partial update to an active patient. A supplied card id
// must be active and unassigned-or-self; a supplied phone must stay unique
// among the other active patients.
func (s *PatientService) Update(ctx context.Context, id string, in UpdatePatientInput) error {
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
	if in.BirthDate != nil {
		fields["birth_date"] = *in.BirthDate
	}
	if in.InsuranceID != nil {
		fields["insurance_id"] = *in.InsuranceID
	}
	if in.CardID != nil {
		fields["card_id"] = *in.CardID
	}
	if len(fields) == 0 {
		return nil
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CardID != nil {
			if err := ValidateReference(ctx, tx, domain.KindPatientCard, *in.CardID); err != nil {
				return err
			}
			holders, err := repo.CountActivePatientsByCard(ctx, tx, *in.CardID, id)
			if err != nil {
				return err
			}
			if holders > 0 {
				return fmt.Errorf("%w: card %q is already assigned", ErrInvalidReference, *in.CardID)
			}
		}
		if p, ok := fields["phone"].(string); ok {
			n, err := repo.CountActivePatientsByPhone(ctx, tx, p, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrUniqueViolation
			}
		}
		return asNotFound(repo.UpdatePatientFields(ctx, tx, id, fields))
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindPatient))
	return nil
}

// GetActive returns the patient only when it is not soft-deleted.
func (s *PatientService) GetActive(ctx context.Context, id string) (*domain.Patient, error) {
	var p domain.Patient
	err := s.Cache.GetThrough(ctx, string(domain.KindPatient), id, &p, func(ctx context.Context) error {
		row, err := repo.GetActivePatient(ctx, s.DB, id)
		if err != nil {
			return asNotFound(err)
		}
		p = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAny returns the patient regardless of its tombstone.
func (s *PatientService) GetAny(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := repo.GetAnyPatient(ctx, s.DB, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return p, nil
}

// ListActive returns all active patients.
func (s *PatientService) ListActive(ctx context.Context) ([]domain.Patient, error) {
	var out []domain.Patient
	err := s.Cache.GetThrough(ctx, string(domain.KindPatient), allActiveKey, &out, func(ctx context.Context) error {
		rows, err := repo.ListActivePatients(ctx, s.DB)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// SoftDelete tombstones the patient. The patient's card stays active and can
// be reassigned once the patient is deleted.
func (s *PatientService) SoftDelete(ctx context.Context, id string) error {
	return s.Life.SoftDelete(ctx, domain.KindPatient, id)
}

// Restore reactivates a previously deleted patient.
func (s *PatientService) Restore(ctx context.Context, id string) error {
	return s.Life.Restore(ctx, domain.KindPatient, id)
}
