// Package services – AppointmentService and the scheduling conflict detector.
//
// A doctor's slot is the half-open window [WorkHoursFrom, WorkHoursFor).
// Two windows overlap iff existing.from < to AND existing.for > from, with
// strict inequality on both ends, so back-to-back appointments never
// conflict. The detector itself is a pure predicate; the write paths query
// it while holding a per-doctor mutex so that two racing overlapping inserts
// for the same doctor cannot both pass the check.
//
// Observability: the write paths are OpenTelemetry-instrumented; spans carry
// doctor/patient identifiers.
package services

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/metrics"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// AppointmentService provides appointment-level operations.
type AppointmentService struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
	Life  *Lifecycle

	locks keyedMutex
}

// NewAppointmentService constructs an AppointmentService. Cache may be nil.
func NewAppointmentService(db *gorm.DB, c *cache.Coordinator) *AppointmentService {
	return &AppointmentService{DB: db, Cache: c, Life: NewLifecycle(db, c)}
}

// CreateAppointmentInput carries the fields for AppointmentService.Create.
type CreateAppointmentInput struct {
	Date          time.Time
	DoctorID      string
	PatientID     string
	OfficeID      string
	CardID        string
	InsuranceID   string
	WorkHoursFrom time.Time
	WorkHoursFor  time.Time
}

// Create books an appointment.
//
// Every foreign id must resolve to an active row (ErrInvalidReference), the
// window must be non-empty (ErrInvalidWindow), and the window must not
// overlap any active appointment of the doctor (ErrScheduleConflict). The
// reference checks, the conflict check and the insert run in one transaction
// under a per-doctor lock; under concurrent overlapping requests for the
// same doctor at most one insert succeeds.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*domain.Appointment, error) {
	tr := otel.Tracer("services/AppointmentService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("doctor.id", in.DoctorID),
			attribute.String("patient.id", in.PatientID),
		),
	)
	defer span.End()

	if !in.WorkHoursFrom.Before(in.WorkHoursFor) {
		return nil, ErrInvalidWindow
	}

	unlock := s.locks.lock(in.DoctorID)
	defer unlock()

	var created *domain.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ValidateReference(ctx, tx, domain.KindDoctor, in.DoctorID); err != nil {
			return err
		}
		if err := ValidateReference(ctx, tx, domain.KindPatient, in.PatientID); err != nil {
			return err
		}
		if err := ValidateReference(ctx, tx, domain.KindOffice, in.OfficeID); err != nil {
			return err
		}
		if err := ValidateReference(ctx, tx, domain.KindPatientCard, in.CardID); err != nil {
			return err
		}

		overlap, err := repo.HasOverlappingAppointment(ctx, tx, in.DoctorID, in.WorkHoursFrom, in.WorkHoursFor, "")
		if err != nil {
			return err
		}
		if overlap {
			metrics.ScheduleConflicts.Inc()
			return ErrScheduleConflict
		}

		created, err = repo.CreateAppointment(ctx, tx, &domain.Appointment{
			Date:          in.Date,
			DoctorID:      in.DoctorID,
			PatientID:     in.PatientID,
			OfficeID:      in.OfficeID,
			CardID:        in.CardID,
			InsuranceID:   in.InsuranceID,
			WorkHoursFrom: in.WorkHoursFrom,
			WorkHoursFor:  in.WorkHoursFor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindAppointment))
	return created, nil
}

// UpdateAppointmentInput carries the optional fields for
// AppointmentService.Update; nil fields are left untouched.
type UpdateAppointmentInput struct {
	Date          *time.Time
	DoctorID      *string
	PatientID     *string
	OfficeID      *string
	CardID        *string
	InsuranceID   *string
	WorkHoursFrom *time.Time
	WorkHoursFor  *time.Time
}

// Update applies a partial update to an active appointment, re-validating
// supplied references and re-checking the doctor's schedule with the updated
// appointment excluded from the comparison set.
func (s *AppointmentService) Update(ctx context.Context, id string, in UpdateAppointmentInput) error {
	tr := otel.Tracer("services/AppointmentService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("appointment.id", id)),
	)
	defer span.End()

	// The effective doctor decides which lock serializes the write. Loading
	// it outside the lock would race, so take a coarse path: when the update
	// does not move the appointment to another doctor we must look the
	// current one up first.
	current, err := repo.GetActiveAppointment(ctx, s.DB, id)
	if err != nil {
		return asNotFound(err)
	}
	doctorID := current.DoctorID
	if in.DoctorID != nil {
		doctorID = *in.DoctorID
	}

	unlock := s.locks.lock(doctorID)
	defer unlock()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetActiveAppointment(ctx, tx, id)
		if err != nil {
			return asNotFound(err)
		}

		fields := map[string]any{}
		if in.Date != nil {
			fields["date"] = *in.Date
		}
		if in.DoctorID != nil {
			if err := ValidateReference(ctx, tx, domain.KindDoctor, *in.DoctorID); err != nil {
				return err
			}
			fields["doctor_id"] = *in.DoctorID
		}
		if in.PatientID != nil {
			if err := ValidateReference(ctx, tx, domain.KindPatient, *in.PatientID); err != nil {
				return err
			}
			fields["patient_id"] = *in.PatientID
		}
		if in.OfficeID != nil {
			if err := ValidateReference(ctx, tx, domain.KindOffice, *in.OfficeID); err != nil {
				return err
			}
			fields["office_id"] = *in.OfficeID
		}
		if in.CardID != nil {
			if err := ValidateReference(ctx, tx, domain.KindPatientCard, *in.CardID); err != nil {
				return err
			}
			fields["card_id"] = *in.CardID
		}
		if in.InsuranceID != nil {
			fields["insurance_id"] = *in.InsuranceID
		}

		from, to := cur.WorkHoursFrom, cur.WorkHoursFor
		if in.WorkHoursFrom != nil {
			from = *in.WorkHoursFrom
			fields["work_hours_from"] = from
		}
		if in.WorkHoursFor != nil {
			to = *in.WorkHoursFor
			fields["work_hours_for"] = to
		}
		if !from.Before(to) {
			return ErrInvalidWindow
		}

		overlap, err := repo.HasOverlappingAppointment(ctx, tx, doctorID, from, to, id)
		if err != nil {
			return err
		}
		if overlap {
			metrics.ScheduleConflicts.Inc()
			return ErrScheduleConflict
		}

		if len(fields) == 0 {
			return nil
		}
		return asNotFound(repo.UpdateAppointmentFields(ctx, tx, id, fields))
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindAppointment))
	return nil
}

// HasConflict reports whether [from, to) overlaps an active appointment of
// the doctor. Pure predicate: no lock, no mutation; the authoritative check
// still runs inside the write paths.
func (s *AppointmentService) HasConflict(ctx context.Context, doctorID string, from, to time.Time) (bool, error) {
	return repo.HasOverlappingAppointment(ctx, s.DB, doctorID, from, to, "")
}

// GetActive returns the appointment only when it is not soft-deleted.
func (s *AppointmentService) GetActive(ctx context.Context, id string) (*domain.Appointment, error) {
	var a domain.Appointment
	err := s.Cache.GetThrough(ctx, string(domain.KindAppointment), id, &a, func(ctx context.Context) error {
		row, err := repo.GetActiveAppointment(ctx, s.DB, id)
		if err != nil {
			return asNotFound(err)
		}
		a = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAny returns the appointment regardless of its tombstone.
func (s *AppointmentService) GetAny(ctx context.Context, id string) (*domain.Appointment, error) {
	a, err := repo.GetAnyAppointment(ctx, s.DB, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return a, nil
}

// ListActive returns all active appointments ordered by window start.
func (s *AppointmentService) ListActive(ctx context.Context) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := s.Cache.GetThrough(ctx, string(domain.KindAppointment), allActiveKey, &out, func(ctx context.Context) error {
		rows, err := repo.ListActiveAppointments(ctx, s.DB)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// ListActiveByDoctor returns the doctor's active appointments.
func (s *AppointmentService) ListActiveByDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := s.Cache.GetThrough(ctx, string(domain.KindAppointment), "doctor:"+doctorID, &out, func(ctx context.Context) error {
		rows, err := repo.ListActiveAppointmentsByDoctor(ctx, s.DB, doctorID)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// ListActiveByPatient returns the patient's active appointments.
func (s *AppointmentService) ListActiveByPatient(ctx context.Context, patientID string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := s.Cache.GetThrough(ctx, string(domain.KindAppointment), "patient:"+patientID, &out, func(ctx context.Context) error {
		rows, err := repo.ListActiveAppointmentsByPatient(ctx, s.DB, patientID)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// SoftDelete tombstones the appointment, freeing the doctor's slot.
func (s *AppointmentService) SoftDelete(ctx context.Context, id string) error {
	return s.Life.SoftDelete(ctx, domain.KindAppointment, id)
}

// Restore reactivates a previously deleted appointment. Per the lifecycle
// contract no conflict re-check happens; the slot may have been rebooked.
func (s *AppointmentService) Restore(ctx context.Context, id string) error {
	return s.Life.Restore(ctx, domain.KindAppointment, id)
}

// keyedMutex hands out one mutex per key (doctor id). Entries are never
// removed; the population is bounded by the number of doctors.
type keyedMutex struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

// lock acquires the mutex for key, allocating it on first use, and returns
// the matching unlock.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*sync.Mutex)
	}
	l, ok := k.m[key]
	if !ok {
		l = &sync.Mutex{}
		k.m[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
