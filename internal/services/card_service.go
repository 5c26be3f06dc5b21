// Package services – CardService, the write path of patient cards and their
// audit trail.
//
// Whenever an update changes the diagnosis or meds of a card, one CardChange
// row capturing the old and new values, the actor and a reason is appended
// inside the same transaction as the card update: the pair commits or rolls
// back as a unit. An update that changes neither audited column writes no
// history row at all. History rows are immutable once written.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/metrics"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// CardService provides patient-card operations and the audit trail reads.
type CardService struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
	Life  *Lifecycle
}

// NewCardService constructs a CardService. Cache may be nil.
func NewCardService(db *gorm.DB, c *cache.Coordinator) *CardService {
	return &CardService{DB: db, Cache: c, Life: NewLifecycle(db, c)}
}

// Create inserts a new active card. Creation is not audited; the trail
// records changes, and the initial values are visible on the card itself.
func (s *CardService) Create(ctx context.Context, symptoms, diagnosis, meds string) (*domain.PatientCard, error) {
	card, err := repo.CreatePatientCard(ctx, s.DB, symptoms, diagnosis, meds)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindPatientCard))
	return card, nil
}

// UpdateCardInput carries the optional fields for CardService.Update;
// nil fields are left untouched.
type UpdateCardInput struct {
	Symptoms  *string
	Diagnosis *string
	Meds      *string
}

// Update applies a partial update to an active card on behalf of actor.
//
// When the effective diagnosis or meds differ from the stored values, one
// audit entry is appended in the same transaction; reason is stored with it.
// A no-op update (identical values) succeeds without writing history.
// Returns ErrNotFound when the card is missing or deleted; on any error no
// card change and no history row survive.
func (s *CardService) Update(ctx context.Context, id string, in UpdateCardInput, actor, reason string) error {
	if in.Symptoms == nil && in.Diagnosis == nil && in.Meds == nil {
		return nil
	}

	audited := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := repo.GetActivePatientCard(ctx, tx, id)
		if err != nil {
			return asNotFound(err)
		}

		newDiagnosis := card.Diagnosis
		if in.Diagnosis != nil {
			newDiagnosis = *in.Diagnosis
		}
		newMeds := card.Meds
		if in.Meds != nil {
			newMeds = *in.Meds
		}

		fields := map[string]any{}
		if in.Symptoms != nil && *in.Symptoms != card.Symptoms {
			fields["symptoms"] = *in.Symptoms
		}
		if newDiagnosis != card.Diagnosis {
			fields["diagnosis"] = newDiagnosis
		}
		if newMeds != card.Meds {
			fields["meds"] = newMeds
		}
		if len(fields) == 0 {
			return nil
		}

		if err := repo.UpdatePatientCardFields(ctx, tx, id, fields); err != nil {
			return asNotFound(err)
		}

		if newDiagnosis != card.Diagnosis || newMeds != card.Meds {
			if _, err := repo.CreateCardChange(ctx, tx, &domain.CardChange{
				CardID:       id,
				ChangedBy:    actor,
				OldDiagnosis: card.Diagnosis,
				NewDiagnosis: newDiagnosis,
				OldMeds:      card.Meds,
				NewMeds:      newMeds,
				Reason:       reason,
			}); err != nil {
				return err
			}
			audited = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if audited {
		metrics.CardChangesRecorded.Inc()
	}
	s.Cache.InvalidateKind(ctx, string(domain.KindPatientCard))
	return nil
}

// GetActive returns the card only when it is not soft-deleted.
func (s *CardService) GetActive(ctx context.Context, id string) (*domain.PatientCard, error) {
	var c domain.PatientCard
	err := s.Cache.GetThrough(ctx, string(domain.KindPatientCard), id, &c, func(ctx context.Context) error {
		row, err := repo.GetActivePatientCard(ctx, s.DB, id)
		if err != nil {
			return asNotFound(err)
		}
		c = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAny returns the card regardless of its tombstone, for audit review.
func (s *CardService) GetAny(ctx context.Context, id string) (*domain.PatientCard, error) {
	c, err := repo.GetAnyPatientCard(ctx, s.DB, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return c, nil
}

// ListActive returns all active cards.
func (s *CardService) ListActive(ctx context.Context) ([]domain.PatientCard, error) {
	var out []domain.PatientCard
	err := s.Cache.GetThrough(ctx, string(domain.KindPatientCard), allActiveKey, &out, func(ctx context.Context) error {
		rows, err := repo.ListActivePatientCards(ctx, s.DB)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// HistoryForCard returns the card's audit entries newest-first. The trail is
// readable even for a soft-deleted card; that is what the tombstone is for.
func (s *CardService) HistoryForCard(ctx context.Context, cardID string) ([]domain.CardChange, error) {
	if _, err := repo.GetAnyPatientCard(ctx, s.DB, cardID); err != nil {
		return nil, asNotFound(err)
	}
	return repo.ListCardChanges(ctx, s.DB, cardID)
}

// LastChange returns the most recent audit entry of a card, or ErrNotFound
// when the card has never had an audited change.
func (s *CardService) LastChange(ctx context.Context, cardID string) (*domain.CardChange, error) {
	ch, err := repo.LastCardChange(ctx, s.DB, cardID)
	if err != nil {
		return nil, asNotFound(err)
	}
	return ch, nil
}

// SoftDelete tombstones the card unless an active patient or appointment
// still references it (ErrHasDependents). The audit trail stays readable.
func (s *CardService) SoftDelete(ctx context.Context, id string) error {
	return s.Life.SoftDelete(ctx, domain.KindPatientCard, id)
}

// Restore reactivates a previously deleted card.
func (s *CardService) Restore(ctx context.Context, id string) error {
	return s.Life.Restore(ctx, domain.KindPatientCard, id)
}
