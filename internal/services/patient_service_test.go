package services

import (
	"context"
	"errors"
	"testing"
)

func TestPatientCreate_CardMustBeActiveAndUnassigned(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewPatientService(db, nil)

	c := seedCard(t, db, "")
	seedPatient(t, db, "+7 900 000-05-01", c.ID)

	// Second active patient on the same card is rejected.
	_, err := svc.Create(ctx, CreatePatientInput{
		Name:   "Второй Пациент",
		Phone:  "+7 900 000-05-02",
		CardID: c.ID,
	})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("shared card must be ErrInvalidReference, got %v", err)
	}

	// A deleted card is no reference at all.
	c2 := seedCard(t, db, "")
	if err := NewCardService(db, nil).SoftDelete(ctx, c2.ID); err != nil {
		t.Fatalf("delete card: %v", err)
	}
	_, err = svc.Create(ctx, CreatePatientInput{
		Name:   "Третий Пациент",
		Phone:  "+7 900 000-05-03",
		CardID: c2.ID,
	})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("deleted card must be ErrInvalidReference, got %v", err)
	}
}

func TestPatientCreate_CardFreedByDeletedHolder(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewPatientService(db, nil)

	c := seedCard(t, db, "")
	p := seedPatient(t, db, "+7 900 000-05-04", c.ID)

	if err := svc.SoftDelete(ctx, p.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := svc.Create(ctx, CreatePatientInput{
		Name:   "Новый Держатель",
		Phone:  "+7 900 000-05-05",
		CardID: c.ID,
	}); err != nil {
		t.Fatalf("card of deleted patient should be assignable: %v", err)
	}
}

func TestPatientUpdate_CardReassignmentRules(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewPatientService(db, nil)

	c1 := seedCard(t, db, "")
	c2 := seedCard(t, db, "")
	p1 := seedPatient(t, db, "+7 900 000-05-06", c1.ID)
	p2 := seedPatient(t, db, "+7 900 000-05-07", c2.ID)

	// Reassigning to your own card is a no-op that succeeds.
	if err := svc.Update(ctx, p1.ID, UpdatePatientInput{CardID: &c1.ID}); err != nil {
		t.Fatalf("self reassignment: %v", err)
	}
	// Stealing another active patient's card is rejected.
	if err := svc.Update(ctx, p1.ID, UpdatePatientInput{CardID: &c2.ID}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("stealing a held card must be ErrInvalidReference, got %v", err)
	}
	// Once the holder is deleted the card moves freely.
	if err := svc.SoftDelete(ctx, p2.ID); err != nil {
		t.Fatalf("delete holder: %v", err)
	}
	if err := svc.Update(ctx, p1.ID, UpdatePatientInput{CardID: &c2.ID}); err != nil {
		t.Fatalf("reassignment after holder deleted: %v", err)
	}
}

func TestPatientCreate_PhoneUniqueness(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewPatientService(db, nil)

	c1 := seedCard(t, db, "")
	c2 := seedCard(t, db, "")
	seedPatient(t, db, "+7 900 000-05-08", c1.ID)

	_, err := svc.Create(ctx, CreatePatientInput{
		Name:   "Дубль",
		Phone:  "+7 (900) 000-05-08",
		CardID: c2.ID,
	})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("duplicate phone must be ErrUniqueViolation, got %v", err)
	}
}

func TestPatientCreate_EmptyFields(t *testing.T) {
	db := newServiceDB(t)
	svc := NewPatientService(db, nil)

	c := seedCard(t, db, "")
	_, err := svc.Create(context.Background(), CreatePatientInput{
		Name:   "   ",
		Phone:  "+7 900 000-05-09",
		CardID: c.ID,
	})
	if !errors.Is(err, ErrEmptyField) {
		t.Fatalf("blank name must be ErrEmptyField, got %v", err)
	}
}
