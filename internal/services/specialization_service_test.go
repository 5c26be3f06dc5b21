package services

import (
	"context"
	"errors"
	"testing"
)

func TestSpecializationCreate_NameUniqueAmongActive(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewSpecializationService(db, nil)

	sp, err := svc.Create(ctx, "Терапевт", "первичный приём")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same name after normalization collides.
	if _, err := svc.Create(ctx, "  Терапевт ", ""); !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("duplicate name must be ErrUniqueViolation, got %v", err)
	}

	// Deleting the holder frees the name.
	if err := svc.SoftDelete(ctx, sp.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := svc.Create(ctx, "Терапевт", ""); err != nil {
		t.Fatalf("name of deleted specialization should be reusable: %v", err)
	}

	// The tombstoned row can still be restored; the name rule only binds
	// writes, so both rows now coexist until one is renamed.
	if err := svc.Restore(ctx, sp.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
}

func TestSpecializationUpdate_UniquenessExcludesSelf(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewSpecializationService(db, nil)

	sp1, err := svc.Create(ctx, "Кардиолог", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "Хирург", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Keeping your own name is fine.
	same := "Кардиолог"
	if err := svc.Update(ctx, sp1.ID, &same, nil); err != nil {
		t.Fatalf("self-rename: %v", err)
	}
	// Taking another active row's name is not.
	taken := "Хирург"
	if err := svc.Update(ctx, sp1.ID, &taken, nil); !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("rename onto taken name must be ErrUniqueViolation, got %v", err)
	}
}

func TestSpecializationListActive_CollatedRussianOrder(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewSpecializationService(db, nil)

	for _, name := range []string{"Хирург", "Кардиолог", "Терапевт", "Окулист"} {
		if _, err := svc.Create(ctx, name, ""); err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
	}

	rows, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	want := []string{"Кардиолог", "Окулист", "Терапевт", "Хирург"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].Name != w {
			t.Fatalf("position %d: got %q want %q (full: %+v)", i, rows[i].Name, w, rows)
		}
	}
}

func TestSpecializationGetActive_NotFoundWhenDeleted(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := NewSpecializationService(db, nil)

	sp, err := svc.Create(ctx, "Невролог", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.SoftDelete(ctx, sp.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := svc.GetActive(ctx, sp.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted specialization visible to GetActive: %v", err)
	}
	if _, err := svc.GetAny(ctx, sp.ID); err != nil {
		t.Fatalf("GetAny: %v", err)
	}
}
