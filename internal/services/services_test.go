package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medkarta/go-clinic-backend/internal/domain"
	"github.com/medkarta/go-clinic-backend/internal/repo"
)

// test DB helper shared by the service tests
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func slot(t *testing.T, hhmm string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", "2026-09-01 "+hhmm)
	if err != nil {
		t.Fatalf("parse %q: %v", hhmm, err)
	}
	return ts
}

func seedOffice(t *testing.T, db *gorm.DB, name string) *domain.Office {
	t.Helper()
	o, err := NewOfficeService(db, nil).Create(context.Background(), name)
	if err != nil {
		t.Fatalf("seed office: %v", err)
	}
	return o
}

func seedSpecialization(t *testing.T, db *gorm.DB, name string) *domain.Specialization {
	t.Helper()
	sp, err := NewSpecializationService(db, nil).Create(context.Background(), name, "")
	if err != nil {
		t.Fatalf("seed specialization: %v", err)
	}
	return sp
}

func seedCard(t *testing.T, db *gorm.DB, diagnosis string) *domain.PatientCard {
	t.Helper()
	c, err := NewCardService(db, nil).Create(context.Background(), "", diagnosis, "")
	if err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return c
}

func seedDoctor(t *testing.T, db *gorm.DB, phone, officeID string, specIDs ...string) *domain.Doctor {
	t.Helper()
	d, err := NewDoctorService(db, nil).Create(context.Background(), CreateDoctorInput{
		Name:              "Др. Иванова",
		Phone:             phone,
		WorkHoursFrom:     slot(t, "08:00"),
		WorkHoursFor:      slot(t, "17:00"),
		OfficeID:          officeID,
		SpecializationIDs: specIDs,
	})
	if err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return d
}

func seedPatient(t *testing.T, db *gorm.DB, phone, cardID string) *domain.Patient {
	t.Helper()
	p, err := NewPatientService(db, nil).Create(context.Background(), CreatePatientInput{
		Name:      "Петров П.П.",
		BirthDate: slot(t, "00:00").AddDate(-30, 0, 0),
		Phone:     phone,
		CardID:    cardID,
	})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}
