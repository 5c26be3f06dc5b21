// Package repo implements the data persistence layer for the clinic domain
// entities, backed by GORM. This file contains database bootstrapping helpers
// for SQLite (pure Go driver) and Postgres, schema migrations, and the shared
// error sentinels of the layer.
//
// All repository functions are context-aware and accept a *gorm.DB handle,
// making them safe for use within transactions or connection-scoped
// operations. They follow the "thin repository" approach: no business logic,
// only CRUD persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-constraint violations are mapped to ErrDuplicate.
//   - Other DB errors (connectivity, unmodeled constraints) are propagated raw.
package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist in the
// operation's scope. It aliases gorm.ErrRecordNotFound for consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that an insert or update violated a uniqueness rule.
var ErrDuplicate = errors.New("duplicate")

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// OpenPostgres opens a Postgres database from a DSN and configures the pool.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate applies the schema for every domain model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Office{},
		&domain.Specialization{},
		&domain.DoctorSpecialization{},
		&domain.Doctor{},
		&domain.PatientCard{},
		&domain.CardChange{},
		&domain.Patient{},
		&domain.Appointment{},
	)
}

// IsDuplicate reports whether err is a unique-constraint violation, covering
// drivers that do not map to gorm.ErrDuplicatedKey.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite: "UNIQUE constraint failed"
	// postgres: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
