// Package services defines the business logic of the clinic core: the
// soft-delete lifecycle, referential guard, scheduling conflict detection,
// patient-card auditing and the per-entity operations built on them.
// This file centralizes the service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// All of these are recoverable, caller-visible outcomes. They are never
// swallowed and never retried here; translation into user-facing messages or
// HTTP status codes is the job of the excluded transport layer.
package services

import (
	"errors"

	"github.com/medkarta/go-clinic-backend/internal/repo"
)

var (
	// ErrNotFound indicates that the requested id has no row in the
	// operation's scope (active-only for normal lookups, any row for
	// restore and raw lookups).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyActive is returned when restore is requested on a row that
	// is not currently deleted.
	ErrAlreadyActive = errors.New("already active")

	// ErrHasDependents is returned when a deletion is blocked because other
	// active rows still reference this one.
	ErrHasDependents = errors.New("deletion blocked: active dependents exist")

	// ErrInvalidReference is returned when a supplied foreign id does not
	// resolve to an active row.
	ErrInvalidReference = errors.New("reference does not resolve to an active row")

	// ErrScheduleConflict is returned when a proposed appointment window
	// overlaps an existing active appointment of the same doctor.
	ErrScheduleConflict = errors.New("appointment window overlaps an existing appointment")

	// ErrUniqueViolation is returned when a uniqueness rule (phone,
	// specialization name, specialization link pair) would be violated.
	ErrUniqueViolation = errors.New("uniqueness rule violated")

	// ErrInvalidWindow is returned when an appointment window is empty or
	// inverted (from >= to).
	ErrInvalidWindow = errors.New("appointment window is empty or inverted")

	// ErrEmptyField is returned when a required text field (name, phone)
	// is blank after normalization.
	ErrEmptyField = errors.New("required field is empty")
)

// asNotFound maps the repo layer's not-found sentinel to the service-level
// ErrNotFound, passing every other error through untouched.
func asNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
