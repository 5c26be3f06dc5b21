// Package domain defines the persistence models for the clinic registry:
// offices, specializations, doctors, patients, patient medical cards and
// appointments. These types are mapped with GORM and form the core data
// layer of the application.
//
// Every entity except CardChange carries an IsDeleted tombstone. Rows are
// never physically removed by ordinary operations; "deleted" rows are merely
// invisible to active-scoped queries and can be restored later. CardChange
// rows are append-only and immutable once written.
package domain

import "time"

// Office is a physical room doctors receive patients in.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: human-readable office label (e.g. "Cabinet 214").
//   - IsDeleted: soft deletion tombstone; deleted offices stay referencable
//     by historical rows but are excluded from active lookups.
type Office struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	IsDeleted bool      `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Office.
func (Office) TableName() string { return "offices" }

// Specialization is a medical discipline a doctor can practice. Names are
// unique among active rows only; a deleted specialization may share a name
// with an active one.
type Specialization struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	IsDeleted   bool      `json:"is_deleted"  gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Specialization.
func (Specialization) TableName() string { return "specializations" }

// DoctorSpecialization links a doctor to one of their specializations.
// The composite primary key forbids duplicate links per pair.
type DoctorSpecialization struct {
	DoctorID         string    `json:"doctor_id"         gorm:"type:char(36);primaryKey"`
	SpecializationID string    `json:"specialization_id" gorm:"type:char(36);primaryKey;index"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for DoctorSpecialization.
func (DoctorSpecialization) TableName() string { return "doctor_specializations" }

// Doctor represents a practicing physician assigned to an office.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Name: full name, normalized before persistence.
//   - Phone: contact number, unique among active doctors.
//   - WorkHoursFrom / WorkHoursFor: daily working window.
//   - OfficeID: foreign key to the assigned office; must point at an active
//     office at creation/update time.
type Doctor struct {
	ID            string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Name          string    `json:"name"            gorm:"type:varchar(255);not null"`
	Phone         string    `json:"phone"           gorm:"type:varchar(32);not null;index"`
	WorkHoursFrom time.Time `json:"work_hours_from" gorm:"not null"`
	WorkHoursFor  time.Time `json:"work_hours_for"  gorm:"not null"`
	OfficeID      string    `json:"office_id"       gorm:"type:char(36);not null;index"`
	IsDeleted     bool      `json:"is_deleted"      gorm:"not null;default:false;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Doctor.
func (Doctor) TableName() string { return "doctors" }

// PatientCard is the medical record attached one-to-one to a patient.
// Changes to Diagnosis or Meds are mirrored into the append-only CardChange
// log by the card service; the column values here always reflect the latest
// state.
type PatientCard struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Symptoms  string    `json:"symptoms"   gorm:"type:text"`
	Diagnosis string    `json:"diagnosis"  gorm:"type:text"`
	Meds      string    `json:"meds"       gorm:"type:text"`
	IsDeleted bool      `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for PatientCard.
func (PatientCard) TableName() string { return "patient_cards" }

// CardChange is one immutable audit entry recording a diagnosis/meds change
// on a patient card. Rows are written once, inside the same transaction as
// the card update, and are never edited or removed. There is deliberately no
// IsDeleted column.
//
// Fields:
//   - ChangedAt: server-assigned UTC timestamp; rows are read newest-first.
//   - ChangedBy: identifier of the actor who performed the change.
//   - Old*/New*: prior and new values of the audited columns.
//   - Reason: free-text justification supplied by the caller.
type CardChange struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	CardID       string    `json:"card_id"       gorm:"type:char(36);not null;index:idx_card_changes,priority:1"`
	ChangedAt    time.Time `json:"changed_at"    gorm:"not null;index:idx_card_changes,priority:2"`
	ChangedBy    string    `json:"changed_by"    gorm:"type:varchar(255);not null"`
	OldDiagnosis string    `json:"old_diagnosis" gorm:"type:text"`
	NewDiagnosis string    `json:"new_diagnosis" gorm:"type:text"`
	OldMeds      string    `json:"old_meds"      gorm:"type:text"`
	NewMeds      string    `json:"new_meds"      gorm:"type:text"`
	Reason       string    `json:"reason"        gorm:"type:text"`
}

// TableName returns the database table name for CardChange.
func (CardChange) TableName() string { return "patient_card_changes" }

// Patient represents a registered patient holding exactly one medical card.
//
// Fields:
//   - Phone: unique among active patients.
//   - CardID: foreign key to the patient card; the referenced card must be
//     active and not already assigned to another active patient.
type Patient struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"         gorm:"type:varchar(255);not null"`
	BirthDate   time.Time `json:"birth_date"   gorm:"not null"`
	Phone       string    `json:"phone"        gorm:"type:varchar(32);not null;index"`
	InsuranceID string    `json:"insurance_id" gorm:"type:varchar(64);not null"`
	CardID      string    `json:"card_id"      gorm:"type:char(36);not null;index"`
	IsDeleted   bool      `json:"is_deleted"   gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Patient.
func (Patient) TableName() string { return "patients" }

// Appointment is a booked visit of a patient to a doctor in an office.
// The reserved slot is the half-open window [WorkHoursFrom, WorkHoursFor);
// two active appointments of the same doctor must not overlap, while
// back-to-back windows (one ends exactly when another starts) are allowed.
type Appointment struct {
	ID            string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Date          time.Time `json:"date"            gorm:"not null;index"`
	DoctorID      string    `json:"doctor_id"       gorm:"type:char(36);not null;index:idx_doctor_slots,priority:1"`
	PatientID     string    `json:"patient_id"      gorm:"type:char(36);not null;index"`
	OfficeID      string    `json:"office_id"       gorm:"type:char(36);not null;index"`
	CardID        string    `json:"card_id"         gorm:"type:char(36);not null;index"`
	InsuranceID   string    `json:"insurance_id"    gorm:"type:varchar(64);not null"`
	WorkHoursFrom time.Time `json:"work_hours_from" gorm:"not null;index:idx_doctor_slots,priority:2"`
	WorkHoursFor  time.Time `json:"work_hours_for"  gorm:"not null"`
	IsDeleted     bool      `json:"is_deleted"      gorm:"not null;default:false;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Appointment.
func (Appointment) TableName() string { return "appointments" }
