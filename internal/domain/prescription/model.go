package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Medication is one line item on a prescription. The list is stored as a
// JSONB document alongside the row.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	DurationDays int    `json:"duration_days"`
}

type Prescription struct {
	ID              uuid.UUID    `json:"id"`
	PatientID       uuid.UUID    `json:"patient_id"`
	DoctorID        uuid.UUID    `json:"doctor_id"`
	MedicalRecordID *uuid.UUID   `json:"medical_record_id,omitempty"`
	Medications     []Medication `json:"medications"`
	Instructions    *string      `json:"instructions,omitempty"`
	ValidUntil      *time.Time   `json:"valid_until,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type CreateInput struct {
	PatientID       uuid.UUID    `json:"patient_id"`
	MedicalRecordID *uuid.UUID   `json:"medical_record_id"`
	Medications     []Medication `json:"medications"`
	Instructions    *string      `json:"instructions"`
	ValidUntil      *time.Time   `json:"valid_until"`
}
