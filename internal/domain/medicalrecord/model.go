package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// Record is one consultation's clinical note, authored by a doctor for a
// patient. Visible to the patient it concerns, the authoring doctor, and
// admins.
type Record struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Diagnosis     string     `json:"diagnosis"`
	Symptoms      *string    `json:"symptoms,omitempty"`
	Treatment     *string    `json:"treatment,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	RecordDate    time.Time  `json:"record_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateInput is what a doctor submits for a new record.
type CreateInput struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Diagnosis     string     `json:"diagnosis"`
	Symptoms      *string    `json:"symptoms"`
	Treatment     *string    `json:"treatment"`
	Notes         *string    `json:"notes"`
}
