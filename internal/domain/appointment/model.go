package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true,
	StatusCompleted: true, StatusCancelled: true,
}

// Appointment is a booked consultation. Date is a local calendar day
// ("2006-01-02"); Start/End are clinic-local clock strings ("09:30").
type Appointment struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	Date        string     `json:"date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Status      string     `json:"status"`
	Reason      *string    `json:"reason,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BookInput is what a patient submits to book a consultation.
type BookInput struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	Reason    *string   `json:"reason"`
}

// Slot is one bookable window offered to callers.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Window is a doctor's recurring consultation window for one weekday,
// resolved through the schedule source.
type Window struct {
	StartTime   string
	EndTime     string
	SlotMinutes int
}
