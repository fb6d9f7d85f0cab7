package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is the practice profile attached to a user account with the
// doctor role.
type Doctor struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Specialization  string    `json:"specialization"`
	Qualification   *string   `json:"qualification,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	ConsultationFee float64   `json:"consultation_fee"`
	Bio             *string   `json:"bio,omitempty"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ScheduleEntry is one recurring weekly consultation window. Times are
// clock strings ("09:00") interpreted in the clinic's local time.
type ScheduleEntry struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	DayOfWeek   int       `json:"day_of_week"` // 0 = Sunday
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	SlotMinutes int       `json:"slot_minutes"`
	CreatedAt   time.Time `json:"created_at"`
}
