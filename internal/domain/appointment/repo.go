package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	// GetScoped returns the appointment only when it is visible to ident.
	GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error)
	// ListScoped returns ident's visible appointments, optionally filtered
	// by status and date, newest first.
	ListScoped(ctx context.Context, ident auth.Identity, status, date string, limit, offset int) ([]*Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error
	// HasConflict reports whether the doctor already has a non-cancelled
	// appointment at the given date and start time.
	HasConflict(ctx context.Context, doctorID uuid.UUID, date, startTime string) (bool, error)
	// ListByDoctorDate returns a doctor's non-cancelled appointments on a
	// day, for slot availability.
	ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*Appointment, error)
}

// PatientDirectory resolves between patient profiles and the user accounts
// that own them.
type PatientDirectory interface {
	PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	UserIDForPatient(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error)
}

// Notifier pushes in-app messages about appointment changes. Delivery is
// best effort; a nil Notifier disables it.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ, title, message string) error
}

// ScheduleSource exposes doctors' recurring weekly windows.
type ScheduleSource interface {
	WindowsForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]Window, error)
}
