package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var (
	ErrForbidden    = errors.New("access denied")
	ErrSlotTaken    = errors.New("slot already booked")
	ErrOutsideHours = errors.New("time is outside the doctor's consultation hours")
)

type Service struct {
	appts    Repository
	patients PatientDirectory
	schedule ScheduleSource
	notifier Notifier
	now      func() time.Time
}

func NewService(appts Repository, patients PatientDirectory, schedule ScheduleSource, notifier Notifier) *Service {
	return &Service{appts: appts, patients: patients, schedule: schedule, notifier: notifier, now: time.Now}
}

// Book creates a pending appointment for the calling patient. The start
// time must land on a slot boundary inside one of the doctor's windows for
// that weekday, and the slot must still be free.
func (s *Service) Book(ctx context.Context, ident auth.Identity, in BookInput) (*Appointment, error) {
	if ident.Role != auth.RolePatient {
		return nil, ErrForbidden
	}
	patientID, err := s.patients.PatientIDForUser(ctx, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve patient profile: %w", err)
	}

	if in.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	day, err := time.ParseInLocation("2006-01-02", in.Date, s.now().Location())
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD")
	}
	today := s.now().Truncate(24 * time.Hour)
	if day.Before(today.Add(-time.Hour)) { // tolerate tz skew on today
		return nil, fmt.Errorf("cannot book a past date")
	}

	startMin, err := parseClock(in.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start_time must be HH:MM")
	}

	windows, err := s.schedule.WindowsForDay(ctx, in.DoctorID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	endTime := ""
	for _, w := range windows {
		ws, err1 := parseClock(w.StartTime)
		we, err2 := parseClock(w.EndTime)
		if err1 != nil || err2 != nil || w.SlotMinutes <= 0 {
			continue
		}
		if startMin < ws || startMin+w.SlotMinutes > we {
			continue
		}
		if (startMin-ws)%w.SlotMinutes != 0 {
			continue
		}
		endTime = formatClock(startMin + w.SlotMinutes)
		break
	}
	if endTime == "" {
		return nil, ErrOutsideHours
	}

	taken, err := s.appts.HasConflict(ctx, in.DoctorID, in.Date, in.StartTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	a := &Appointment{
		PatientID: patientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   endTime,
		Status:    StatusPending,
		Reason:    in.Reason,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetScoped(ctx, ident, id)
}

func (s *Service) List(ctx context.Context, ident auth.Identity, status, date string, limit, offset int) ([]*Appointment, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.appts.ListScoped(ctx, ident, status, date, limit, offset)
}

// UpdateStatus moves an appointment through its lifecycle. Only doctors
// (their own appointments) and admins may call it; cancelled appointments
// are terminal.
func (s *Service) UpdateStatus(ctx context.Context, ident auth.Identity, id uuid.UUID, status string, notes *string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	a, err := s.appts.GetScoped(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return nil, fmt.Errorf("appointment is cancelled")
	}
	a.Status = status
	if status == StatusCancelled {
		now := s.now()
		a.CancelledAt = &now
	}
	if notes != nil {
		a.Notes = notes
	}
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	s.notifyPatient(ctx, ident, a, fmt.Sprintf("Appointment %s", a.Status),
		fmt.Sprintf("Your appointment on %s at %s is now %s.", a.Date, a.StartTime, a.Status))
	return a, nil
}

// Cancel lets any visible party cancel an upcoming appointment.
func (s *Service) Cancel(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetScoped(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return nil, fmt.Errorf("appointment already completed")
	}
	if a.Status == StatusCancelled {
		return a, nil
	}
	a.Status = StatusCancelled
	now := s.now()
	a.CancelledAt = &now
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	s.notifyPatient(ctx, ident, a, "Appointment cancelled",
		fmt.Sprintf("Your appointment on %s at %s was cancelled.", a.Date, a.StartTime))
	return a, nil
}

// notifyPatient tells the owning patient about a change made by someone
// else. Failures are dropped: a lost notification must never fail the
// operation that triggered it.
func (s *Service) notifyPatient(ctx context.Context, actor auth.Identity, a *Appointment, title, message string) {
	if s.notifier == nil || actor.Role == auth.RolePatient {
		return
	}
	userID, err := s.patients.UserIDForPatient(ctx, a.PatientID)
	if err != nil {
		return
	}
	_ = s.notifier.Notify(ctx, userID, "appointment", title, message)
}

// AvailableSlots expands a doctor's windows for a day and removes slots
// already taken by non-cancelled appointments.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]Slot, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD")
	}

	windows, err := s.schedule.WindowsForDay(ctx, doctorID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	booked, err := s.appts.ListByDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, a := range booked {
		taken[a.StartTime] = true
	}

	slots := []Slot{}
	for _, w := range windows {
		ws, err1 := parseClock(w.StartTime)
		we, err2 := parseClock(w.EndTime)
		if err1 != nil || err2 != nil || w.SlotMinutes <= 0 {
			continue
		}
		for t := ws; t+w.SlotMinutes <= we; t += w.SlotMinutes {
			start := formatClock(t)
			if taken[start] {
				continue
			}
			slots = append(slots, Slot{StartTime: start, EndTime: formatClock(t + w.SlotMinutes)})
		}
	}
	return slots, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
