package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var ErrForbidden = errors.New("access denied")

type Service struct {
	doctors   Repository
	schedules ScheduleRepository
}

func NewService(doctors Repository, schedules ScheduleRepository) *Service {
	return &Service{doctors: doctors, schedules: schedules}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) Mine(ctx context.Context, ident auth.Identity) (*Doctor, error) {
	return s.doctors.GetByUserID(ctx, ident.ID)
}

func (s *Service) List(ctx context.Context, specialization string, availableOnly bool, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, specialization, availableOnly, limit, offset)
}

// Update replaces a doctor's mutable fields. Owner or admin only.
func (s *Service) Update(ctx context.Context, ident auth.Identity, d *Doctor) error {
	existing, err := s.doctors.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	if ident.Role != auth.RoleAdmin && existing.UserID != ident.ID {
		return ErrForbidden
	}
	d.UserID = existing.UserID
	return s.doctors.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

// ReplaceSchedule swaps a doctor's weekly consultation windows. Owner or
// admin only.
func (s *Service) ReplaceSchedule(ctx context.Context, ident auth.Identity, doctorID uuid.UUID, entries []*ScheduleEntry) error {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return err
	}
	if ident.Role != auth.RoleAdmin && d.UserID != ident.ID {
		return ErrForbidden
	}
	for _, e := range entries {
		if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
			return fmt.Errorf("day_of_week must be 0-6, got %d", e.DayOfWeek)
		}
		if e.StartTime == "" || e.EndTime == "" || e.StartTime >= e.EndTime {
			return fmt.Errorf("invalid window %s-%s", e.StartTime, e.EndTime)
		}
		if e.SlotMinutes <= 0 {
			e.SlotMinutes = 30
		}
	}
	return s.schedules.Replace(ctx, doctorID, entries)
}

func (s *Service) GetSchedule(ctx context.Context, doctorID uuid.UUID) ([]*ScheduleEntry, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.schedules.ListByDoctor(ctx, doctorID)
}

// WindowsForDay feeds appointment slot computation.
func (s *Service) WindowsForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*ScheduleEntry, error) {
	return s.schedules.ListByDoctorDay(ctx, doctorID, dayOfWeek)
}

// DoctorIDForUser resolves the profile id owned by a user account. Other
// domains use it to attribute caller-created rows to the right doctor.
func (s *Service) DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	d, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return d.ID, nil
}
