package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("doctor not found")
	ErrDuplicateProfile = errors.New("doctor profile already exists")
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	// List returns doctors, optionally filtered by specialization and
	// availability.
	List(ctx context.Context, specialization string, availableOnly bool, limit, offset int) ([]*Doctor, int, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ScheduleRepository interface {
	// Replace swaps a doctor's full weekly schedule in one transaction.
	Replace(ctx context.Context, doctorID uuid.UUID, entries []*ScheduleEntry) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*ScheduleEntry, error)
	ListByDoctorDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*ScheduleEntry, error)
}
