package medicalrecord

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var ErrNotFound = errors.New("medical record not found")

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Record, error)
	// ListScoped returns ident's visible records, optionally filtered by
	// patient id, newest first.
	ListScoped(ctx context.Context, ident auth.Identity, patientID uuid.UUID, limit, offset int) ([]*Record, int, error)
	Update(ctx context.Context, rec *Record) error
}

// DoctorDirectory resolves the doctor profile owned by a user account.
type DoctorDirectory interface {
	DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}
