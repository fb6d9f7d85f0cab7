package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var ErrNotFound = errors.New("prescription not found")

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Prescription, error)
	ListScoped(ctx context.Context, ident auth.Identity, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
}

// DoctorDirectory resolves the doctor profile owned by a user account.
type DoctorDirectory interface {
	DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}
