package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var (
	ErrNotFound    = errors.New("invoice not found")
	ErrAlreadyPaid = errors.New("invoice already paid")
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Invoice, error)
	ListScoped(ctx context.Context, ident auth.Identity, status string, limit, offset int) ([]*Invoice, int, error)
	// RecordPayment inserts the payment and marks the invoice paid in one
	// transaction.
	RecordPayment(ctx context.Context, inv *Invoice, pay *Payment) error
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}

// DoctorDirectory resolves the doctor profile owned by a user account.
type DoctorDirectory interface {
	DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}
