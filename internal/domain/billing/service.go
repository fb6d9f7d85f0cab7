package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var ErrForbidden = errors.New("access denied")

type Service struct {
	invoices Repository
	doctors  DoctorDirectory
	now      func() time.Time
}

func NewService(invoices Repository, doctors DoctorDirectory) *Service {
	return &Service{invoices: invoices, doctors: doctors, now: time.Now}
}

// CreateInvoice raises an invoice against a patient. A doctor's invoice is
// attributed to their profile; an admin's carries no doctor.
func (s *Service) CreateInvoice(ctx context.Context, ident auth.Identity, in CreateInvoiceInput) (*Invoice, error) {
	if ident.Role != auth.RoleDoctor && ident.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	inv := &Invoice{
		PatientID:     in.PatientID,
		AppointmentID: in.AppointmentID,
		Amount:        in.Amount,
		Description:   in.Description,
		Status:        InvoicePending,
		DueDate:       in.DueDate,
	}
	if ident.Role == auth.RoleDoctor {
		doctorID, err := s.doctors.DoctorIDForUser(ctx, ident.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve doctor profile: %w", err)
		}
		inv.DoctorID = &doctorID
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetScoped(ctx, ident, id)
}

func (s *Service) List(ctx context.Context, ident auth.Identity, status string, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.ListScoped(ctx, ident, status, limit, offset)
}

// Pay settles an invoice in full. Only the owing patient (or an admin on
// their behalf) may pay, and only once.
func (s *Service) Pay(ctx context.Context, ident auth.Identity, invoiceID uuid.UUID, in PayInput) (*Payment, error) {
	if ident.Role != auth.RolePatient && ident.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	inv, err := s.invoices.GetScoped(ctx, ident, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoicePaid {
		return nil, ErrAlreadyPaid
	}
	if inv.Status == InvoiceCancelled {
		return nil, fmt.Errorf("invoice is cancelled")
	}
	if in.Method == "" {
		return nil, fmt.Errorf("payment method is required")
	}

	now := s.now()
	inv.Status = InvoicePaid
	inv.PaidAt = &now

	pay := &Payment{
		InvoiceID: inv.ID,
		Amount:    inv.Amount,
		Method:    in.Method,
		Reference: in.Reference,
	}
	if err := s.invoices.RecordPayment(ctx, inv, pay); err != nil {
		return nil, err
	}
	return pay, nil
}

func (s *Service) Payments(ctx context.Context, ident auth.Identity, invoiceID uuid.UUID) ([]*Payment, error) {
	// Visibility check rides on the scoped invoice read.
	if _, err := s.invoices.GetScoped(ctx, ident, invoiceID); err != nil {
		return nil, err
	}
	return s.invoices.ListPayments(ctx, invoiceID)
}
