package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvoicePending   = "pending"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

type Invoice struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	DoctorID      *uuid.UUID `json:"doctor_id,omitempty"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Amount        float64    `json:"amount"`
	Description   *string    `json:"description,omitempty"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Payment records a settled invoice. There is no gateway integration; the
// row is the receipt.
type Payment struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Reference *string   `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateInvoiceInput struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Amount        float64    `json:"amount"`
	Description   *string    `json:"description"`
	DueDate       *time.Time `json:"due_date"`
}

type PayInput struct {
	Method    string  `json:"method"`
	Reference *string `json:"reference"`
}
