package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeAppointment = "appointment"
	TypeBilling     = "billing"
	TypeSystem      = "system"
)

// Notification is a user-facing message. Rows are keyed directly on the
// recipient's user id; nobody else can see them.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
