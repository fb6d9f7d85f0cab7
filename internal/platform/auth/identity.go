package auth

import "github.com/google/uuid"

// Roles understood by the access guard. Every user account carries exactly
// one of these.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// ValidRole reports whether s is one of the known account roles.
func ValidRole(s string) bool {
	return s == RolePatient || s == RoleDoctor || s == RoleAdmin
}

// Identity is the authenticated principal derived from a verified token.
// It is embedded in every issued token and never mutated after issuance;
// a role change requires issuing a new token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}
