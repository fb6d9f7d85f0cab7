package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

// ErrForbidden marks an access attempt outside the caller's ownership scope.
var ErrForbidden = errors.New("access denied")

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// CreateProfile binds the new profile to the calling patient. Admins may
// create a profile for any user id.
func (s *Service) CreateProfile(ctx context.Context, ident auth.Identity, p *Patient) error {
	switch ident.Role {
	case auth.RolePatient:
		p.UserID = ident.ID
	case auth.RoleAdmin:
		if p.UserID == uuid.Nil {
			p.UserID = ident.ID
		}
	default:
		return ErrForbidden
	}
	return s.patients.Create(ctx, p)
}

// Get returns a profile. Doctors and admins may read any profile; a patient
// only their own.
func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Patient, error) {
	switch ident.Role {
	case auth.RoleDoctor, auth.RoleAdmin:
		return s.patients.GetByID(ctx, id)
	case auth.RolePatient:
		return s.patients.GetOwned(ctx, ident.ID, id)
	}
	return nil, ErrForbidden
}

// Mine returns the calling patient's own profile.
func (s *Service) Mine(ctx context.Context, ident auth.Identity) (*Patient, error) {
	return s.patients.GetByUserID(ctx, ident.ID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// Update replaces a profile's mutable fields. Owner or admin only.
func (s *Service) Update(ctx context.Context, ident auth.Identity, p *Patient) error {
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if ident.Role != auth.RoleAdmin && existing.UserID != ident.ID {
		return ErrForbidden
	}
	p.UserID = existing.UserID
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

// PatientIDForUser resolves the profile id owned by a user account. Other
// domains use it to bind caller-created rows to the right patient.
func (s *Service) PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// UserIDForPatient is the reverse lookup, used to deliver notifications to
// a profile's owning account.
func (s *Service) UserIDForPatient(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.UserID, nil
}
