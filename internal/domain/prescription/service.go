package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

var ErrForbidden = errors.New("access denied")

type Service struct {
	prescriptions Repository
	doctors       DoctorDirectory
}

func NewService(prescriptions Repository, doctors DoctorDirectory) *Service {
	return &Service{prescriptions: prescriptions, doctors: doctors}
}

// Create issues a prescription as the calling doctor.
func (s *Service) Create(ctx context.Context, ident auth.Identity, in CreateInput) (*Prescription, error) {
	if ident.Role != auth.RoleDoctor {
		return nil, ErrForbidden
	}
	doctorID, err := s.doctors.DoctorIDForUser(ctx, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve doctor profile: %w", err)
	}

	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if len(in.Medications) == 0 {
		return nil, fmt.Errorf("at least one medication is required")
	}
	for i, m := range in.Medications {
		if m.Name == "" || m.Dosage == "" {
			return nil, fmt.Errorf("medication %d: name and dosage are required", i+1)
		}
	}

	p := &Prescription{
		PatientID:       in.PatientID,
		DoctorID:        doctorID,
		MedicalRecordID: in.MedicalRecordID,
		Medications:     in.Medications,
		Instructions:    in.Instructions,
		ValidUntil:      in.ValidUntil,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetScoped(ctx, ident, id)
}

func (s *Service) List(ctx context.Context, ident auth.Identity, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListScoped(ctx, ident, patientID, limit, offset)
}
