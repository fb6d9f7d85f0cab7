package medicalrecord

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
	records Repository
	doctors DoctorDirectory
	now     func() time.Time
}

func NewService(records Repository, doctors DoctorDirectory) *Service {
	return &Service{records: records, doctors: doctors, now: time.Now}
}

// Create authors a record as the calling doctor.
func (s *Service) Create(ctx context.Context, ident auth.Identity, in CreateInput) (*Record, error) {
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
	if in.Diagnosis == "" {
		return nil, fmt.Errorf("diagnosis is required")
	}

	rec := &Record{
		PatientID:     in.PatientID,
		DoctorID:      doctorID,
		AppointmentID: in.AppointmentID,
		Diagnosis:     in.Diagnosis,
		Symptoms:      in.Symptoms,
		Treatment:     in.Treatment,
		Notes:         in.Notes,
		RecordDate:    s.now(),
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Record, error) {
	return s.records.GetScoped(ctx, ident, id)
}

func (s *Service) List(ctx context.Context, ident auth.Identity, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.records.ListScoped(ctx, ident, patientID, limit, offset)
}

// Update amends a record. Only the authoring doctor or an admin may amend.
func (s *Service) Update(ctx context.Context, ident auth.Identity, rec *Record) (*Record, error) {
	existing, err := s.records.GetScoped(ctx, ident, rec.ID)
	if err != nil {
		return nil, err
	}
	if ident.Role == auth.RoleDoctor {
		doctorID, err := s.doctors.DoctorIDForUser(ctx, ident.ID)
		if err != nil || existing.DoctorID != doctorID {
			return nil, ErrForbidden
		}
	} else if ident.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	if rec.Diagnosis == "" {
		rec.Diagnosis = existing.Diagnosis
	}
	rec.PatientID = existing.PatientID
	rec.DoctorID = existing.DoctorID
	rec.RecordDate = existing.RecordDate
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
