package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

type mockRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockRepo() *mockRepo { return &mockRepo{doctors: make(map[uuid.UUID]*Doctor)} }

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	for _, existing := range m.doctors {
		if existing.UserID == d.UserID {
			return ErrDuplicateProfile
		}
	}
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	for _, d := range m.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, spec string, availableOnly bool, limit, offset int) ([]*Doctor, int, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		if availableOnly && !d.Available {
			continue
		}
		items = append(items, d)
	}
	return items, len(items), nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

type mockScheduleRepo struct {
	entries map[uuid.UUID][]*ScheduleEntry
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{entries: make(map[uuid.UUID][]*ScheduleEntry)}
}

func (m *mockScheduleRepo) Replace(_ context.Context, doctorID uuid.UUID, entries []*ScheduleEntry) error {
	for _, e := range entries {
		e.ID = uuid.New()
		e.DoctorID = doctorID
	}
	m.entries[doctorID] = entries
	return nil
}

func (m *mockScheduleRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*ScheduleEntry, error) {
	return m.entries[doctorID], nil
}

func (m *mockScheduleRepo) ListByDoctorDay(_ context.Context, doctorID uuid.UUID, day int) ([]*ScheduleEntry, error) {
	var out []*ScheduleEntry
	for _, e := range m.entries[doctorID] {
		if e.DayOfWeek == day {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestService() (*Service, *mockRepo, *mockScheduleRepo) {
	repo := newMockRepo()
	sched := newMockScheduleRepo()
	return NewService(repo, sched), repo, sched
}

func seedDoctor(t *testing.T, svc *Service) *Doctor {
	t.Helper()
	d := &Doctor{UserID: uuid.New(), Specialization: "Cardiology", Available: true}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return d
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Create(context.Background(), &Doctor{Specialization: "ENT"}); err == nil {
		t.Error("expected error for missing user_id")
	}
	if err := svc.Create(context.Background(), &Doctor{UserID: uuid.New()}); err == nil {
		t.Error("expected error for missing specialization")
	}
}

func TestUpdate_OwnerOrAdminOnly(t *testing.T) {
	svc, _, _ := newTestService()
	d := seedDoctor(t, svc)

	owner := auth.Identity{ID: d.UserID, Role: auth.RoleDoctor}
	upd := &Doctor{ID: d.ID, Specialization: "General Medicine", Available: false}
	if err := svc.Update(context.Background(), owner, upd); err != nil {
		t.Errorf("owner update failed: %v", err)
	}

	other := auth.Identity{ID: uuid.New(), Role: auth.RoleDoctor}
	if err := svc.Update(context.Background(), other, upd); !errors.Is(err, ErrForbidden) {
		t.Errorf("other doctor update: expected ErrForbidden, got %v", err)
	}

	admin := auth.Identity{ID: uuid.New(), Role: auth.RoleAdmin}
	if err := svc.Update(context.Background(), admin, upd); err != nil {
		t.Errorf("admin update failed: %v", err)
	}
}

func TestReplaceSchedule_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	d := seedDoctor(t, svc)
	owner := auth.Identity{ID: d.UserID, Role: auth.RoleDoctor}

	bad := []*ScheduleEntry{{DayOfWeek: 7, StartTime: "09:00", EndTime: "12:00"}}
	if err := svc.ReplaceSchedule(context.Background(), owner, d.ID, bad); err == nil {
		t.Error("expected error for day_of_week 7")
	}

	inverted := []*ScheduleEntry{{DayOfWeek: 1, StartTime: "12:00", EndTime: "09:00"}}
	if err := svc.ReplaceSchedule(context.Background(), owner, d.ID, inverted); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestReplaceSchedule_DefaultsSlotLength(t *testing.T) {
	svc, _, sched := newTestService()
	d := seedDoctor(t, svc)
	owner := auth.Identity{ID: d.UserID, Role: auth.RoleDoctor}

	entries := []*ScheduleEntry{{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}}
	if err := svc.ReplaceSchedule(context.Background(), owner, d.ID, entries); err != nil {
		t.Fatalf("ReplaceSchedule() error: %v", err)
	}
	stored := sched.entries[d.ID]
	if len(stored) != 1 || stored[0].SlotMinutes != 30 {
		t.Errorf("expected default 30 minute slots, got %+v", stored)
	}
}

func TestReplaceSchedule_ForeignDoctorForbidden(t *testing.T) {
	svc, _, _ := newTestService()
	d := seedDoctor(t, svc)

	other := auth.Identity{ID: uuid.New(), Role: auth.RoleDoctor}
	entries := []*ScheduleEntry{{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}}
	if err := svc.ReplaceSchedule(context.Background(), other, d.ID, entries); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
