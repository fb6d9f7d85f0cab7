package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

type mockRepo struct {
	items map[uuid.UUID]*Notification
}

func newMockRepo() *mockRepo { return &mockRepo{items: make(map[uuid.UUID]*Notification)} }

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	n.ID = uuid.New()
	if n.Type == "" {
		n.Type = TypeSystem
	}
	m.items[n.ID] = n
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range m.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (m *mockRepo) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	n, ok := m.items[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	return nil
}

func (m *mockRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	n, ok := m.items[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestNotifyAndList(t *testing.T) {
	svc := NewService(newMockRepo())
	user := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}

	n, err := svc.Notify(context.Background(), user.ID, TypeAppointment, "Appointment confirmed", "See you Monday 09:30")
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if n.Type != TypeAppointment {
		t.Errorf("type = %q", n.Type)
	}

	items, total, err := svc.List(context.Background(), user, false, 20, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 1 || items[0].Read {
		t.Errorf("expected one unread notification, got total=%d", total)
	}
}

func TestNotify_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Notify(context.Background(), uuid.Nil, TypeSystem, "t", "m"); err == nil {
		t.Error("expected error for missing user_id")
	}
	if _, err := svc.Notify(context.Background(), uuid.New(), TypeSystem, "", "m"); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestList_UserKeyed(t *testing.T) {
	svc := NewService(newMockRepo())
	alice := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}
	bella := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}

	if _, err := svc.Notify(context.Background(), alice.ID, TypeSystem, "For Alice", ""); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	if _, total, _ := svc.List(context.Background(), bella, false, 20, 0); total != 0 {
		t.Errorf("foreign user sees %d notifications, want 0", total)
	}
}

func TestMarkRead_OwnOnly(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}
	other := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}

	n, err := svc.Notify(context.Background(), owner.ID, TypeSystem, "Hello", "")
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	if err := svc.MarkRead(context.Background(), other, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign mark-read: expected ErrNotFound, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), owner, n.ID); err != nil {
		t.Errorf("owner mark-read failed: %v", err)
	}

	items, _, _ := svc.List(context.Background(), owner, true, 20, 0)
	if len(items) != 0 {
		t.Error("expected no unread notifications after mark-read")
	}
}

func TestMarkAllRead(t *testing.T) {
	svc := NewService(newMockRepo())
	user := auth.Identity{ID: uuid.New(), Role: auth.RoleDoctor}

	for i := 0; i < 3; i++ {
		if _, err := svc.Notify(context.Background(), user.ID, TypeSystem, "n", ""); err != nil {
			t.Fatalf("Notify() error: %v", err)
		}
	}

	updated, err := svc.MarkAllRead(context.Background(), user)
	if err != nil {
		t.Fatalf("MarkAllRead() error: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3", updated)
	}
}

func TestDelete_OwnOnly(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}
	other := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}

	n, err := svc.Notify(context.Background(), owner.ID, TypeSystem, "Hello", "")
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	if err := svc.Delete(context.Background(), other, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), owner, n.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}
