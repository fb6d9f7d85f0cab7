package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

type Service struct {
	notifications Repository
}

func NewService(notifications Repository) *Service {
	return &Service{notifications: notifications}
}

// Notify is called by other domains (and admin tooling) to push a message
// to a user.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, typ, title, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	n := &Notification{UserID: userID, Title: title, Message: message, Type: typ}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, ident auth.Identity, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.notifications.ListByUser(ctx, ident.ID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	return s.notifications.MarkRead(ctx, ident.ID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, ident auth.Identity) (int64, error) {
	return s.notifications.MarkAllRead(ctx, ident.ID)
}

func (s *Service) Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	return s.notifications.Delete(ctx, ident.ID, id)
}
