package notification

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type StubNotificationRepository struct {
	Notifications []Notification
}

func NewStubNotificationRepository() *StubNotificationRepository {
	return &StubNotificationRepository{}
}

func (s *StubNotificationRepository) Store(ctx context.Context, notification Notification) (Notification, error) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	s.Notifications = append(s.Notifications, notification)
	return notification, nil
}

func (s *StubNotificationRepository) All(ctx context.Context) ([]Notification, error) {
	out := make([]Notification, len(s.Notifications))
	copy(out, s.Notifications)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *StubNotificationRepository) Unread(ctx context.Context) ([]Notification, error) {
	all, _ := s.All(ctx)
	out := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *StubNotificationRepository) MarkRead(ctx context.Context, id string) error {
	for i, n := range s.Notifications {
		if n.ID == id {
			s.Notifications[i].Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (s *StubNotificationRepository) HasForRelated(ctx context.Context, typ Type, relatedID string) (bool, error) {
	for _, n := range s.Notifications {
		if n.Type == typ && n.RelatedID == relatedID {
			return true, nil
		}
	}
	return false, nil
}
