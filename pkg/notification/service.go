package notification

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, typ Type, relatedID string) (*Notification, error) {
	notification := Notification{Type: typ, RelatedID: relatedID}
	if err := notification.Validate(); err != nil {
		return nil, err
	}
	stored, err := s.repo.Store(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}
	return &stored, nil
}

// CreateOnce stores a notification unless one of the same type already
// references relatedID. Returns nil when skipped.
func (s *Service) CreateOnce(ctx context.Context, typ Type, relatedID string) (*Notification, error) {
	exists, err := s.repo.HasForRelated(ctx, typ, relatedID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}
	return s.Create(ctx, typ, relatedID)
}

func (s *Service) All(ctx context.Context) ([]Notification, error) {
	return s.repo.All(ctx)
}

func (s *Service) Unread(ctx context.Context) ([]Notification, error) {
	return s.repo.Unread(ctx)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}
