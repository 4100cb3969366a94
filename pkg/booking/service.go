package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/slotdesk/slotdesk/internal/redislock"
	"github.com/slotdesk/slotdesk/pkg/calendar"
	"github.com/slotdesk/slotdesk/pkg/notification"
	"github.com/slotdesk/slotdesk/pkg/prospect"
)

// Calendar is the slice of the calendar service the booking flow needs.
type Calendar interface {
	GetEvent(ctx context.Context, id string) (*calendar.Event, error)
	EventsInRange(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
	ConvertOpenSlot(ctx context.Context, id string) (*calendar.Event, error)
}

// ProspectRegistrar records the visitor in the CRM.
type ProspectRegistrar interface {
	EnsurePerson(ctx context.Context, name, email string) (*prospect.Prospect, error)
}

// Notifier raises an inbox notification for the admin.
type Notifier interface {
	Create(ctx context.Context, typ notification.Type, relatedID string) (*notification.Notification, error)
}

type Service struct {
	repo      Repository
	calendar  Calendar
	locker    redislock.Locker
	prospects ProspectRegistrar
	notifier  Notifier
}

func NewService(
	repo Repository,
	cal Calendar,
	locker redislock.Locker,
	prospects ProspectRegistrar,
	notifier Notifier,
) *Service {
	return &Service{
		repo:      repo,
		calendar:  cal,
		locker:    locker,
		prospects: prospects,
		notifier:  notifier,
	}
}

// OpenSlots returns the publicly bookable slots overlapping [from, to].
func (s *Service) OpenSlots(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	events, err := s.calendar.EventsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	slots := make([]calendar.Event, 0, len(events))
	for _, e := range events {
		if e.Status == calendar.StatusOpenSlot && e.Visibility == calendar.VisibilityPublicOpen {
			slots = append(slots, e)
		}
	}
	return slots, nil
}

// Book claims an open slot for a visitor. The per-slot lock arbitrates
// concurrent claims; the slot state is re-read under the lock so the first
// confirmed booking wins and every later attempt gets ErrSlotTaken.
func (s *Service) Book(ctx context.Context, input CreateBookingInput) (*BookingRequest, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Cheap pre-check before taking the lock.
	if _, err := s.loadOpenSlot(ctx, input.SlotID); err != nil {
		return nil, err
	}

	var request BookingRequest
	err := s.locker.WithSlotLock(ctx, input.SlotID, func(ctx context.Context) error {
		slot, err := s.loadOpenSlot(ctx, input.SlotID)
		if err != nil {
			return err
		}

		taken, err := s.timeClaimed(ctx, *slot)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}

		request, err = s.repo.Store(ctx, BookingRequest{
			CalendarEventID:   slot.ID,
			Name:              input.Name,
			Email:             input.Email,
			Message:           input.Message,
			TimezoneAtBooking: input.Timezone,
			Status:            StatusConfirmed,
		})
		if err != nil {
			return fmt.Errorf("failed to store booking request: %w", err)
		}

		if _, err := s.calendar.ConvertOpenSlot(ctx, slot.ID); err != nil {
			// Compensate: a confirmed request must not outlive a failed
			// claim, or a retry would double-book the slot.
			if delErr := s.repo.Delete(ctx, request.ID); delErr != nil {
				log.Errorf("could not roll back booking request %s: %v", request.ID, delErr)
			}
			return fmt.Errorf("failed to claim slot: %w", err)
		}
		return nil
	})
	if errors.Is(err, redislock.ErrLockNotAcquired) {
		return nil, ErrSlotTaken
	}
	if err != nil {
		return nil, err
	}

	// CRM and inbox updates are best-effort: the booking holds even when
	// they fail.
	if _, err := s.prospects.EnsurePerson(ctx, input.Name, input.Email); err != nil {
		log.Errorf("could not record prospect for booking %s: %v", request.ID, err)
	}
	if _, err := s.notifier.Create(ctx, notification.TypeBookingRequest, request.ID); err != nil {
		log.Errorf("could not notify about booking %s: %v", request.ID, err)
	}

	return &request, nil
}

// RequestsForEvent lists the booking requests attached to a calendar event.
func (s *Service) RequestsForEvent(ctx context.Context, eventID string) ([]BookingRequest, error) {
	return s.repo.ForEvent(ctx, eventID)
}

func (s *Service) loadOpenSlot(ctx context.Context, slotID string) (*calendar.Event, error) {
	slot, err := s.calendar.GetEvent(ctx, slotID)
	if errors.Is(err, calendar.ErrEventNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	if slot.Status != calendar.StatusOpenSlot || slot.Visibility != calendar.VisibilityPublicOpen {
		return nil, ErrSlotTaken
	}
	return slot, nil
}

// timeClaimed reports whether another non-open event already occupies the
// slot's time span.
func (s *Service) timeClaimed(ctx context.Context, slot calendar.Event) (bool, error) {
	events, err := s.calendar.EventsInRange(ctx, slot.Start, slot.End)
	if err != nil {
		return false, err
	}
	for _, e := range events {
		if e.ID == slot.ID || e.Status == calendar.StatusOpenSlot || e.Status == calendar.StatusCancelled {
			continue
		}
		if calendar.RangesOverlap(e.Start, e.End, slot.Start, slot.End) {
			return true, nil
		}
	}
	return false, nil
}
