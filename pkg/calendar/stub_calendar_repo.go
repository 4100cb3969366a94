package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type StubCalendarRepository struct {
	Events map[string]Event
}

func NewStubCalendarRepository() *StubCalendarRepository {
	return &StubCalendarRepository{Events: map[string]Event{}}
}

func (s *StubCalendarRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(s)
}

func (s *StubCalendarRepository) StoreEvent(ctx context.Context, event Event) (Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	s.Events[event.ID] = event
	return event, nil
}

func (s *StubCalendarRepository) GetEvent(ctx context.Context, id string) (Event, error) {
	event, ok := s.Events[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (s *StubCalendarRepository) EventsInRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	var out []Event
	for _, e := range s.Events {
		if e.Recurrence != nil {
			continue
		}
		if !e.Start.After(to) && e.End.After(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *StubCalendarRepository) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	if _, ok := s.Events[event.ID]; !ok {
		return Event{}, ErrEventNotFound
	}
	s.Events[event.ID] = event
	return event, nil
}

func (s *StubCalendarRepository) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := s.Events[id]; !ok {
		return ErrEventNotFound
	}
	delete(s.Events, id)
	return nil
}

func (s *StubCalendarRepository) DeleteOccurrences(ctx context.Context, templateID string) error {
	for id, e := range s.Events {
		if e.RecurrenceParentID == templateID {
			delete(s.Events, id)
		}
	}
	return nil
}

func (s *StubCalendarRepository) Cleanup() {
	s.Events = map[string]Event{}
}
