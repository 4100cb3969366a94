package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EditMode selects whether an edit targets one occurrence or the whole series.
type EditMode string

const (
	EditSingle EditMode = "single"
	EditSeries EditMode = "series"
)

// ParseEditMode maps the wire value to an EditMode, defaulting to single.
func ParseEditMode(s string) (EditMode, error) {
	switch s {
	case "", string(EditSingle):
		return EditSingle, nil
	case string(EditSeries):
		return EditSeries, nil
	}
	return "", fmt.Errorf("unknown edit mode %q", s)
}

var ErrNotOpenSlot = errors.New("event is not an open slot")

type EventInput struct {
	Title      string
	Agenda     string
	Notes      string
	Start      time.Time
	End        time.Time
	Timezone   string
	Status     Status
	Visibility Visibility
	Recurrence *RecurrenceRule
	Color      string
}

// UpdateInput carries partial updates; nil fields are left untouched.
// ClearRecurrence removes an existing rule (a nil Recurrence alone means
// "not provided").
type UpdateInput struct {
	Title           *string
	Agenda          *string
	Notes           *string
	Start           *time.Time
	End             *time.Time
	Timezone        *string
	Status          *Status
	Visibility      *Visibility
	Color           *string
	Recurrence      *RecurrenceRule
	ClearRecurrence bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateEvent validates and persists a new event. When the input carries a
// recurrence rule the stored template is materialized into occurrence rows in
// the same transaction; the returned record is the template.
func (s *Service) CreateEvent(ctx context.Context, input EventInput) (*Event, error) {
	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("unknown timezone %q", timezone)
	}

	event := Event{
		Title:      input.Title,
		Agenda:     input.Agenda,
		Notes:      input.Notes,
		Start:      input.Start.UTC(),
		End:        input.End.UTC(),
		Timezone:   timezone,
		Status:     input.Status,
		Visibility: input.Visibility,
		Recurrence: input.Recurrence,
		Color:      input.Color,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if event.Recurrence == nil {
		stored, err := s.repo.StoreEvent(ctx, event)
		if err != nil {
			return nil, fmt.Errorf("failed to store event: %w", err)
		}
		return &stored, nil
	}

	var stored Event
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		stored, err = repo.StoreEvent(ctx, event)
		if err != nil {
			return fmt.Errorf("failed to store template: %w", err)
		}
		return storeOccurrences(ctx, repo, stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetEvent loads a single event (template, occurrence, or standalone) by id.
func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// EventsInRange returns the displayable events overlapping [from, to] sorted
// by start time. Recurring series appear as their materialized occurrences.
func (s *Service) EventsInRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	return s.repo.EventsInRange(ctx, from, to)
}

// UpdateEvent applies a partial update. EditSingle mutates only the addressed
// row, detaching nothing. EditSeries resolves the recurring template (from an
// occurrence if needed), updates it, and re-materializes its occurrences. A
// template addressed directly is always treated as a series update, whatever
// the mode: editing it alone would leave its occurrences diverged.
func (s *Service) UpdateEvent(ctx context.Context, id string, input UpdateInput, mode EditMode) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if !event.IsTemplate() && (mode == EditSingle || !event.IsOccurrence()) {
		applyUpdate(&event, input)
		if err := event.Validate(); err != nil {
			return nil, err
		}
		updated, err := s.repo.UpdateEvent(ctx, event)
		if err != nil {
			return nil, fmt.Errorf("failed to update event: %w", err)
		}
		return &updated, nil
	}

	// Series: resolve to the template.
	template := event
	if event.IsOccurrence() {
		template, err = s.repo.GetEvent(ctx, event.RecurrenceParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load recurrence template: %w", err)
		}
	}

	applyUpdate(&template, input)
	if err := template.Validate(); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if _, err := repo.UpdateEvent(ctx, template); err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}
		if err := repo.DeleteOccurrences(ctx, template.ID); err != nil {
			return err
		}
		if template.Recurrence == nil {
			return nil
		}
		return storeOccurrences(ctx, repo, template)
	})
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// DeleteEvent removes a single row, or for EditSeries the recurring template
// together with all of its materialized occurrences. A template addressed
// directly is always deleted as a series: removing it alone would orphan
// every occurrence row.
func (s *Service) DeleteEvent(ctx context.Context, id string, mode EditMode) error {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	if !event.IsTemplate() && (mode == EditSingle || !event.IsOccurrence()) {
		return s.repo.DeleteEvent(ctx, event.ID)
	}

	templateID := event.ID
	if event.IsOccurrence() {
		templateID = event.RecurrenceParentID
	}

	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.DeleteOccurrences(ctx, templateID); err != nil {
			return err
		}
		if err := repo.DeleteEvent(ctx, templateID); err != nil && !errors.Is(err, ErrEventNotFound) {
			return err
		}
		return nil
	})
}

// ConvertOpenSlot flips a claimed open slot to scheduled. Callers are
// expected to hold the slot lock.
func (s *Service) ConvertOpenSlot(ctx context.Context, id string) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != StatusOpenSlot {
		return nil, ErrNotOpenSlot
	}
	event.Status = StatusScheduled
	event.Visibility = VisibilityPrivate
	updated, err := s.repo.UpdateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to convert open slot: %w", err)
	}
	return &updated, nil
}

func storeOccurrences(ctx context.Context, repo Repository, template Event) error {
	occurrences, err := ExpandTemplate(template)
	if err != nil {
		return err
	}
	for _, occ := range occurrences {
		if _, err := repo.StoreEvent(ctx, occ); err != nil {
			return fmt.Errorf("failed to store occurrence: %w", err)
		}
	}
	return nil
}

func applyUpdate(event *Event, input UpdateInput) {
	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Agenda != nil {
		event.Agenda = *input.Agenda
	}
	if input.Notes != nil {
		event.Notes = *input.Notes
	}
	if input.Start != nil {
		event.Start = input.Start.UTC()
	}
	if input.End != nil {
		event.End = input.End.UTC()
	}
	if input.Timezone != nil {
		event.Timezone = *input.Timezone
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if input.Visibility != nil {
		event.Visibility = *input.Visibility
	}
	if input.Color != nil {
		event.Color = *input.Color
	}
	if input.ClearRecurrence {
		event.Recurrence = nil
	} else if input.Recurrence != nil {
		event.Recurrence = input.Recurrence
	}
}
