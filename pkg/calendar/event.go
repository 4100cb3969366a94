package calendar

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusOpenSlot  Status = "open_slot"
)

type Visibility string

const (
	VisibilityPrivate    Visibility = "private"
	VisibilityPublicOpen Visibility = "public_open"
)

type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

var (
	ErrEventNotFound = errors.New("calendar event not found")
)

// RecurrenceRule describes how a template event repeats. Termination is by
// EndDate or Count, whichever is set; both unset means the rule is unbounded
// and expansion is capped by the materialization horizon.
type RecurrenceRule struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Count      int        `json:"count,omitempty"`
	ByDay      []string   `json:"byDay,omitempty"`
	ByMonthDay []int      `json:"byMonthDay,omitempty"`
}

// Event is a scheduled span of time. Start and End are absolute instants
// (stored UTC-normalized); Timezone is the IANA zone the event was authored
// in and only affects display and recurrence arithmetic, never the instant.
//
// An event carrying a RecurrenceRule is a template; its concrete occurrences
// are materialized as separate rows with RecurrenceParentID pointing back at
// the template.
type Event struct {
	ID                 string
	Title              string
	Agenda             string
	Notes              string
	Start              time.Time
	End                time.Time
	Timezone           string
	Status             Status
	Visibility         Visibility
	Recurrence         *RecurrenceRule
	RecurrenceParentID string
	Color              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s Status) valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusOpenSlot:
		return true
	}
	return false
}

func (v Visibility) valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityPublicOpen:
		return true
	}
	return false
}

// Validate checks the event invariants: start strictly before end, known
// status and visibility values, and publicly open events must be open slots.
func (e Event) Validate() error {
	if !e.Start.Before(e.End) {
		return errors.New("start datetime must be before end datetime")
	}
	if !e.Status.valid() {
		return fmt.Errorf("unknown status %q", e.Status)
	}
	if !e.Visibility.valid() {
		return fmt.Errorf("unknown visibility %q", e.Visibility)
	}
	if e.Visibility == VisibilityPublicOpen && e.Status != StatusOpenSlot {
		return errors.New("publicly open events must have open_slot status")
	}
	if e.Recurrence != nil {
		switch e.Recurrence.Frequency {
		case FreqDaily, FreqWeekly, FreqMonthly:
		default:
			return fmt.Errorf("unknown recurrence frequency %q", e.Recurrence.Frequency)
		}
	}
	return nil
}

// IsTemplate reports whether the event is a recurrence template.
func (e Event) IsTemplate() bool {
	return e.Recurrence != nil && e.RecurrenceParentID == ""
}

// IsOccurrence reports whether the event was generated from a template.
func (e Event) IsOccurrence() bool {
	return e.RecurrenceParentID != ""
}
