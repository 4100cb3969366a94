package notification

import (
	"errors"
	"fmt"
	"time"
)

type Type string

const (
	TypeBookingRequest Type = "booking_request"
	TypeSystem         Type = "system"
	TypeReminder       Type = "reminder"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is an inbox item for the admin console. RelatedID points at
// the record that triggered it (a booking request, a calendar event).
type Notification struct {
	ID        string
	Type      Type
	RelatedID string
	Read      bool
	CreatedAt time.Time
}

func (n Notification) Validate() error {
	switch n.Type {
	case TypeBookingRequest, TypeSystem, TypeReminder:
		return nil
	}
	return fmt.Errorf("unknown notification type %q", n.Type)
}
