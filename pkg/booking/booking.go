package booking

import (
	"errors"
	"regexp"
	"time"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotTaken covers every arbitration loss: the slot is no longer an
	// open slot, the time is claimed by another event, or the lock is held.
	ErrSlotTaken = errors.New("this time slot is already booked")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BookingRequest records a visitor claiming an open slot. TimezoneAtBooking
// is the visitor's zone at submission time, kept for correspondence.
type BookingRequest struct {
	ID                string
	CalendarEventID   string
	Name              string
	Email             string
	Message           string
	TimezoneAtBooking string
	Status            Status
	CreatedAt         time.Time
}

type CreateBookingInput struct {
	SlotID   string
	Name     string
	Email    string
	Message  string
	Timezone string
}

func (i CreateBookingInput) Validate() error {
	if i.SlotID == "" {
		return errors.New("slot id is required")
	}
	if i.Name == "" {
		return errors.New("name is required")
	}
	if !emailPattern.MatchString(i.Email) {
		return errors.New("a valid email address is required")
	}
	return nil
}
