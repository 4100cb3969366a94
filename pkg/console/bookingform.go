package console

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/slotdesk/slotdesk/pkg/booking"
)

type FormState string

const (
	FormEditing    FormState = "editing"
	FormSubmitting FormState = "submitting"
	FormSuccess    FormState = "success"
)

const (
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04"

	slotTakenMessage = "Sorry, this time has just been booked. Please select another slot."
)

var formEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BookingForm drives the public booking dialog for one open slot. Date and
// Time are the visitor-editable fields, pre-filled from the slot's start in
// the visitor's timezone; the selected instant must stay within the slot.
type BookingForm struct {
	api  PublicAPI
	slot booking.SlotDTO
	zone *time.Location

	Name    string
	Email   string
	Message string
	Date    string
	Time    string

	state     FormState
	errText   string
	onSuccess func(BookingConfirmation)
}

func NewBookingForm(api PublicAPI, slot booking.SlotDTO, zone *time.Location, onSuccess func(BookingConfirmation)) *BookingForm {
	if zone == nil {
		zone = time.UTC
	}
	localStart := slot.Start.In(zone)
	return &BookingForm{
		api:       api,
		slot:      slot,
		zone:      zone,
		Date:      localStart.Format(formDateLayout),
		Time:      localStart.Format(formTimeLayout),
		state:     FormEditing,
		onSuccess: onSuccess,
	}
}

func (f *BookingForm) State() FormState {
	return f.state
}

// ErrorText returns the message shown under the form, empty when none.
func (f *BookingForm) ErrorText() string {
	return f.errText
}

// Submit validates the form and sends the booking. Validation failures and
// server rejections return the form to editing with a message; a lost race
// for the slot gets a normalized message inviting another pick.
func (f *BookingForm) Submit(ctx context.Context) FormState {
	if f.state == FormSubmitting || f.state == FormSuccess {
		return f.state
	}

	if strings.TrimSpace(f.Name) == "" {
		return f.fail("Please enter your name")
	}
	if !formEmailPattern.MatchString(f.Email) {
		return f.fail("Please enter a valid email address")
	}

	selected, err := time.ParseInLocation(formDateLayout+" "+formTimeLayout, f.Date+" "+f.Time, f.zone)
	if err != nil {
		return f.fail("Please enter a valid date and time")
	}
	slotStart := f.slot.Start.In(f.zone)
	slotEnd := f.slot.End.In(f.zone)
	if selected.Before(slotStart) || !selected.Before(slotEnd) {
		return f.fail("Please pick a time within the selected slot")
	}

	f.state = FormSubmitting
	f.errText = ""

	confirmation, err := f.api.Book(ctx, BookRequest{
		SlotID:   f.slot.ID,
		Name:     f.Name,
		Email:    f.Email,
		Message:  f.Message,
		Timezone: f.zone.String(),
	})
	if err != nil {
		if isSlotTaken(err) {
			return f.fail(slotTakenMessage)
		}
		return f.fail(DisplayError(err, "Failed to submit your booking. Please try again."))
	}

	f.state = FormSuccess
	if f.onSuccess != nil {
		f.onSuccess(*confirmation)
	}
	return f.state
}

func (f *BookingForm) fail(message string) FormState {
	f.state = FormEditing
	f.errText = message
	return f.state
}

// isSlotTaken recognizes a lost booking race from the server's conflict
// reply, matching on the message so older server versions still map.
func isSlotTaken(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == 409 {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "already booked") || strings.Contains(msg, "taken")
}
