package booking

import (
	"context"
	"testing"
	"time"

	"github.com/slotdesk/slotdesk/internal/redislock"
	"github.com/slotdesk/slotdesk/pkg/calendar"
	"github.com/slotdesk/slotdesk/pkg/notification"
	"github.com/slotdesk/slotdesk/pkg/prospect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLocker runs the critical section inline; Held simulates a lock owned
// by a concurrent request.
type stubLocker struct {
	Held map[string]bool
}

func (l *stubLocker) WithSlotLock(ctx context.Context, slotID string, fn func(ctx context.Context) error) error {
	if l.Held[slotID] {
		return redislock.ErrLockNotAcquired
	}
	return fn(ctx)
}

// failingClaimCalendar delegates reads but fails the slot conversion once.
type failingClaimCalendar struct {
	Calendar
	failNext bool
}

func (c *failingClaimCalendar) ConvertOpenSlot(ctx context.Context, id string) (*calendar.Event, error) {
	if c.failNext {
		c.failNext = false
		return nil, assert.AnError
	}
	return c.Calendar.ConvertOpenSlot(ctx, id)
}

type failingRegistrar struct{}

func (failingRegistrar) EnsurePerson(ctx context.Context, name, email string) (*prospect.Prospect, error) {
	return nil, assert.AnError
}

type bookingFixture struct {
	service       *Service
	calendarRepo  *calendar.StubCalendarRepository
	calendar      *calendar.Service
	bookingRepo   *StubBookingRepository
	prospectRepo  *prospect.StubProspectRepository
	notifications *notification.StubNotificationRepository
	locker        *stubLocker
}

func newBookingFixture() *bookingFixture {
	calendarRepo := calendar.NewStubCalendarRepository()
	calendarService := calendar.NewService(calendarRepo)
	bookingRepo := NewStubBookingRepository()
	prospectRepo := prospect.NewStubProspectRepository()
	notificationRepo := notification.NewStubNotificationRepository()
	locker := &stubLocker{Held: map[string]bool{}}

	service := NewService(
		bookingRepo,
		calendarService,
		locker,
		prospect.NewService(prospectRepo),
		notification.NewService(notificationRepo),
	)
	return &bookingFixture{
		service:       service,
		calendarRepo:  calendarRepo,
		calendar:      calendarService,
		bookingRepo:   bookingRepo,
		prospectRepo:  prospectRepo,
		notifications: notificationRepo,
		locker:        locker,
	}
}

func (f *bookingFixture) addOpenSlot(t *testing.T, start time.Time) *calendar.Event {
	t.Helper()
	slot, err := f.calendar.CreateEvent(context.Background(), calendar.EventInput{
		Title:      "Intro call",
		Start:      start,
		End:        start.Add(30 * time.Minute),
		Status:     calendar.StatusOpenSlot,
		Visibility: calendar.VisibilityPublicOpen,
	})
	require.NoError(t, err)
	return slot
}

func validInput(slotID string) CreateBookingInput {
	return CreateBookingInput{
		SlotID:   slotID,
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Message:  "Looking forward to it",
		Timezone: "Europe/Warsaw",
	}
}

func TestBook(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)

	t.Run("books an open slot", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)

		request, err := f.service.Book(ctx, validInput(slot.ID))
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, request.Status)
		assert.Equal(t, slot.ID, request.CalendarEventID)
		assert.Equal(t, "Europe/Warsaw", request.TimezoneAtBooking)

		claimed, err := f.calendar.GetEvent(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, calendar.StatusScheduled, claimed.Status)
		assert.Equal(t, calendar.VisibilityPrivate, claimed.Visibility)
	})

	t.Run("records the visitor and notifies the admin", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)

		request, err := f.service.Book(ctx, validInput(slot.ID))
		require.NoError(t, err)

		person, err := prospect.NewService(f.prospectRepo).EnsurePerson(ctx, "Ada Lovelace", "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, prospect.TypePerson, person.Type)
		assert.Len(t, f.prospectRepo.Prospects, 1)

		require.Len(t, f.notifications.Notifications, 1)
		assert.Equal(t, notification.TypeBookingRequest, f.notifications.Notifications[0].Type)
		assert.Equal(t, request.ID, f.notifications.Notifications[0].RelatedID)
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)

		input := validInput(slot.ID)
		input.Email = "ada@nowhere"
		_, err := f.service.Book(ctx, input)
		assert.Error(t, err)
		assert.Empty(t, f.bookingRepo.Requests)
	})

	t.Run("unknown slot", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.Book(ctx, validInput("missing"))
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("second booking of the same slot loses", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)

		_, err := f.service.Book(ctx, validInput(slot.ID))
		require.NoError(t, err)

		input := validInput(slot.ID)
		input.Email = "grace@example.com"
		_, err = f.service.Book(ctx, input)
		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.Len(t, f.bookingRepo.Requests, 1)
	})

	t.Run("held lock reads as taken", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)
		f.locker.Held[slot.ID] = true

		_, err := f.service.Book(ctx, validInput(slot.ID))
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("overlapping scheduled event blocks the slot", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)

		_, err := f.calendar.CreateEvent(ctx, calendar.EventInput{
			Title:      "Team meeting",
			Start:      start.Add(10 * time.Minute),
			End:        start.Add(40 * time.Minute),
			Status:     calendar.StatusScheduled,
			Visibility: calendar.VisibilityPrivate,
		})
		require.NoError(t, err)

		_, err = f.service.Book(ctx, validInput(slot.ID))
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("failed slot claim leaves no booking request behind", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)
		f.service.calendar = &failingClaimCalendar{Calendar: f.calendar, failNext: true}

		_, err := f.service.Book(ctx, validInput(slot.ID))
		require.Error(t, err)
		assert.Empty(t, f.bookingRepo.Requests)

		current, err := f.calendar.GetEvent(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, calendar.StatusOpenSlot, current.Status)

		// The slot stayed open, so a retry must produce exactly one
		// confirmed request.
		request, err := f.service.Book(ctx, validInput(slot.ID))
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, request.Status)
		assert.Len(t, f.bookingRepo.Requests, 1)
	})

	t.Run("booking survives a CRM failure", func(t *testing.T) {
		f := newBookingFixture()
		slot := f.addOpenSlot(t, start)
		f.service.prospects = failingRegistrar{}

		request, err := f.service.Book(ctx, validInput(slot.ID))
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, request.Status)
	})
}

func TestOpenSlots(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)

	f := newBookingFixture()
	f.addOpenSlot(t, start)

	_, err := f.calendar.CreateEvent(ctx, calendar.EventInput{
		Title:      "Private work",
		Start:      start.Add(time.Hour),
		End:        start.Add(2 * time.Hour),
		Status:     calendar.StatusScheduled,
		Visibility: calendar.VisibilityPrivate,
	})
	require.NoError(t, err)

	slots, err := f.service.OpenSlots(ctx, start.Add(-time.Hour), start.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Intro call", slots[0].Title)
}
