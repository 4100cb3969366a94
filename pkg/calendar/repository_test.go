package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/slotdesk/slotdesk/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) *RepositoryImpl {
	db := test_utils.SetupTestDB(t)
	return NewRepository(db)
}

func testEvent(title string, start, end time.Time) Event {
	return Event{
		Title:      title,
		Start:      start,
		End:        end,
		Timezone:   "Europe/Warsaw",
		Status:     StatusScheduled,
		Visibility: VisibilityPrivate,
		Color:      "#2563eb",
	}
}

func TestRepositoryImpl_StoreAndGetEvent(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	stored, err := repository.StoreEvent(ctx, testEvent("Kickoff call", start, start.Add(time.Hour)))
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	fetched, err := repository.GetEvent(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kickoff call", fetched.Title)
	assert.Equal(t, start, fetched.Start)
	assert.Equal(t, start.Add(time.Hour), fetched.End)
	assert.Equal(t, "Europe/Warsaw", fetched.Timezone)
	assert.Equal(t, StatusScheduled, fetched.Status)
	assert.Equal(t, VisibilityPrivate, fetched.Visibility)
	assert.Nil(t, fetched.Recurrence)
	assert.Empty(t, fetched.RecurrenceParentID)
}

func TestRepositoryImpl_GetEvent_NotFound(t *testing.T) {
	repository := setupTestRepository(t)

	_, err := repository.GetEvent(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRepositoryImpl_RecurrenceRoundTrip(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	endDate := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	event := testEvent("Office hours", start, start.Add(30*time.Minute))
	event.Recurrence = &RecurrenceRule{
		Frequency: FreqWeekly,
		Interval:  2,
		EndDate:   &endDate,
		ByDay:     []string{"MO", "WE"},
	}

	stored, err := repository.StoreEvent(ctx, event)
	require.NoError(t, err)

	fetched, err := repository.GetEvent(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Recurrence)
	assert.Equal(t, FreqWeekly, fetched.Recurrence.Frequency)
	assert.Equal(t, 2, fetched.Recurrence.Interval)
	assert.Equal(t, []string{"MO", "WE"}, fetched.Recurrence.ByDay)
	require.NotNil(t, fetched.Recurrence.EndDate)
	assert.True(t, endDate.Equal(*fetched.Recurrence.EndDate))
}

func TestRepositoryImpl_EventsInRange(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	day := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
	within := testEvent("Within", day.Add(9*time.Hour), day.Add(10*time.Hour))
	before := testEvent("Before", day.Add(-3*time.Hour), day.Add(-2*time.Hour))
	after := testEvent("After", day.Add(30*time.Hour), day.Add(31*time.Hour))
	template := testEvent("Template", day.Add(9*time.Hour), day.Add(10*time.Hour))
	template.Recurrence = &RecurrenceRule{Frequency: FreqDaily, Count: 3}
	// Half-open overlap: ending exactly at the range start does not count.
	touching := testEvent("Touching", day.Add(-time.Hour), day)

	for _, e := range []Event{within, before, after, template, touching} {
		_, err := repository.StoreEvent(ctx, e)
		require.NoError(t, err)
	}

	events, err := repository.EventsInRange(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Within", events[0].Title)
}

func TestRepositoryImpl_EventsInRange_Ordering(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	day := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
	later := testEvent("Later", day.Add(14*time.Hour), day.Add(15*time.Hour))
	earlier := testEvent("Earlier", day.Add(9*time.Hour), day.Add(10*time.Hour))

	_, err := repository.StoreEvent(ctx, later)
	require.NoError(t, err)
	_, err = repository.StoreEvent(ctx, earlier)
	require.NoError(t, err)

	events, err := repository.EventsInRange(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Earlier", events[0].Title)
	assert.Equal(t, "Later", events[1].Title)
}

func TestRepositoryImpl_UpdateEvent(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	stored, err := repository.StoreEvent(ctx, testEvent("Draft", start, start.Add(time.Hour)))
	require.NoError(t, err)

	stored.Title = "Final"
	stored.Status = StatusCompleted
	_, err = repository.UpdateEvent(ctx, stored)
	require.NoError(t, err)

	fetched, err := repository.GetEvent(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", fetched.Title)
	assert.Equal(t, StatusCompleted, fetched.Status)

	t.Run("missing event", func(t *testing.T) {
		missing := testEvent("Ghost", start, start.Add(time.Hour))
		missing.ID = "nope"
		_, err := repository.UpdateEvent(ctx, missing)
		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestRepositoryImpl_DeleteEvent(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	stored, err := repository.StoreEvent(ctx, testEvent("Doomed", start, start.Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, repository.DeleteEvent(ctx, stored.ID))

	_, err = repository.GetEvent(ctx, stored.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, repository.DeleteEvent(ctx, stored.ID), ErrEventNotFound)
}

func TestRepositoryImpl_DeleteOccurrences(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	template := testEvent("Series", start, start.Add(time.Hour))
	template.Recurrence = &RecurrenceRule{Frequency: FreqDaily, Count: 3}
	stored, err := repository.StoreEvent(ctx, template)
	require.NoError(t, err)

	occurrences, err := ExpandTemplate(stored)
	require.NoError(t, err)
	for _, occ := range occurrences {
		_, err := repository.StoreEvent(ctx, occ)
		require.NoError(t, err)
	}

	require.NoError(t, repository.DeleteOccurrences(ctx, stored.ID))

	events, err := repository.EventsInRange(ctx, start.AddDate(0, 0, -1), start.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Empty(t, events)

	// the template itself survives
	_, err = repository.GetEvent(ctx, stored.ID)
	assert.NoError(t, err)
}

func TestRepositoryImpl_WithTransaction(t *testing.T) {
	repository := setupTestRepository(t)
	ctx := context.Background()

	start := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)

	t.Run("commits on success", func(t *testing.T) {
		var id string
		err := repository.WithTransaction(ctx, func(repo Repository) error {
			stored, err := repo.StoreEvent(ctx, testEvent("Committed", start, start.Add(time.Hour)))
			if err != nil {
				return err
			}
			id = stored.ID
			return nil
		})
		require.NoError(t, err)

		_, err = repository.GetEvent(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		var id string
		err := repository.WithTransaction(ctx, func(repo Repository) error {
			stored, err := repo.StoreEvent(ctx, testEvent("Rolled back", start.Add(2*time.Hour), start.Add(3*time.Hour)))
			if err != nil {
				return err
			}
			id = stored.ID
			return assert.AnError
		})
		require.Error(t, err)

		_, err = repository.GetEvent(ctx, id)
		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}
