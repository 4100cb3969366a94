package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientEventsInRange(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Admin-Token")
		assert.Equal(t, "/api/superadmin/calendar/range", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("start"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"ev-1","title":"Kickoff","startDatetime":"2025-04-07T09:00:00Z","endDatetime":"2025-04-07T10:00:00Z","timezone":"UTC","status":"scheduled","visibility":"private"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	events, err := client.EventsInRange(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
	assert.Equal(t, "Kickoff", events[0].Title)
	assert.Equal(t, "secret-token", gotToken)
}

func TestClientErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"message":"This time slot is already booked","details":""}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Book(context.Background(), BookRequest{SlotID: "slot-1", Name: "Ada", Email: "ada@example.com"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "This time slot is already booked", apiErr.Message)
}

func TestClientDeleteEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/superadmin/calendar/ev-1", r.URL.Path)
		assert.Equal(t, "series", r.URL.Query().Get("mode"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	assert.NoError(t, client.DeleteEvent(context.Background(), "ev-1", "series"))
}
