package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/slotdesk/slotdesk/internal/rest"
)

type Handler struct {
	calendar *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

// EventDTO is the wire shape of a calendar event. Instants are RFC3339 in
// UTC; timezone is the authoring zone kept for display.
type EventDTO struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Agenda             string          `json:"agenda,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	Start              time.Time       `json:"startDatetime"`
	End                time.Time       `json:"endDatetime"`
	Timezone           string          `json:"timezone"`
	Status             string          `json:"status"`
	Visibility         string          `json:"visibility"`
	RecurrenceRule     *RecurrenceRule `json:"recurrenceRule,omitempty"`
	RecurrenceParentID string          `json:"recurrenceParentId,omitempty"`
	Color              string          `json:"color,omitempty"`
}

type createEventDTO struct {
	Title          string          `json:"title"`
	Agenda         string          `json:"agenda"`
	Notes          string          `json:"notes"`
	Start          time.Time       `json:"startDatetime"`
	End            time.Time       `json:"endDatetime"`
	Timezone       string          `json:"timezone"`
	Status         string          `json:"status"`
	Visibility     string          `json:"visibility"`
	RecurrenceRule *RecurrenceRule `json:"recurrenceRule"`
	Color          string          `json:"color"`
}

type updateEventDTO struct {
	Title          *string         `json:"title"`
	Agenda         *string         `json:"agenda"`
	Notes          *string         `json:"notes"`
	Start          *time.Time      `json:"startDatetime"`
	End            *time.Time      `json:"endDatetime"`
	Timezone       *string         `json:"timezone"`
	Status         *string         `json:"status"`
	Visibility     *string         `json:"visibility"`
	RecurrenceRule json.RawMessage `json:"recurrenceRule"`
	Color          *string         `json:"color"`
}

// GetRange handles GET /calendar/range?start=...&end=...
func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}

	events, err := h.calendar.EventsInRange(r.Context(), start, end)
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to fetch events", "")
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.JSON(w, http.StatusOK, dtos)
}

// CreateEvent handles POST /calendar
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto createEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if dto.Title == "" {
		rest.Error(w, http.StatusBadRequest, "Title is required", "")
		return
	}

	created, err := h.calendar.CreateEvent(r.Context(), EventInput{
		Title:      dto.Title,
		Agenda:     dto.Agenda,
		Notes:      dto.Notes,
		Start:      dto.Start,
		End:        dto.End,
		Timezone:   dto.Timezone,
		Status:     Status(dto.Status),
		Visibility: Visibility(dto.Visibility),
		Recurrence: dto.RecurrenceRule,
		Color:      dto.Color,
	})
	if err != nil {
		log.Debugf("create event rejected: %v", err)
		rest.Error(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	rest.JSON(w, http.StatusCreated, eventToDTO(*created))
}

// UpdateEvent handles PATCH /calendar/{eventId}?mode=single|series
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	mode, err := ParseEditMode(r.URL.Query().Get("mode"))
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid mode", "'mode' must be 'single' or 'series'")
		return
	}

	var dto updateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	input := UpdateInput{
		Title:    dto.Title,
		Agenda:   dto.Agenda,
		Notes:    dto.Notes,
		Start:    dto.Start,
		End:      dto.End,
		Timezone: dto.Timezone,
		Color:    dto.Color,
	}
	if dto.Status != nil {
		status := Status(*dto.Status)
		input.Status = &status
	}
	if dto.Visibility != nil {
		visibility := Visibility(*dto.Visibility)
		input.Visibility = &visibility
	}
	// "recurrenceRule": null clears the rule; an absent key leaves it alone.
	if len(dto.RecurrenceRule) > 0 {
		if string(dto.RecurrenceRule) == "null" {
			input.ClearRecurrence = true
		} else {
			var rule RecurrenceRule
			if err := json.Unmarshal(dto.RecurrenceRule, &rule); err != nil {
				rest.Error(w, http.StatusBadRequest, "Invalid recurrence rule", err.Error())
				return
			}
			input.Recurrence = &rule
		}
	}

	updated, err := h.calendar.UpdateEvent(r.Context(), eventID, input, mode)
	if errors.Is(err, ErrEventNotFound) {
		rest.Error(w, http.StatusNotFound, "Calendar event not found", "")
		return
	}
	if err != nil {
		log.Debugf("update event rejected: %v", err)
		rest.Error(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	rest.JSON(w, http.StatusOK, eventToDTO(*updated))
}

// DeleteEvent handles DELETE /calendar/{eventId}?mode=single|series
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	mode, err := ParseEditMode(r.URL.Query().Get("mode"))
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid mode", "'mode' must be 'single' or 'series'")
		return
	}

	err = h.calendar.DeleteEvent(r.Context(), eventID, mode)
	if errors.Is(err, ErrEventNotFound) {
		rest.Error(w, http.StatusNotFound, "Calendar event not found", "")
		return
	}
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to delete event", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseRangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid start (date) format", "'start' must be in RFC3339 format")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid end (date) format", "'end' must be in RFC3339 format")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:                 e.ID,
		Title:              e.Title,
		Agenda:             e.Agenda,
		Notes:              e.Notes,
		Start:              e.Start.UTC(),
		End:                e.End.UTC(),
		Timezone:           e.Timezone,
		Status:             string(e.Status),
		Visibility:         string(e.Visibility),
		RecurrenceRule:     e.Recurrence,
		RecurrenceParentID: e.RecurrenceParentID,
		Color:              e.Color,
	}
}
