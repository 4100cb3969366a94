package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/slotdesk/slotdesk/internal/rest"
	"github.com/slotdesk/slotdesk/pkg/calendar"
)

type Handler struct {
	bookings *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

// SlotDTO is the public shape of a bookable slot. Only fields a visitor
// needs are exposed.
type SlotDTO struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"startDatetime"`
	End      time.Time `json:"endDatetime"`
	Timezone string    `json:"timezone"`
}

type bookRequestDTO struct {
	SlotID   string `json:"slotId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Timezone string `json:"timezone"`
}

type bookingResponseDTO struct {
	ID              string    `json:"id"`
	CalendarEventID string    `json:"calendarEventId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Schedule handles GET /public/schedule?start=...&end=...
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid start (date) format", "'start' must be in RFC3339 format")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid end (date) format", "'end' must be in RFC3339 format")
		return
	}

	slots, err := h.bookings.OpenSlots(r.Context(), start, end)
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to fetch schedule", "")
		return
	}

	dtos := make([]SlotDTO, 0, len(slots))
	for _, slot := range slots {
		dtos = append(dtos, slotToDTO(slot))
	}
	rest.JSON(w, http.StatusOK, dtos)
}

// Book handles POST /public/book
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var dto bookRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	request, err := h.bookings.Book(r.Context(), CreateBookingInput{
		SlotID:   dto.SlotID,
		Name:     dto.Name,
		Email:    dto.Email,
		Message:  dto.Message,
		Timezone: dto.Timezone,
	})
	if errors.Is(err, ErrSlotNotFound) {
		rest.Error(w, http.StatusNotFound, "Slot not found", "")
		return
	}
	if errors.Is(err, ErrSlotTaken) {
		rest.Error(w, http.StatusConflict, "This time slot is already booked", "")
		return
	}
	if err != nil {
		log.Debugf("booking rejected: %v", err)
		rest.Error(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	rest.JSON(w, http.StatusCreated, bookingResponseDTO{
		ID:              request.ID,
		CalendarEventID: request.CalendarEventID,
		Name:            request.Name,
		Email:           request.Email,
		Status:          string(request.Status),
		CreatedAt:       request.CreatedAt.UTC(),
	})
}

func slotToDTO(slot calendar.Event) SlotDTO {
	return SlotDTO{
		ID:       slot.ID,
		Title:    slot.Title,
		Start:    slot.Start.UTC(),
		End:      slot.End.UTC(),
		Timezone: slot.Timezone,
	}
}
