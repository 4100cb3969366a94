package notification

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/slotdesk/slotdesk/internal/rest"
)

type Handler struct {
	notifications *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

type NotificationDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	RelatedID string    `json:"relatedId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// All handles GET /notifications
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.All(r.Context())
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to fetch notifications", "")
		return
	}
	rest.JSON(w, http.StatusOK, toDTOs(notifications))
}

// Unread handles GET /notifications/unread
func (h *Handler) Unread(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.Unread(r.Context())
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to fetch notifications", "")
		return
	}
	rest.JSON(w, http.StatusOK, toDTOs(notifications))
}

// MarkRead handles POST /notifications/{notificationId}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), mux.Vars(r)["notificationId"])
	if errors.Is(err, ErrNotificationNotFound) {
		rest.Error(w, http.StatusNotFound, "Notification not found", "")
		return
	}
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to mark notification read", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toDTOs(notifications []Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, NotificationDTO{
			ID:        n.ID,
			Type:      string(n.Type),
			RelatedID: n.RelatedID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.UTC(),
		})
	}
	return dtos
}
