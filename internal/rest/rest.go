package rest

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Envelope is the success body wrapper consumed by all API clients.
type Envelope struct {
	Data any `json:"data"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse is the error body wrapper. Clients read error.message and
// fall back to an operation-specific string when it is absent.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// JSON writes data wrapped in the response envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Data: data}); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// Error writes an error envelope with the given display message.
func Error(w http.ResponseWriter, status int, message string, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{Message: message, Details: details}}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
