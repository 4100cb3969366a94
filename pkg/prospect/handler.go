package prospect

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/slotdesk/slotdesk/internal/rest"
)

type Handler struct {
	prospects *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

type ProspectDTO struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	TargetBudget *float64 `json:"targetBudget,omitempty"`
	Status       string   `json:"status"`
	Swimlane     string   `json:"swimlane,omitempty"`
	Tags         []string `json:"tags"`
	Notes        string   `json:"notes,omitempty"`
	WebsiteURL   string   `json:"websiteUrl,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

type createProspectDTO struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	TargetBudget *float64 `json:"targetBudget"`
	Status       string   `json:"status"`
	Swimlane     string   `json:"swimlane"`
	Tags         []string `json:"tags"`
	Notes        string   `json:"notes"`
	WebsiteURL   string   `json:"websiteUrl"`
	ImageURL     string   `json:"imageUrl"`
}

type updateProspectDTO struct {
	Type         *string         `json:"type"`
	Name         *string         `json:"name"`
	Email        *string         `json:"email"`
	TargetBudget json.RawMessage `json:"targetBudget"`
	Status       *string         `json:"status"`
	Swimlane     *string         `json:"swimlane"`
	Tags         []string        `json:"tags"`
	Notes        *string         `json:"notes"`
	WebsiteURL   *string         `json:"websiteUrl"`
	ImageURL     *string         `json:"imageUrl"`
}

// List handles GET /prospects?status=...&swimlane=...&tags=a,b
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Status:   Status(r.URL.Query().Get("status")),
		Swimlane: r.URL.Query().Get("swimlane"),
	}
	if tags := r.URL.Query().Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	prospects, err := h.prospects.List(r.Context(), filter)
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to fetch prospects", "")
		return
	}

	dtos := make([]ProspectDTO, 0, len(prospects))
	for _, p := range prospects {
		dtos = append(dtos, prospectToDTO(p))
	}
	rest.JSON(w, http.StatusOK, dtos)
}

// Get handles GET /prospects/{prospectId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	prospect, err := h.prospects.Get(r.Context(), mux.Vars(r)["prospectId"])
	if errors.Is(err, ErrProspectNotFound) {
		rest.Error(w, http.StatusNotFound, "Prospect not found", "")
		return
	}
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to fetch prospect", "")
		return
	}
	rest.JSON(w, http.StatusOK, prospectToDTO(*prospect))
}

// Create handles POST /prospects
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto createProspectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	created, err := h.prospects.Create(r.Context(), ProspectInput{
		Type:         Type(dto.Type),
		Name:         dto.Name,
		Email:        dto.Email,
		TargetBudget: dto.TargetBudget,
		Status:       Status(dto.Status),
		Swimlane:     dto.Swimlane,
		Tags:         dto.Tags,
		Notes:        dto.Notes,
		WebsiteURL:   dto.WebsiteURL,
		ImageURL:     dto.ImageURL,
	})
	if err != nil {
		log.Debugf("create prospect rejected: %v", err)
		rest.Error(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	rest.JSON(w, http.StatusCreated, prospectToDTO(*created))
}

// Update handles PATCH /prospects/{prospectId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto updateProspectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	input := UpdateInput{
		Name:       dto.Name,
		Email:      dto.Email,
		Swimlane:   dto.Swimlane,
		Tags:       dto.Tags,
		Notes:      dto.Notes,
		WebsiteURL: dto.WebsiteURL,
		ImageURL:   dto.ImageURL,
	}
	if dto.Type != nil {
		typ := Type(*dto.Type)
		input.Type = &typ
	}
	if dto.Status != nil {
		status := Status(*dto.Status)
		input.Status = &status
	}
	// "targetBudget": null clears the budget; an absent key leaves it alone.
	if len(dto.TargetBudget) > 0 {
		if string(dto.TargetBudget) == "null" {
			input.ClearTargetBudget = true
		} else {
			var budget float64
			if err := json.Unmarshal(dto.TargetBudget, &budget); err != nil {
				rest.Error(w, http.StatusBadRequest, "Invalid target budget", err.Error())
				return
			}
			input.TargetBudget = &budget
		}
	}

	updated, err := h.prospects.Update(r.Context(), mux.Vars(r)["prospectId"], input)
	if errors.Is(err, ErrProspectNotFound) {
		rest.Error(w, http.StatusNotFound, "Prospect not found", "")
		return
	}
	if err != nil {
		log.Debugf("update prospect rejected: %v", err)
		rest.Error(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	rest.JSON(w, http.StatusOK, prospectToDTO(*updated))
}

// Delete handles DELETE /prospects/{prospectId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.prospects.Delete(r.Context(), mux.Vars(r)["prospectId"])
	if errors.Is(err, ErrProspectNotFound) {
		rest.Error(w, http.StatusNotFound, "Prospect not found", "")
		return
	}
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to delete prospect", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveSwimlane handles PATCH /prospects/{prospectId}/swimlane
func (h *Handler) MoveSwimlane(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Swimlane string `json:"swimlane"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	moved, err := h.prospects.MoveSwimlane(r.Context(), mux.Vars(r)["prospectId"], body.Swimlane)
	if errors.Is(err, ErrProspectNotFound) {
		rest.Error(w, http.StatusNotFound, "Prospect not found", "")
		return
	}
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to move prospect", "")
		return
	}
	rest.JSON(w, http.StatusOK, prospectToDTO(*moved))
}

// AddTag handles POST /prospects/{prospectId}/tags
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	tagged, err := h.prospects.AddTag(r.Context(), mux.Vars(r)["prospectId"], body.Tag)
	if errors.Is(err, ErrProspectNotFound) {
		rest.Error(w, http.StatusNotFound, "Prospect not found", "")
		return
	}
	if err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	rest.JSON(w, http.StatusOK, prospectToDTO(*tagged))
}

// RemoveTag handles DELETE /prospects/{prospectId}/tags/{tag}
func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	untagged, err := h.prospects.RemoveTag(r.Context(), vars["prospectId"], vars["tag"])
	if errors.Is(err, ErrProspectNotFound) {
		rest.Error(w, http.StatusNotFound, "Prospect not found", "")
		return
	}
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "Failed to remove tag", "")
		return
	}
	rest.JSON(w, http.StatusOK, prospectToDTO(*untagged))
}

func prospectToDTO(p Prospect) ProspectDTO {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProspectDTO{
		ID:           p.ID,
		Type:         string(p.Type),
		Name:         p.Name,
		Email:        p.Email,
		TargetBudget: p.TargetBudget,
		Status:       string(p.Status),
		Swimlane:     p.Swimlane,
		Tags:         tags,
		Notes:        p.Notes,
		WebsiteURL:   p.WebsiteURL,
		ImageURL:     p.ImageURL,
	}
}
