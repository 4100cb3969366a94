// Package console is the Go client used by the admin console and the public
// booking page. It mirrors the server's wire contract and keeps a local
// event cache that is only updated after the server acknowledges a change.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slotdesk/slotdesk/pkg/booking"
	"github.com/slotdesk/slotdesk/pkg/calendar"
	"github.com/slotdesk/slotdesk/pkg/prospect"
)

// API is the authenticated admin surface of the server.
type API interface {
	EventsInRange(ctx context.Context, start, end time.Time) ([]calendar.EventDTO, error)
	CreateEvent(ctx context.Context, event calendar.EventDTO) (*calendar.EventDTO, error)
	UpdateEvent(ctx context.Context, id string, patch map[string]any, mode string) (*calendar.EventDTO, error)
	DeleteEvent(ctx context.Context, id string, mode string) error
	Prospects(ctx context.Context) ([]prospect.ProspectDTO, error)
}

// PublicAPI is the unauthenticated booking surface.
type PublicAPI interface {
	Schedule(ctx context.Context, start, end time.Time) ([]booking.SlotDTO, error)
	Book(ctx context.Context, request BookRequest) (*BookingConfirmation, error)
}

type BookRequest struct {
	SlotID   string `json:"slotId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Timezone string `json:"timezone"`
}

type BookingConfirmation struct {
	ID              string    `json:"id"`
	CalendarEventID string    `json:"calendarEventId"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// APIError carries the server's error message so callers can branch on it.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

type Client struct {
	baseURL    string
	adminToken string
	http       *http.Client
}

func NewClient(baseURL string, adminToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		adminToken: adminToken,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) EventsInRange(ctx context.Context, start, end time.Time) ([]calendar.EventDTO, error) {
	url := fmt.Sprintf("%s/api/superadmin/calendar/range?start=%s&end=%s",
		c.baseURL, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	var events []calendar.EventDTO
	if err := c.do(ctx, http.MethodGet, url, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, event calendar.EventDTO) (*calendar.EventDTO, error) {
	var created calendar.EventDTO
	url := c.baseURL + "/api/superadmin/calendar"
	if err := c.do(ctx, http.MethodPost, url, event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, patch map[string]any, mode string) (*calendar.EventDTO, error) {
	url := fmt.Sprintf("%s/api/superadmin/calendar/%s", c.baseURL, id)
	if mode != "" {
		url += "?mode=" + mode
	}
	var updated calendar.EventDTO
	if err := c.do(ctx, http.MethodPatch, url, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string, mode string) error {
	url := fmt.Sprintf("%s/api/superadmin/calendar/%s", c.baseURL, id)
	if mode != "" {
		url += "?mode=" + mode
	}
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}

func (c *Client) Prospects(ctx context.Context) ([]prospect.ProspectDTO, error) {
	var prospects []prospect.ProspectDTO
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/superadmin/prospects", nil, &prospects); err != nil {
		return nil, err
	}
	return prospects, nil
}

func (c *Client) Schedule(ctx context.Context, start, end time.Time) ([]booking.SlotDTO, error) {
	url := fmt.Sprintf("%s/api/public/schedule?start=%s&end=%s",
		c.baseURL, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	var slots []booking.SlotDTO
	if err := c.do(ctx, http.MethodGet, url, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) Book(ctx context.Context, request BookRequest) (*BookingConfirmation, error) {
	var confirmation BookingConfirmation
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/public/book", request, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminToken != "" {
		req.Header.Set("X-Admin-Token", c.adminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResponse struct {
			Error struct {
				Message string `json:"message"`
				Details string `json:"details"`
			} `json:"error"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if err := json.NewDecoder(resp.Body).Decode(&errResponse); err == nil && errResponse.Error.Message != "" {
			apiErr.Message = errResponse.Error.Message
			apiErr.Details = errResponse.Error.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return json.Unmarshal(envelope.Data, out)
}
