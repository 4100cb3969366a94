package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, request BookingRequest) (BookingRequest, error)
	// ForEvent returns the booking requests referencing the calendar event,
	// newest first.
	ForEvent(ctx context.Context, eventID string) ([]BookingRequest, error)
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, request BookingRequest) (BookingRequest, error) {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}

	query := `INSERT INTO booking_request
			  (id, calendar_event_id, name, email, message, timezone_at_booking, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		request.ID, request.CalendarEventID, request.Name, request.Email,
		request.Message, request.TimezoneAtBooking, string(request.Status),
		request.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not store booking request: %w", err)
		log.Error(err)
		return BookingRequest{}, err
	}
	return request, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM booking_request WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete booking request: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ForEvent(ctx context.Context, eventID string) ([]BookingRequest, error) {
	query := `SELECT id, calendar_event_id, name, email, message, timezone_at_booking, status, created_at
			  FROM booking_request WHERE calendar_event_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		err := fmt.Errorf("could not query booking requests: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	requests := make([]BookingRequest, 0, 4)
	for rows.Next() {
		var (
			request   BookingRequest
			status    string
			createdAt int64
		)
		err := rows.Scan(&request.ID, &request.CalendarEventID, &request.Name,
			&request.Email, &request.Message, &request.TimezoneAtBooking,
			&status, &createdAt)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		request.Status = Status(status)
		request.CreatedAt = time.UnixMilli(createdAt).UTC()
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
