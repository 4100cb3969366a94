package calendar

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	// EventsInRange returns non-template events overlapping [from, to],
	// ordered by start time. Templates are excluded: their materialized
	// occurrences represent them on the calendar.
	EventsInRange(ctx context.Context, from, to time.Time) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	DeleteOccurrences(ctx context.Context, templateID string) error
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback is a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const eventColumns = `id, title, agenda, notes, start_time, end_time, timezone, status, visibility,
	recurrence_rule, recurrence_parent_id, color, created_at, updated_at`

func (r *RepositoryImpl) StoreEvent(ctx context.Context, event Event) (Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	ruleJSON, err := marshalRule(event.Recurrence)
	if err != nil {
		log.Error(err)
		return Event{}, err
	}

	query := `INSERT INTO calendar_event (` + eventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.getQueryer().ExecContext(ctx, query,
		event.ID, event.Title, event.Agenda, event.Notes,
		event.Start.UnixMilli(), event.End.UnixMilli(), event.Timezone,
		string(event.Status), string(event.Visibility),
		ruleJSON, nullIfEmpty(event.RecurrenceParentID), event.Color,
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not store calendar event: %w", err)
		log.Error(err)
		return Event{}, err
	}

	return event, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, id string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event WHERE id = $1`

	row := r.getQueryer().QueryRowContext(ctx, query, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get calendar event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) EventsInRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	// Overlap: events that start before the end of the period and end
	// strictly after its start, matching RangesOverlap. Template rows never
	// render directly.
	query := `SELECT ` + eventColumns + ` FROM calendar_event
			  WHERE start_time <= $1
			    AND end_time > $2
			    AND recurrence_rule IS NULL
			  ORDER BY start_time`

	rows, err := r.getQueryer().QueryContext(ctx, query, to.UnixMilli(), from.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	event.UpdatedAt = time.Now()

	ruleJSON, err := marshalRule(event.Recurrence)
	if err != nil {
		log.Error(err)
		return Event{}, err
	}

	query := `UPDATE calendar_event
			  SET title = $1, agenda = $2, notes = $3, start_time = $4, end_time = $5,
			      timezone = $6, status = $7, visibility = $8, recurrence_rule = $9,
			      recurrence_parent_id = $10, color = $11, updated_at = $12
			  WHERE id = $13`

	res, err := r.getQueryer().ExecContext(ctx, query,
		event.Title, event.Agenda, event.Notes,
		event.Start.UnixMilli(), event.End.UnixMilli(),
		event.Timezone, string(event.Status), string(event.Visibility),
		ruleJSON, nullIfEmpty(event.RecurrenceParentID), event.Color,
		event.UpdatedAt.UnixMilli(), event.ID)
	if err != nil {
		err := fmt.Errorf("could not update calendar event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return Event{}, ErrEventNotFound
	}

	return event, nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, id string) error {
	query := `DELETE FROM calendar_event WHERE id = $1`
	res, err := r.getQueryer().ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not delete calendar event: %w", err)
		log.Error(err)
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteOccurrences(ctx context.Context, templateID string) error {
	query := `DELETE FROM calendar_event WHERE recurrence_parent_id = $1`
	_, err := r.getQueryer().ExecContext(ctx, query, templateID)
	if err != nil {
		err := fmt.Errorf("could not delete occurrences: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		event       Event
		startMillis int64
		endMillis   int64
		status      string
		visibility  string
		ruleJSON    sql.NullString
		parentID    sql.NullString
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(&event.ID, &event.Title, &event.Agenda, &event.Notes,
		&startMillis, &endMillis, &event.Timezone, &status, &visibility,
		&ruleJSON, &parentID, &event.Color, &createdAt, &updatedAt)
	if err != nil {
		return Event{}, err
	}

	event.Start = time.UnixMilli(startMillis).UTC()
	event.End = time.UnixMilli(endMillis).UTC()
	event.Status = Status(status)
	event.Visibility = Visibility(visibility)
	event.RecurrenceParentID = parentID.String
	event.CreatedAt = time.UnixMilli(createdAt).UTC()
	event.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	if ruleJSON.Valid && ruleJSON.String != "" {
		var rule RecurrenceRule
		if err := json.Unmarshal([]byte(ruleJSON.String), &rule); err != nil {
			return Event{}, fmt.Errorf("could not decode recurrence rule: %w", err)
		}
		event.Recurrence = &rule
	}

	return event, nil
}

func marshalRule(rule *RecurrenceRule) (*string, error) {
	if rule == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("could not encode recurrence rule: %w", err)
	}
	s := string(encoded)
	return &s, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
