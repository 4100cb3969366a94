package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, notification Notification) (Notification, error)
	// All returns notifications newest first.
	All(ctx context.Context) ([]Notification, error)
	Unread(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	// HasForRelated reports whether a notification of the given type already
	// references the record.
	HasForRelated(ctx context.Context, typ Type, relatedID string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, notification Notification) (Notification, error) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	query := `INSERT INTO notification (id, type, related_id, is_read, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		notification.ID, string(notification.Type), notification.RelatedID,
		boolToInt(notification.Read), notification.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not store notification: %w", err)
		log.Error(err)
		return Notification{}, err
	}
	return notification, nil
}

func (r *RepositoryImpl) All(ctx context.Context) ([]Notification, error) {
	return r.query(ctx, `SELECT id, type, related_id, is_read, created_at
						 FROM notification ORDER BY created_at DESC`)
}

func (r *RepositoryImpl) Unread(ctx context.Context) ([]Notification, error) {
	return r.query(ctx, `SELECT id, type, related_id, is_read, created_at
						 FROM notification WHERE is_read = 0 ORDER BY created_at DESC`)
}

func (r *RepositoryImpl) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notification SET is_read = 1 WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not mark notification read: %w", err)
		log.Error(err)
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *RepositoryImpl) HasForRelated(ctx context.Context, typ Type, relatedID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM notification WHERE type = $1 AND related_id = $2`,
		string(typ), relatedID).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		err := fmt.Errorf("could not check notifications: %w", err)
		log.Error(err)
		return false, err
	}
	return count > 0, nil
}

func (r *RepositoryImpl) query(ctx context.Context, query string) ([]Notification, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query notifications: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	notifications := make([]Notification, 0, 10)
	for rows.Next() {
		var (
			n         Notification
			typ       string
			isRead    int
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &typ, &n.RelatedID, &isRead, &createdAt); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		n.Type = Type(typ)
		n.Read = isRead != 0
		n.CreatedAt = time.UnixMilli(createdAt).UTC()
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
