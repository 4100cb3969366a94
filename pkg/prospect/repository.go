package prospect

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
	Store(ctx context.Context, prospect Prospect) (Prospect, error)
	Get(ctx context.Context, id string) (Prospect, error)
	// FindByEmail returns the first prospect with a matching email, or
	// ErrProspectNotFound.
	FindByEmail(ctx context.Context, email string) (Prospect, error)
	// List returns prospects matching the filter's status and swimlane,
	// ordered by creation time. Tag filtering happens in the service.
	List(ctx context.Context, filter Filter) ([]Prospect, error)
	Update(ctx context.Context, prospect Prospect) (Prospect, error)
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const prospectColumns = `id, type, name, email, target_budget, status, swimlane, tags, notes,
	website_url, image_url, created_at, updated_at`

func (r *RepositoryImpl) Store(ctx context.Context, prospect Prospect) (Prospect, error) {
	if prospect.ID == "" {
		prospect.ID = uuid.NewString()
	}
	now := time.Now()
	prospect.CreatedAt = now
	prospect.UpdatedAt = now

	tagsJSON, err := marshalTags(prospect.Tags)
	if err != nil {
		log.Error(err)
		return Prospect{}, err
	}

	query := `INSERT INTO prospect (` + prospectColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, query,
		prospect.ID, string(prospect.Type), prospect.Name, prospect.Email,
		prospect.TargetBudget, string(prospect.Status), prospect.Swimlane,
		tagsJSON, prospect.Notes, prospect.WebsiteURL, prospect.ImageURL,
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not store prospect: %w", err)
		log.Error(err)
		return Prospect{}, err
	}

	return prospect, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospect WHERE id = $1`

	prospect, err := scanProspect(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Prospect{}, ErrProspectNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get prospect: %w", err)
		log.Error(err)
		return Prospect{}, err
	}
	return prospect, nil
}

func (r *RepositoryImpl) FindByEmail(ctx context.Context, email string) (Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospect WHERE email = $1 ORDER BY created_at LIMIT 1`

	prospect, err := scanProspect(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return Prospect{}, ErrProspectNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not find prospect by email: %w", err)
		log.Error(err)
		return Prospect{}, err
	}
	return prospect, nil
}

func (r *RepositoryImpl) List(ctx context.Context, filter Filter) ([]Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospect WHERE 1=1`
	args := make([]interface{}, 0, 2)

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Swimlane != "" {
		args = append(args, filter.Swimlane)
		query += fmt.Sprintf(" AND swimlane = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query prospects: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	prospects := make([]Prospect, 0, 10)
	for rows.Next() {
		prospect, err := scanProspect(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		prospects = append(prospects, prospect)
	}
	return prospects, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, prospect Prospect) (Prospect, error) {
	prospect.UpdatedAt = time.Now()

	tagsJSON, err := marshalTags(prospect.Tags)
	if err != nil {
		log.Error(err)
		return Prospect{}, err
	}

	query := `UPDATE prospect
			  SET type = $1, name = $2, email = $3, target_budget = $4, status = $5,
			      swimlane = $6, tags = $7, notes = $8, website_url = $9, image_url = $10,
			      updated_at = $11
			  WHERE id = $12`

	res, err := r.db.ExecContext(ctx, query,
		string(prospect.Type), prospect.Name, prospect.Email, prospect.TargetBudget,
		string(prospect.Status), prospect.Swimlane, tagsJSON, prospect.Notes,
		prospect.WebsiteURL, prospect.ImageURL, prospect.UpdatedAt.UnixMilli(), prospect.ID)
	if err != nil {
		err := fmt.Errorf("could not update prospect: %w", err)
		log.Error(err)
		return Prospect{}, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return Prospect{}, ErrProspectNotFound
	}

	return prospect, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prospect WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete prospect: %w", err)
		log.Error(err)
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrProspectNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProspect(row rowScanner) (Prospect, error) {
	var (
		prospect     Prospect
		typ          string
		targetBudget sql.NullFloat64
		status       string
		tagsJSON     string
		createdAt    int64
		updatedAt    int64
	)
	err := row.Scan(&prospect.ID, &typ, &prospect.Name, &prospect.Email,
		&targetBudget, &status, &prospect.Swimlane, &tagsJSON, &prospect.Notes,
		&prospect.WebsiteURL, &prospect.ImageURL, &createdAt, &updatedAt)
	if err != nil {
		return Prospect{}, err
	}

	prospect.Type = Type(typ)
	prospect.Status = Status(status)
	if targetBudget.Valid {
		prospect.TargetBudget = &targetBudget.Float64
	}
	prospect.CreatedAt = time.UnixMilli(createdAt).UTC()
	prospect.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &prospect.Tags); err != nil {
			return Prospect{}, fmt.Errorf("could not decode tags: %w", err)
		}
	}

	return prospect, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("could not encode tags: %w", err)
	}
	return string(encoded), nil
}
