package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/common"
	"eventhub/internal/domain/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindBySlug(ctx context.Context, slug string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Count(ctx context.Context) (int, error)
}

type pgEventRepository struct {
	db *sql.DB
}

func NewPgEventRepository(db *sql.DB) EventRepository {
	return &pgEventRepository{db: db}
}

func (r *pgEventRepository) Create(ctx context.Context, e *model.Event) error {
	query := `INSERT INTO events (id, title, slug, description, location, starts_at, ends_at, capacity, image_url, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING created_at, updated_at`
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		e.ID, e.Title, e.Slug, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Capacity, e.ImageURL, e.CreatedByID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) { // Unique constraint for slug
			return fmt.Errorf("event with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgEventRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEventRepository) Update(ctx context.Context, e *model.Event) error {
	query := `UPDATE events SET
	            title = $1, slug = $2, description = $3, location = $4, starts_at = $5,
	            ends_at = $6, capacity = $7, image_url = $8, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $9`
	res, err := q(ctx, r.db).ExecContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Capacity, e.ImageURL, e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("event with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgEventRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgEventRepository) Delete(ctx context.Context, id string) error {
	// Registrations cascade via the FK.
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgEventRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

const eventSelect = `
	SELECT e.id, e.title, e.slug, e.description, e.location, e.starts_at, e.ends_at,
	       e.capacity, e.image_url, e.created_by, e.created_at, e.updated_at,
	       COUNT(r.id) AS registered
	FROM events e
	LEFT JOIN registrations r ON r.event_id = e.id`

func scanEvent(row *sql.Row) (*model.Event, error) {
	e := &model.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt,
		&e.Capacity, &e.ImageURL, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt, &e.Registered,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *pgEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	query := eventSelect + ` WHERE e.id = $1 GROUP BY e.id`
	e, err := scanEvent(q(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgEventRepository.FindByID: %w", err)
	}
	return e, nil
}

func (r *pgEventRepository) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	query := eventSelect + ` WHERE e.slug = $1 GROUP BY e.id`
	e, err := scanEvent(q(ctx, r.db).QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgEventRepository.FindBySlug: %w", err)
	}
	return e, nil
}

func (r *pgEventRepository) List(ctx context.Context) ([]model.Event, error) {
	query := eventSelect + ` GROUP BY e.id ORDER BY e.created_at`
	rows, err := q(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgEventRepository.List: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Slug, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt,
			&e.Capacity, &e.ImageURL, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt, &e.Registered,
		); err != nil {
			return nil, fmt.Errorf("pgEventRepository.List scan: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *pgEventRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := q(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgEventRepository.Count: %w", err)
	}
	return count, nil
}
