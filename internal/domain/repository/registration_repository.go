package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/common"
	"eventhub/internal/domain/model"
)

// RegistrationRepository owns the registration rows and the cross-entity
// reads its transactional flows need: register locks the event row, check-in
// locks the registration row, and both validate inside the same transaction
// that performs the write.
type RegistrationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	FindEventForUpdate(ctx context.Context, eventID string) (*model.Event, error)
	CountForEvent(ctx context.Context, eventID string) (int, error)
	Create(ctx context.Context, reg *model.Registration) error

	FindByIDForUpdate(ctx context.Context, id string) (*model.Registration, *model.Event, error)
	SetCheckIn(ctx context.Context, id string, checkedIn bool, checkedInAt *time.Time) error
	Delete(ctx context.Context, id string) error

	ListByUser(ctx context.Context, userID string) ([]model.UserRegistration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.EventRegistration, error)

	Count(ctx context.Context) (int, error)
	CountCheckedIn(ctx context.Context) (int, error)
	MostPopularEvent(ctx context.Context) (*model.PopularEvent, error)
	ListRecent(ctx context.Context, limit int) ([]model.RecentRegistration, error)
}

type pgRegistrationRepository struct {
	db *sql.DB
}

func NewPgRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &pgRegistrationRepository{db: db}
}

func (r *pgRegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// FindEventForUpdate locks the event row so concurrent registrations for the
// same event serialize on the capacity check.
func (r *pgRegistrationRepository) FindEventForUpdate(ctx context.Context, eventID string) (*model.Event, error) {
	query := `SELECT id, title, slug, description, location, starts_at, ends_at, capacity, image_url, created_by, created_at, updated_at
	          FROM events WHERE id = $1 FOR UPDATE`
	e := &model.Event{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, eventID).Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt,
		&e.Capacity, &e.ImageURL, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRegistrationRepository.FindEventForUpdate: %w", err)
	}
	return e, nil
}

func (r *pgRegistrationRepository) CountForEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgRegistrationRepository.CountForEvent: %w", err)
	}
	return count, nil
}

func (r *pgRegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	query := `INSERT INTO registrations (id, user_id, event_id, checked_in, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		reg.ID, reg.UserID, reg.EventID, reg.CheckedIn, reg.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) { // (user_id, event_id)
			return fmt.Errorf("user already registered for this event: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgRegistrationRepository.Create: %w", err)
	}
	return nil
}

// FindByIDForUpdate locks the registration row and returns it along with the
// event fields needed to derive the event's temporal status.
func (r *pgRegistrationRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Registration, *model.Event, error) {
	query := `SELECT r.id, r.user_id, r.event_id, r.checked_in, r.checked_in_at, r.created_at,
	                 e.id, e.title, e.starts_at, e.ends_at
	          FROM registrations r
	          JOIN events e ON r.event_id = e.id
	          WHERE r.id = $1
	          FOR UPDATE OF r`
	reg := &model.Registration{}
	event := &model.Event{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.CheckedIn, &reg.CheckedInAt, &reg.CreatedAt,
		&event.ID, &event.Title, &event.StartsAt, &event.EndsAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, fmt.Errorf("pgRegistrationRepository.FindByIDForUpdate: %w", err)
	}
	return reg, event, nil
}

func (r *pgRegistrationRepository) SetCheckIn(ctx context.Context, id string, checkedIn bool, checkedInAt *time.Time) error {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE registrations SET checked_in = $1, checked_in_at = $2 WHERE id = $3`,
		checkedIn, checkedInAt, id,
	)
	if err != nil {
		return fmt.Errorf("pgRegistrationRepository.SetCheckIn: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgRegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgRegistrationRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgRegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.UserRegistration, error) {
	query := `SELECT r.id, r.user_id, r.event_id, r.checked_in, r.checked_in_at, r.created_at,
	                 e.id, e.title, e.slug, e.location, e.starts_at, e.ends_at
	          FROM registrations r
	          JOIN events e ON r.event_id = e.id
	          WHERE r.user_id = $1
	          ORDER BY r.created_at DESC`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgRegistrationRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	var regs []model.UserRegistration
	for rows.Next() {
		var ur model.UserRegistration
		if err := rows.Scan(
			&ur.ID, &ur.UserID, &ur.EventID, &ur.CheckedIn, &ur.CheckedInAt, &ur.CreatedAt,
			&ur.Event.ID, &ur.Event.Title, &ur.Event.Slug, &ur.Event.Location, &ur.Event.StartsAt, &ur.Event.EndsAt,
		); err != nil {
			return nil, fmt.Errorf("pgRegistrationRepository.ListByUser scan: %w", err)
		}
		regs = append(regs, ur)
	}
	return regs, rows.Err()
}

func (r *pgRegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.EventRegistration, error) {
	query := `SELECT r.id, r.user_id, r.event_id, r.checked_in, r.checked_in_at, r.created_at,
	                 u.first_name, u.last_name, u.email
	          FROM registrations r
	          JOIN users u ON r.user_id = u.id
	          WHERE r.event_id = $1
	          ORDER BY r.created_at DESC`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("pgRegistrationRepository.ListByEvent: %w", err)
	}
	defer rows.Close()

	var regs []model.EventRegistration
	for rows.Next() {
		var er model.EventRegistration
		if err := rows.Scan(
			&er.ID, &er.UserID, &er.EventID, &er.CheckedIn, &er.CheckedInAt, &er.CreatedAt,
			&er.UserFirstName, &er.UserLastName, &er.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("pgRegistrationRepository.ListByEvent scan: %w", err)
		}
		regs = append(regs, er)
	}
	return regs, rows.Err()
}

func (r *pgRegistrationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := q(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgRegistrationRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgRegistrationRepository) CountCheckedIn(ctx context.Context) (int, error) {
	var count int
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE checked_in`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgRegistrationRepository.CountCheckedIn: %w", err)
	}
	return count, nil
}

// MostPopularEvent returns the event with the most registrations, ties broken
// by earliest event creation. Returns (nil, nil) when no registrations exist.
func (r *pgRegistrationRepository) MostPopularEvent(ctx context.Context) (*model.PopularEvent, error) {
	query := `SELECT e.id, e.title, e.slug, e.location, e.starts_at, e.ends_at, COUNT(r.id) AS registrations
	          FROM registrations r
	          JOIN events e ON r.event_id = e.id
	          GROUP BY e.id
	          ORDER BY COUNT(r.id) DESC, e.created_at ASC
	          LIMIT 1`
	p := &model.PopularEvent{}
	err := q(ctx, r.db).QueryRowContext(ctx, query).Scan(
		&p.Event.ID, &p.Event.Title, &p.Event.Slug, &p.Event.Location, &p.Event.StartsAt, &p.Event.EndsAt, &p.Registrations,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pgRegistrationRepository.MostPopularEvent: %w", err)
	}
	return p, nil
}

func (r *pgRegistrationRepository) ListRecent(ctx context.Context, limit int) ([]model.RecentRegistration, error) {
	query := `SELECT r.id, r.user_id, r.event_id, r.checked_in, r.checked_in_at, r.created_at,
	                 u.first_name, u.last_name, u.email,
	                 e.id, e.title, e.slug, e.location, e.starts_at, e.ends_at
	          FROM registrations r
	          JOIN users u ON r.user_id = u.id
	          JOIN events e ON r.event_id = e.id
	          ORDER BY r.created_at DESC
	          LIMIT $1`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgRegistrationRepository.ListRecent: %w", err)
	}
	defer rows.Close()

	var regs []model.RecentRegistration
	for rows.Next() {
		var rr model.RecentRegistration
		if err := rows.Scan(
			&rr.ID, &rr.UserID, &rr.EventID, &rr.CheckedIn, &rr.CheckedInAt, &rr.CreatedAt,
			&rr.UserFirstName, &rr.UserLastName, &rr.UserEmail,
			&rr.Event.ID, &rr.Event.Title, &rr.Event.Slug, &rr.Event.Location, &rr.Event.StartsAt, &rr.Event.EndsAt,
		); err != nil {
			return nil, fmt.Errorf("pgRegistrationRepository.ListRecent scan: %w", err)
		}
		regs = append(regs, rr)
	}
	return regs, rows.Err()
}
