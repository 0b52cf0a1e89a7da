package problem

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *Problem) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.db.GetContext(ctx, p, createQuery,
		p.ID, p.UserID, p.BikeID, p.RentalID, p.Title, p.Type, p.Address, p.Location, p.Description)
}

const createQuery = `
INSERT INTO problems (id, user_id, bike_id, rental_id, title, type, address, location, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING *
`

func (r *Repository) SetPhotos(ctx context.Context, id uuid.UUID, photos []string) error {
	_, err := r.db.ExecContext(ctx, setPhotosQuery, id, photos)
	return err
}

const setPhotosQuery = `UPDATE problems SET photos = $2, updated_at = now() WHERE id = $1`

// ListByUser returns the problems a user reported, newest first. A nil
// status lists all of them.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, status *Status) ([]Detail, error) {
	problems := []Detail{}
	err := r.db.SelectContext(ctx, &problems,
		detailQuery+` WHERE p.user_id = $1 AND ($2::text IS NULL OR p.status = $2) ORDER BY p.created_at DESC`,
		userID, nullStatus(status))
	return problems, err
}

func (r *Repository) List(ctx context.Context, status *Status) ([]Detail, error) {
	problems := []Detail{}
	err := r.db.SelectContext(ctx, &problems,
		detailQuery+` WHERE ($1::text IS NULL OR p.status = $1) ORDER BY p.created_at DESC`,
		nullStatus(status))
	return problems, err
}

const detailQuery = `
SELECT p.*,
       b.name AS bike_name, b.type AS bike_type,
       u.email AS user_email, u.first_name AS user_first_name,
       u.last_name AS user_last_name, u.phone AS user_phone
FROM problems p
LEFT JOIN bikes b ON b.id = p.bike_id
JOIN users u ON u.id = p.user_id
`

func nullStatus(s *Status) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

// CountOpen returns the number of problems nobody has looked at yet.
func (r *Repository) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM problems WHERE status = 'open'`)
	return n, err
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM problems`)
	return n, err
}

// Resolve closes a problem and applies the action to the reported bike in
// the same transaction. A bike that is out on a rental keeps its status.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID, action Action, note *string, adminID uuid.UUID) (Problem, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Problem{}, err
	}
	defer tx.Rollback()

	var p Problem
	err = tx.GetContext(ctx, &p, resolveQuery, id, note, adminID)
	if errors.Is(err, sql.ErrNoRows) {
		return Problem{}, ErrNotFound
	}
	if err != nil {
		return Problem{}, err
	}

	if p.BikeID.Valid {
		if _, err := tx.ExecContext(ctx, setBikeStatusQuery, p.BikeID.UUID, action.BikeStatus()); err != nil {
			return Problem{}, err
		}
	}

	return p, tx.Commit()
}

const resolveQuery = `
UPDATE problems
SET status = 'resolved', resolution_note = COALESCE($2, resolution_note),
    resolved_at = now(), resolved_by = $3, updated_at = now()
WHERE id = $1
RETURNING *
`

const setBikeStatusQuery = `
UPDATE bikes SET status = $2, updated_at = now()
WHERE id = $1 AND status <> 'in_use'
`

type StatusCount struct {
	Status Status `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

func (r *Repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	counts := []StatusCount{}
	err := r.db.SelectContext(ctx, &counts, `SELECT status, count(*) AS count FROM problems GROUP BY status ORDER BY status`)
	return counts, err
}
