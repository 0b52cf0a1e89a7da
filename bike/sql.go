package bike

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("bike not found")
	// ErrInUse is returned when an admin changes the status of a rented bike.
	ErrInUse = errors.New("bike is in use")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBikes(ctx context.Context) ([]Bike, error) {
	bikes := []Bike{}
	err := r.db.SelectContext(ctx, &bikes, getBikes)
	return bikes, err
}

const getBikes = `SELECT * FROM bikes ORDER BY created_at DESC`

// GetAvailableBikes returns the bikes a user can rent right now.
func (r *Repository) GetAvailableBikes(ctx context.Context) ([]Bike, error) {
	bikes := []Bike{}
	err := r.db.SelectContext(ctx, &bikes, getAvailableBikes)
	return bikes, err
}

const getAvailableBikes = `SELECT * FROM bikes WHERE status = 'available' ORDER BY name`

func (r *Repository) GetBike(ctx context.Context, id uuid.UUID) (Bike, error) {
	var bike Bike

	err := r.db.GetContext(ctx, &bike, getBike, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bike, ErrNotFound
	}

	return bike, err
}

const getBike = `SELECT * FROM bikes WHERE id = $1`

func (r *Repository) CreateBike(ctx context.Context, b *Bike) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = Available
	}
	return r.db.GetContext(ctx, b, createBike, b.ID, b.Name, b.Type, b.HourlyRate, b.Status, b.Location)
}

const createBike = `
INSERT INTO bikes (id, name, type, hourly_rate, status, location)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING *
`

func (r *Repository) UpdateBike(ctx context.Context, id uuid.UUID, p Patch) (Bike, error) {
	var loc *pgtype.Point
	if p.Location != nil {
		pt := p.Location.PG()
		loc = &pt
	}

	var bike Bike
	err := r.db.GetContext(ctx, &bike, updateBike, id, p.Name, p.Type, p.HourlyRate, p.Status, loc)
	if errors.Is(err, sql.ErrNoRows) {
		return bike, r.unchanged(ctx, id)
	}
	return bike, err
}

// unchanged explains why a guarded update matched no row.
func (r *Repository) unchanged(ctx context.Context, id uuid.UUID) error {
	b, err := r.GetBike(ctx, id)
	if err != nil {
		return err
	}
	if b.Status == InUse {
		return ErrInUse
	}
	return ErrNotFound
}

const updateBike = `
UPDATE bikes SET
    name        = COALESCE($2, name),
    type        = COALESCE($3, type),
    hourly_rate = COALESCE($4, hourly_rate),
    status      = COALESCE($5, status),
    location    = COALESCE($6, location),
    updated_at  = now()
WHERE id = $1 AND ($5::text IS NULL OR status <> 'in_use')
RETURNING *
`

// SetStatus moves a bike to status. Rented bikes keep their status until the
// rental ends.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx, setStatus, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.unchanged(ctx, id)
	}
	return nil
}

const setStatus = `
UPDATE bikes SET status = $2, updated_at = now()
WHERE id = $1 AND status <> 'in_use'
`

// Deactivate is the soft delete of a bike.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.SetStatus(ctx, id, Inactive)
}

// CountByType groups all bikes by their type.
func (r *Repository) CountByType(ctx context.Context) ([]TypeCount, error) {
	counts := []TypeCount{}
	err := r.db.SelectContext(ctx, &counts, countByType)
	return counts, err
}

type TypeCount struct {
	Type  Type `db:"type" json:"type"`
	Count int  `db:"count" json:"count"`
}

const countByType = `SELECT type, count(*) AS count FROM bikes GROUP BY type ORDER BY type`

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM bikes`)
	return n, err
}

type StatusCount struct {
	Status Status `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

func (r *Repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	counts := []StatusCount{}
	err := r.db.SelectContext(ctx, &counts, `SELECT status, count(*) AS count FROM bikes GROUP BY status ORDER BY status`)
	return counts, err
}
