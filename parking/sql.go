package parking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("parking spot not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetSpots lists spots by name, which is how the map legend shows them.
func (r *Repository) GetSpots(ctx context.Context) ([]Spot, error) {
	spots := []Spot{}
	err := r.db.SelectContext(ctx, &spots, getSpots)
	return spots, err
}

const getSpots = `SELECT * FROM parking_spots ORDER BY name`

func (r *Repository) GetRecentSpots(ctx context.Context) ([]Spot, error) {
	spots := []Spot{}
	err := r.db.SelectContext(ctx, &spots, getRecentSpots)
	return spots, err
}

const getRecentSpots = `SELECT * FROM parking_spots ORDER BY created_at DESC`

func (r *Repository) GetSpot(ctx context.Context, id uuid.UUID) (Spot, error) {
	var spot Spot
	err := r.db.GetContext(ctx, &spot, getSpot, id)
	if errors.Is(err, sql.ErrNoRows) {
		return spot, ErrNotFound
	}
	return spot, err
}

const getSpot = `SELECT * FROM parking_spots WHERE id = $1`

func (r *Repository) CreateSpot(ctx context.Context, s *Spot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return r.db.GetContext(ctx, s, createSpot, s.ID, s.Name, s.Location)
}

const createSpot = `INSERT INTO parking_spots (id, name, location) VALUES ($1, $2, $3) RETURNING *`

func (r *Repository) DeleteSpot(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteSpot, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const deleteSpot = `DELETE FROM parking_spots WHERE id = $1`
