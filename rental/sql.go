package rental

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/semanticallynull/bikely-backend/internal/pgutil"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Start marks the bike in use and inserts the rental in one transaction.
// The bike moves only if it is still available, and the partial unique
// indexes on active rentals reject a second active rental per user or bike.
func (r *Repository) Start(ctx context.Context, rental *Rental) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, claimBike, rental.BikeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBikeNotAvailable
	}

	err = tx.GetContext(ctx, rental, startRental,
		rental.ID, rental.UserID, rental.BikeID, rental.StartTime, rental.StartLocation)
	if constraint, ok := pgutil.UniqueViolation(err); ok {
		if constraint == "rentals_one_active_per_bike" {
			return ErrBikeNotAvailable
		}
		return ErrActiveRentalExists
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

const claimBike = `
UPDATE bikes SET status = 'in_use', updated_at = now()
WHERE id = $1 AND status = 'available'
`

const startRental = `
INSERT INTO rentals (id, user_id, bike_id, start_time, start_location, status)
VALUES ($1, $2, $3, $4, $5, 'active')
RETURNING *
`

// Complete closes an active rental and parks its bike at the end location.
// It fails with ErrRentalNotActive when the rental was closed concurrently.
func (r *Repository) Complete(ctx context.Context, c Completion) (Rental, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Rental{}, err
	}
	defer tx.Rollback()

	var rental Rental
	err = tx.GetContext(ctx, &rental, completeRental,
		c.RentalID, c.UserID, c.EndTime, c.EndLocation, c.EndPhoto, c.TotalCost)
	if errors.Is(err, sql.ErrNoRows) {
		return Rental{}, ErrRentalNotActive
	}
	if err != nil {
		return Rental{}, err
	}

	if _, err := tx.ExecContext(ctx, releaseBike, rental.BikeID, c.EndLocation); err != nil {
		return Rental{}, err
	}

	return rental, tx.Commit()
}

const completeRental = `
UPDATE rentals
SET end_time = $3, end_location = $4, end_photo = $5, total_cost = $6,
    status = 'completed', updated_at = now()
WHERE id = $1 AND user_id = $2 AND status = 'active'
RETURNING *
`

const releaseBike = `
UPDATE bikes SET status = 'available', location = $2, updated_at = now()
WHERE id = $1
`

// GetForUser returns a rental owned by userID.
func (r *Repository) GetForUser(ctx context.Context, id, userID uuid.UUID) (Rental, error) {
	var rental Rental
	err := r.db.GetContext(ctx, &rental, getForUser, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return rental, ErrRentalNotFound
	}
	return rental, err
}

const getForUser = `SELECT * FROM rentals WHERE id = $1 AND user_id = $2`

// Active returns the user's active rental, or nil when there is none.
func (r *Repository) Active(ctx context.Context, userID uuid.UUID) (*Detail, error) {
	var d Detail
	err := r.db.GetContext(ctx, &d, detailQuery+` WHERE r.user_id = $1 AND r.status = 'active'`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Detail, error) {
	rentals := []Detail{}
	err := r.db.SelectContext(ctx, &rentals, detailQuery+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
	return rentals, err
}

// List returns every rental, newest start first.
func (r *Repository) List(ctx context.Context) ([]Detail, error) {
	rentals := []Detail{}
	err := r.db.SelectContext(ctx, &rentals, detailQuery+` ORDER BY r.start_time DESC`)
	return rentals, err
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]Detail, error) {
	rentals := []Detail{}
	err := r.db.SelectContext(ctx, &rentals, detailQuery+` ORDER BY r.created_at DESC LIMIT $1`, limit)
	return rentals, err
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	var d Detail
	err := r.db.GetContext(ctx, &d, detailQuery+` WHERE r.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrRentalNotFound
	}
	return d, err
}

const detailQuery = `
SELECT r.*,
       b.name AS bike_name, b.type AS bike_type, b.hourly_rate AS bike_hourly_rate,
       u.email AS user_email, u.first_name AS user_first_name,
       u.last_name AS user_last_name, u.phone AS user_phone
FROM rentals r
JOIN bikes b ON b.id = r.bike_id
JOIN users u ON u.id = r.user_id
`

func (r *Repository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM rentals WHERE status = 'active'`)
	return n, err
}

// Bucket is one point of a time series: rentals started in the bucket and
// revenue of those that were completed.
type Bucket struct {
	Start   time.Time `db:"bucket"`
	Count   int       `db:"count"`
	Revenue float64   `db:"revenue"`
}

// Series groups rentals started in [from, to) by day or month.
func (r *Repository) Series(ctx context.Context, unit string, from, to time.Time) ([]Bucket, error) {
	buckets := []Bucket{}
	err := r.db.SelectContext(ctx, &buckets, seriesQuery, unit, from, to)
	return buckets, err
}

const seriesQuery = `
SELECT date_trunc($1::text, start_time AT TIME ZONE 'UTC') AS bucket,
       count(*) AS count,
       coalesce(sum(total_cost) FILTER (WHERE status = 'completed'), 0) AS revenue
FROM rentals
WHERE start_time >= $2 AND start_time < $3
GROUP BY bucket
ORDER BY bucket
`

// Summary aggregates all completed rentals.
type Summary struct {
	Revenue            float64 `db:"revenue"`
	AvgDurationMinutes float64 `db:"avg_duration_minutes"`
}

func (r *Repository) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.db.GetContext(ctx, &s, summaryQuery)
	return s, err
}

const summaryQuery = `
SELECT coalesce(sum(total_cost), 0) AS revenue,
       coalesce(avg(extract(epoch FROM end_time - start_time)) / 60, 0)::double precision AS avg_duration_minutes
FROM rentals
WHERE status = 'completed'
`
