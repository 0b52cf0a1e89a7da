// Package rental implements the lifecycle of a rental: a user unlocks an
// available bike by scanning it and returns it next to a parking spot, at
// which point the ride is priced.
package rental

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/semanticallynull/bikely-backend/bike"
)

// Status of a rental. A rental is created active and moves to completed
// exactly once. Cancelled is reserved for manual corrections by operators;
// the lifecycle never produces it.
type Status string

const (
	Active    Status = "active"
	Completed Status = "completed"
	Cancelled Status = "cancelled"
)

type Rental struct {
	ID            uuid.UUID
	UserID        uuid.UUID       `db:"user_id"`
	BikeID        uuid.UUID       `db:"bike_id"`
	StartTime     time.Time       `db:"start_time"`
	StartLocation pgtype.Point    `db:"start_location"`
	EndTime       sql.NullTime    `db:"end_time"`
	EndLocation   pgtype.Point    `db:"end_location"`
	EndPhoto      sql.NullString  `db:"end_photo"`
	TotalCost     sql.NullFloat64 `db:"total_cost"`
	Status        Status
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Detail is a rental joined with a summary of its bike and rider.
type Detail struct {
	Rental

	BikeName       string    `db:"bike_name"`
	BikeType       bike.Type `db:"bike_type"`
	BikeHourlyRate float64   `db:"bike_hourly_rate"`

	UserEmail     string `db:"user_email"`
	UserFirstName string `db:"user_first_name"`
	UserLastName  string `db:"user_last_name"`
	UserPhone     string `db:"user_phone"`
}

// Completion holds everything written when a rental ends.
type Completion struct {
	RentalID    uuid.UUID
	UserID      uuid.UUID
	BikeID      uuid.UUID
	EndTime     time.Time
	EndLocation pgtype.Point
	EndPhoto    sql.NullString
	TotalCost   float64
}
