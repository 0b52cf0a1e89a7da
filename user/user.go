package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string `db:"password_hash" json:"-"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	Phone        string
	// StripeID is set the first time the user is invoiced.
	StripeID  sql.NullString `db:"stripe_id" json:"-"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// Profile holds the fields a user may change about themselves. Nil fields
// are left unchanged.
type Profile struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}
