// Package admin stores the operators of the admin console.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Admin struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string `db:"password_hash" json:"-"`
	Name         string
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

var ErrNotFound = errors.New("admin not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.db.GetContext(ctx, &a, getAdminByEmailQuery, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

const getAdminByEmailQuery = `SELECT * FROM admins WHERE email = $1`

// Upsert creates the admin with the given email, or resets the password and
// name of an existing one.
func (r *Repository) Upsert(ctx context.Context, email, name, passwordHash string) (*Admin, error) {
	var a Admin
	err := r.db.GetContext(ctx, &a, upsertQuery, uuid.New(), strings.ToLower(strings.TrimSpace(email)), name, passwordHash)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const upsertQuery = `
INSERT INTO admins (id, email, name, password_hash)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE SET
    name          = EXCLUDED.name,
    password_hash = EXCLUDED.password_hash,
    updated_at    = now()
RETURNING *
`
