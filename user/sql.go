package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/semanticallynull/bikely-backend/internal/pgutil"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("username or email already exists")
)

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserQuery, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

const getUserQuery = "SELECT * FROM users WHERE id = $1"

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserByUsernameQuery, normalize(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

const getUserByUsernameQuery = "SELECT * FROM users WHERE username = $1"

// CreateUser stores u, lower-casing its username and email.
func (r *Repository) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := r.db.GetContext(ctx, u, createUserQuery,
		u.ID, normalize(u.Username), normalize(u.Email), u.PasswordHash, u.FirstName, u.LastName, u.Phone)
	if _, ok := pgutil.UniqueViolation(err); ok {
		return ErrExists
	}
	return err
}

const createUserQuery = `
INSERT INTO users (id, username, email, password_hash, first_name, last_name, phone)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING *
`

func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, p Profile) (*User, error) {
	if p.Email != nil {
		e := normalize(*p.Email)
		p.Email = &e
	}

	var u User
	err := r.db.GetContext(ctx, &u, updateProfileQuery, id, p.FirstName, p.LastName, p.Email, p.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if _, ok := pgutil.UniqueViolation(err); ok {
		return nil, ErrExists
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const updateProfileQuery = `
UPDATE users SET
    first_name = COALESCE($2, first_name),
    last_name  = COALESCE($3, last_name),
    email      = COALESCE($4, email),
    phone      = COALESCE($5, phone),
    updated_at = now()
WHERE id = $1
RETURNING *
`

func (r *Repository) AddStripeIDToUser(ctx context.Context, id uuid.UUID, stripeID string) error {
	_, err := r.db.ExecContext(ctx, addStripeIDToUserQuery, stripeID, id)
	return err
}

const addStripeIDToUserQuery = "UPDATE users SET stripe_id = $1 WHERE id = $2"

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, "SELECT count(*) FROM users")
	return n, err
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
