package notification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("notification not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Type == "" {
		n.Type = Info
	}
	return r.db.GetContext(ctx, n, createQuery, n.ID, n.UserID, n.Title, n.Message, n.Type, n.RelatedRental)
}

const createQuery = `
INSERT INTO notifications (id, user_id, title, message, type, related_rental)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING *
`

// Notify implements the notifier the rental lifecycle writes to.
func (r *Repository) Notify(ctx context.Context, n Notification) error {
	return r.Create(ctx, &n)
}

// GetByUser returns the user's inbox, newest first.
func (r *Repository) GetByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	ns := []Notification{}
	err := r.db.SelectContext(ctx, &ns, getByUserQuery, userID)
	return ns, err
}

const getByUserQuery = `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

func (r *Repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, unreadCountQuery, userID)
	return n, err
}

const unreadCountQuery = `SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read`

// MarkRead marks one of the user's notifications as read.
func (r *Repository) MarkRead(ctx context.Context, id, userID uuid.UUID) (Notification, error) {
	var n Notification
	err := r.db.GetContext(ctx, &n, markReadQuery, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNotFound
	}
	return n, err
}

const markReadQuery = `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2 RETURNING *`

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, markAllReadQuery, userID)
	return err
}

const markAllReadQuery = `UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`
