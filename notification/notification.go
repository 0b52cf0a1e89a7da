// Package notification stores the messages shown in a user's inbox. Nothing
// is pushed; the apps poll the inbox.
package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	Info    Type = "info"
	Success Type = "success"
	Warning Type = "warning"
	Error   Type = "error"
)

type Notification struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"userId"`
	Title         string        `json:"title"`
	Message       string        `json:"message"`
	Type          Type          `json:"type"`
	RelatedRental uuid.NullUUID `db:"related_rental" json:"relatedRental"`
	Read          bool          `json:"read"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}
