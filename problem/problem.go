// Package problem handles issue reports filed by riders and their
// resolution by admins.
package problem

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/semanticallynull/bikely-backend/bike"
)

type Type string

const (
	BikeIssue    Type = "bike"
	ParkingIssue Type = "parking"
	AppIssue     Type = "app"
	OtherIssue   Type = "other"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case BikeIssue, ParkingIssue, AppIssue, OtherIssue:
		return t, nil
	}
	return "", fmt.Errorf("invalid problem type %q", s)
}

func (t *Type) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	tt, err := ParseType(v)
	if err != nil {
		return err
	}
	*t = tt
	return nil
}

type Status string

const (
	Open       Status = "open"
	InProgress Status = "in_progress"
	Resolved   Status = "resolved"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case Open, InProgress, Resolved:
		return st, nil
	}
	return "", fmt.Errorf("invalid problem status %q", s)
}

// Action is what an admin does with the reported bike when closing a
// problem.
type Action string

const (
	Resolve    Action = "resolve"
	Maintain   Action = "maintenance"
	Deactivate Action = "deactivate"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Resolve, Maintain, Deactivate:
		return a, nil
	}
	return "", ErrInvalidAction
}

func (a *Action) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	act, err := ParseAction(v)
	if err != nil {
		return err
	}
	*a = act
	return nil
}

// BikeStatus is the status the reported bike is moved to.
func (a Action) BikeStatus() bike.Status {
	switch a {
	case Maintain:
		return bike.Maintenance
	case Deactivate:
		return bike.Inactive
	default:
		return bike.Available
	}
}

// Photos are paths relative to the photo directory.
type Photos []string

func (p *Photos) Scan(src any) error {
	var v []string
	if err := pgtype.NewMap().SQLScanner(&v).Scan(src); err != nil {
		return err
	}
	*p = v
	return nil
}

type Problem struct {
	ID             uuid.UUID
	UserID         uuid.UUID     `db:"user_id"`
	BikeID         uuid.NullUUID `db:"bike_id"`
	RentalID       uuid.NullUUID `db:"rental_id"`
	Title          string
	Type           Type
	Address        sql.NullString
	Location       pgtype.Point
	Description    string
	Photos         Photos
	Status         Status
	ResolutionNote sql.NullString `db:"resolution_note"`
	ResolvedAt     sql.NullTime   `db:"resolved_at"`
	ResolvedBy     uuid.NullUUID  `db:"resolved_by"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Detail is a problem with a summary of the reported bike and the reporter.
type Detail struct {
	Problem

	BikeName sql.NullString `db:"bike_name"`
	BikeType sql.NullString `db:"bike_type"`

	UserEmail     string `db:"user_email"`
	UserFirstName string `db:"user_first_name"`
	UserLastName  string `db:"user_last_name"`
	UserPhone     string `db:"user_phone"`
}
