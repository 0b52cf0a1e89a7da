// Package bike
package bike

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/semanticallynull/bikely-backend/geofence"
)

// Bike represents a bike which can be rented.
type Bike struct {
	ID   uuid.UUID
	Name string
	Type Type
	// HourlyRate is the price of one hour of riding, in RSD.
	HourlyRate float64 `db:"hourly_rate"`
	Status     Status
	// Location is the last known position. It is updated when a rental ends.
	Location pgtype.Point

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (b Bike) Position() geofence.Point {
	return geofence.FromPG(b.Location)
}

// Status is the lifecycle state of a bike. It is changed by rentals and by
// admins, never directly by users.
type Status string

const (
	Available   Status = "available"
	InUse       Status = "in_use"
	Maintenance Status = "maintenance"
	Inactive    Status = "inactive"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case Available, InUse, Maintenance, Inactive:
		return st, nil
	}
	return "", fmt.Errorf("invalid bike status %q", s)
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	st, err := ParseStatus(v)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Type is the kind of bike, as shown in the apps.
type Type string

const (
	City     Type = "gradski"
	Mountain Type = "planinski"
	BMX      Type = "bmx"
	Electric Type = "elektricni"
	Hybrid   Type = "hibridni"
	Cargo    Type = "cargo"
)

var types = []Type{City, Mountain, BMX, Electric, Hybrid, Cargo}

func ParseType(s string) (Type, error) {
	for _, t := range types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid bike type %q", s)
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

// Patch holds the fields of an admin update. Nil fields are left unchanged.
type Patch struct {
	Name       *string
	Type       *Type
	HourlyRate *float64
	Status     *Status
	Location   *geofence.Point
}
