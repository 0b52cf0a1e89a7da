package parking

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/semanticallynull/bikely-backend/geofence"
)

// Spot is a permitted parking zone. A rental can only be ended within
// geofence.Radius of one.
type Spot struct {
	ID        uuid.UUID
	Name      string
	Location  pgtype.Point
	CreatedAt time.Time `db:"created_at"`
}

func (s Spot) Position() geofence.Point {
	return geofence.FromPG(s.Location)
}

// Zones returns the centres of spots, in order.
func Zones(spots []Spot) []geofence.Point {
	zones := make([]geofence.Point, len(spots))
	for i, s := range spots {
		zones[i] = s.Position()
	}
	return zones
}
