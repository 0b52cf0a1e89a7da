// Package geofence decides whether a coordinate lies inside one of the
// circular zones where a rental may be completed.
package geofence

import (
	"math"

	"github.com/jackc/pgx/v5/pgtype"
)

// EarthRadius is the mean radius of the earth in metres.
const EarthRadius = 6371000.0

// Radius is the distance in metres around a parking spot in which a bike may
// be returned.
const Radius = 100.0

// Point is a WGS 84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite and in range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// PG converts the point to the postgres point representation, with X holding
// the latitude and Y the longitude.
func (p Point) PG() pgtype.Point {
	return pgtype.Point{P: pgtype.Vec2{X: p.Lat, Y: p.Lng}, Valid: true}
}

// FromPG is the inverse of Point.PG.
func FromPG(p pgtype.Point) Point {
	return Point{Lat: p.P.X, Lng: p.P.Y}
}

// Distance returns the great-circle distance in metres between a and b.
func Distance(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Within reports whether candidate is at most radius metres away from any of
// the zone centres. It is false when there are no zones.
//
// Zones are scanned linearly, which is fine for a city worth of parking spots.
func Within(candidate Point, zones []Point, radius float64) bool {
	for _, z := range zones {
		if Distance(candidate, z) <= radius {
			return true
		}
	}
	return false
}

// Nearest returns the index of and the distance to the zone closest to
// candidate. ok is false when zones is empty.
func Nearest(candidate Point, zones []Point) (idx int, dist float64, ok bool) {
	idx = -1
	for i, z := range zones {
		d := Distance(candidate, z)
		if idx == -1 || d < dist {
			idx, dist = i, d
		}
	}
	return idx, dist, idx != -1
}
