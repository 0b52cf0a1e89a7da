package rental

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/geofence"
	"github.com/semanticallynull/bikely-backend/notification"
	"github.com/semanticallynull/bikely-backend/parking"
)

// memStore keeps bikes, spots, rentals and notifications in memory. Start
// and Complete hold the lock for the whole transition, like the
// transaction of the SQL repository.
type memStore struct {
	mu            sync.Mutex
	bikes         map[uuid.UUID]bike.Bike
	spots         []parking.Spot
	rentals       map[uuid.UUID]Rental
	notifications []notification.Notification
	notifyErr     error
}

func newMemStore() *memStore {
	return &memStore{
		bikes:   map[uuid.UUID]bike.Bike{},
		rentals: map[uuid.UUID]Rental{},
	}
}

func (m *memStore) addBike(name string, rate float64, at geofence.Point) bike.Bike {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := bike.Bike{
		ID:         uuid.New(),
		Name:       name,
		Type:       bike.City,
		HourlyRate: rate,
		Status:     bike.Available,
		Location:   at.PG(),
	}
	m.bikes[b.ID] = b
	return b
}

func (m *memStore) addSpot(name string, at geofence.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.spots = append(m.spots, parking.Spot{ID: uuid.New(), Name: name, Location: at.PG()})
}

func (m *memStore) bike(id uuid.UUID) bike.Bike {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bikes[id]
}

func (m *memStore) rental(id uuid.UUID) Rental {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rentals[id]
}

func (m *memStore) updateBike(id uuid.UUID, fn func(*bike.Bike)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bikes[id]
	fn(&b)
	m.bikes[id] = b
}

func (m *memStore) deleteBike(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bikes, id)
}

func (m *memStore) activeCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.rentals {
		if r.UserID == userID && r.Status == Active {
			n++
		}
	}
	return n
}

func (m *memStore) notificationsFor(userID uuid.UUID) []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []notification.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) Start(_ context.Context, r *Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bikes[r.BikeID]
	if !ok || b.Status != bike.Available {
		return ErrBikeNotAvailable
	}
	for _, other := range m.rentals {
		if other.UserID == r.UserID && other.Status == Active {
			return ErrActiveRentalExists
		}
	}

	b.Status = bike.InUse
	m.bikes[b.ID] = b
	m.rentals[r.ID] = *r
	return nil
}

func (m *memStore) Complete(_ context.Context, c Completion) (Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rentals[c.RentalID]
	if !ok || r.UserID != c.UserID || r.Status != Active {
		return Rental{}, ErrRentalNotActive
	}
	r.EndTime.Time, r.EndTime.Valid = c.EndTime, true
	r.EndLocation = c.EndLocation
	r.EndPhoto = c.EndPhoto
	r.TotalCost.Float64, r.TotalCost.Valid = c.TotalCost, true
	r.Status = Completed
	m.rentals[r.ID] = r

	b := m.bikes[r.BikeID]
	b.Status = bike.Available
	b.Location = c.EndLocation
	m.bikes[b.ID] = b
	return r, nil
}

func (m *memStore) GetForUser(_ context.Context, id, userID uuid.UUID) (Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rentals[id]
	if !ok || r.UserID != userID {
		return Rental{}, ErrRentalNotFound
	}
	return r, nil
}

func (m *memStore) Active(_ context.Context, userID uuid.UUID) (*Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rentals {
		if r.UserID == userID && r.Status == Active {
			b := m.bikes[r.BikeID]
			return &Detail{Rental: r, BikeName: b.Name, BikeType: b.Type, BikeHourlyRate: b.HourlyRate}, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetBike(_ context.Context, id uuid.UUID) (bike.Bike, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bikes[id]
	if !ok {
		return bike.Bike{}, bike.ErrNotFound
	}
	return b, nil
}

func (m *memStore) GetSpots(context.Context) ([]parking.Spot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]parking.Spot(nil), m.spots...), nil
}

func (m *memStore) Notify(_ context.Context, n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notifications = append(m.notifications, n)
	return nil
}

var errNotifyDown = errors.New("notifications unavailable")
