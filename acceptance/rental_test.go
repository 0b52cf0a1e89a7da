package acceptance

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/semanticallynull/bikely-backend/geofence"
)

const pngPhoto = "data:image/png;base64,iVBORw0KGgo="

func TestRentalLifecycle(t *testing.T) {
	ts := NewTestServer(t)
	admin := ts.AdminToken(t)
	ts.CreateSpot(t, admin, "Trg Republike", spotLocation)
	b := ts.CreateBike(t, admin, "Bike-A", 120)
	rider, riderID := ts.RegisterUser(t, "ana")

	var started rentalResponse
	decode(t, ts.POST("/api/user/rentals/start", startBody(b.ID), rider), http.StatusCreated, &started)
	if started.Status != "active" || started.BikeID != b.ID || started.UserID != riderID {
		t.Fatalf("unexpected rental: %s", spew.Sdump(started))
	}

	var got bikeResponse
	decode(t, ts.GET("/api/user/bikes/"+b.ID.String(), rider), http.StatusOK, &got)
	if got.Status != "in_use" {
		t.Errorf("expected bike in_use, got %s", got.Status)
	}

	var active *rentalResponse
	decode(t, ts.GET("/api/user/rentals/active", rider), http.StatusOK, &active)
	if active == nil || active.ID != started.ID {
		t.Fatalf("expected active rental %s, got %s", started.ID, spew.Sdump(active))
	}
	if active.Bike == nil || active.Bike.Name != "Bike-A" {
		t.Errorf("expected bike details on the active rental, got %s", spew.Sdump(active.Bike))
	}

	end := geofence.Point{Lat: spotLocation.Lat + 0.0002, Lng: spotLocation.Lng}
	var ended rentalResponse
	decode(t, ts.POST("/api/user/rentals/"+started.ID.String()+"/end", map[string]any{
		"endLocation": end,
		"endPhoto":    pngPhoto,
	}, rider), http.StatusOK, &ended)

	if ended.Status != "completed" {
		t.Errorf("expected completed, got %s", ended.Status)
	}
	if ended.TotalCost == nil || *ended.TotalCost != 120 {
		t.Errorf("expected one billed hour at 120, got %s", spew.Sdump(ended.TotalCost))
	}
	if ended.EndPhoto == nil || *ended.EndPhoto != "rentals/"+started.ID.String()+".png" {
		t.Errorf("unexpected end photo: %s", spew.Sdump(ended.EndPhoto))
	}

	decode(t, ts.GET("/api/user/bikes/"+b.ID.String(), rider), http.StatusOK, &got)
	if got.Status != "available" {
		t.Errorf("expected bike available, got %s", got.Status)
	}
	if got.Location != end {
		t.Errorf("expected bike at %v, got %v", end, got.Location)
	}

	active = nil
	decode(t, ts.GET("/api/user/rentals/active", rider), http.StatusOK, &active)
	if active != nil {
		t.Errorf("expected no active rental, got %s", spew.Sdump(active))
	}

	var history []rentalResponse
	decode(t, ts.GET("/api/user/rentals", rider), http.StatusOK, &history)
	if len(history) != 1 {
		t.Errorf("expected 1 rental in history, got %d", len(history))
	}

	var one rentalResponse
	decode(t, ts.GET("/api/admin/rentals/"+started.ID.String(), admin), http.StatusOK, &one)
	if one.Status != "completed" {
		t.Errorf("expected admin to see completed rental, got %s", one.Status)
	}

	w := ts.POST("/api/user/rentals/"+started.ID.String()+"/end", map[string]any{"endLocation": end}, rider)
	expectError(t, w, http.StatusBadRequest, "RENTAL_NOT_ACTIVE")
}

func TestStartRental_Rejections(t *testing.T) {
	ts := NewTestServer(t)
	admin := ts.AdminToken(t)
	b := ts.CreateBike(t, admin, "Bike-A", 100)
	other := ts.CreateBike(t, admin, "Bike-B", 100)
	rider, _ := ts.RegisterUser(t, "ana")

	body := startBody(b.ID)
	body["qrCode"] = other.ID.String()
	expectError(t, ts.POST("/api/user/rentals/start", body, rider), http.StatusBadRequest, "INVALID_QR_CODE")

	body = startBody(b.ID)
	delete(body, "startLocation")
	expectError(t, ts.POST("/api/user/rentals/start", body, rider), http.StatusBadRequest, "MISSING_FIELDS")

	decode(t, ts.POST("/api/user/rentals/start", startBody(b.ID), rider), http.StatusCreated, nil)
	expectError(t, ts.POST("/api/user/rentals/start", startBody(other.ID), rider), http.StatusBadRequest, "ACTIVE_RENTAL_EXISTS")

	second, _ := ts.RegisterUser(t, "boris")
	expectError(t, ts.POST("/api/user/rentals/start", startBody(b.ID), second), http.StatusBadRequest, "BIKE_NOT_AVAILABLE")
}

func TestEndRental_OutsideParkingZone(t *testing.T) {
	ts := NewTestServer(t)
	admin := ts.AdminToken(t)
	ts.CreateSpot(t, admin, "Trg Republike", spotLocation)
	b := ts.CreateBike(t, admin, "Bike-A", 100)
	rider, _ := ts.RegisterUser(t, "ana")

	var started rentalResponse
	decode(t, ts.POST("/api/user/rentals/start", startBody(b.ID), rider), http.StatusCreated, &started)

	far := geofence.Point{Lat: spotLocation.Lat + 0.01, Lng: spotLocation.Lng}
	w := ts.POST("/api/user/rentals/"+started.ID.String()+"/end", map[string]any{"endLocation": far}, rider)
	expectError(t, w, http.StatusBadRequest, "NOT_IN_PARKING_ZONE")

	var active *rentalResponse
	decode(t, ts.GET("/api/user/rentals/active", rider), http.StatusOK, &active)
	if active == nil {
		t.Error("expected the rental to stay active")
	}
}

func TestStartRental_ConcurrentRidersOneBike(t *testing.T) {
	ts := NewTestServer(t)
	admin := ts.AdminToken(t)
	b := ts.CreateBike(t, admin, "Bike-A", 100)

	const riders = 6
	tokens := make([]string, riders)
	for i := range tokens {
		tokens[i], _ = ts.RegisterUser(t, fmt.Sprintf("rider%d", i))
	}

	codes := make([]int, riders)
	var wg sync.WaitGroup
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = ts.POST("/api/user/rentals/start", startBody(b.ID), tokens[i]).Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
		default:
			t.Errorf("unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one rental, got %d: %v", created, codes)
	}

	var n int
	if err := ts.DB.Get(&n, `SELECT count(*) FROM rentals WHERE bike_id = $1 AND status = 'active'`, b.ID); err != nil {
		t.Fatalf("failed to count rentals: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one active rental in the database, got %d", n)
	}
}

func TestAdminStatusChange_RentedBike(t *testing.T) {
	ts := NewTestServer(t)
	admin := ts.AdminToken(t)
	ts.CreateSpot(t, admin, "Trg Republike", spotLocation)
	b := ts.CreateBike(t, admin, "Bike-A", 100)
	rider, _ := ts.RegisterUser(t, "ana")

	var started rentalResponse
	decode(t, ts.POST("/api/user/rentals/start", startBody(b.ID), rider), http.StatusCreated, &started)

	expectError(t, ts.DELETE("/api/admin/bikes/"+b.ID.String(), admin), http.StatusBadRequest, "BIKE_IN_USE")
	expectError(t, ts.PUT("/api/admin/bikes/"+b.ID.String(), map[string]any{"status": "maintenance"}, admin),
		http.StatusBadRequest, "BIKE_IN_USE")

	var renamed bikeResponse
	decode(t, ts.PUT("/api/admin/bikes/"+b.ID.String(), map[string]any{"name": "Bike-A2"}, admin),
		http.StatusOK, &renamed)
	if renamed.Name != "Bike-A2" || renamed.Status != "in_use" {
		t.Errorf("unexpected bike after rename: %s", spew.Sdump(renamed))
	}

	decode(t, ts.POST("/api/user/rentals/"+started.ID.String()+"/end", map[string]any{"endLocation": spotLocation}, rider),
		http.StatusOK, nil)

	decode(t, ts.DELETE("/api/admin/bikes/"+b.ID.String(), admin), http.StatusOK, nil)

	var got bikeResponse
	decode(t, ts.GET("/api/user/bikes/"+b.ID.String(), rider), http.StatusOK, &got)
	if got.Status != "inactive" {
		t.Errorf("expected bike inactive after the rental ended, got %s", got.Status)
	}
}
