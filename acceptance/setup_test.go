package acceptance

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/semanticallynull/bikely-backend/admin"
	"github.com/semanticallynull/bikely-backend/api"
	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/billing"
	"github.com/semanticallynull/bikely-backend/geofence"
	"github.com/semanticallynull/bikely-backend/internal/auth"
	"github.com/semanticallynull/bikely-backend/internal/o11y"
	"github.com/semanticallynull/bikely-backend/internal/photo"
	"github.com/semanticallynull/bikely-backend/internal/schema"
	"github.com/semanticallynull/bikely-backend/notification"
	"github.com/semanticallynull/bikely-backend/parking"
	"github.com/semanticallynull/bikely-backend/pricing"
	"github.com/semanticallynull/bikely-backend/problem"
	"github.com/semanticallynull/bikely-backend/rental"
	"github.com/semanticallynull/bikely-backend/stats"
	"github.com/semanticallynull/bikely-backend/user"
)

const (
	adminEmail    = "admin@bikely.rs"
	adminPassword = "admin-password"
)

// Riders end their rentals next to the test spot.
var spotLocation = geofence.Point{Lat: 44.8125, Lng: 20.4612}

type TestServer struct {
	DB       *sqlx.DB
	Router   *gin.Engine
	Rentals  *rental.Service
	BikeRepo *bike.Repository
}

// NewTestServer wires the production router against the database named by
// DATABASE_URL. Tests are skipped when it is unset.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	gin.SetMode(gin.TestMode)

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := schema.Apply(context.Background(), db); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	cleanupTestData(t, db)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authCfg := auth.Config{Secret: "acceptance-secret-acceptance-secret", Issuer: "bikely", Audience: "bikely-api"}
	issuer, err := auth.NewIssuer(authCfg)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}
	v, err := auth.NewValidator(authCfg)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	ur := user.NewRepository(db)
	ar := admin.NewRepository(db)
	br := bike.NewRepository(db)
	sr := parking.NewRepository(db)
	rr := rental.NewRepository(db)
	pr := problem.NewRepository(db)
	nr := notification.NewRepository(db)
	photos := photo.NewStore(t.TempDir())

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if _, err := ar.Upsert(context.Background(), adminEmail, "Admin", hash); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	// Every started hour is billed, so costs do not depend on test speed.
	rs := rental.NewService(rr, br, sr, nr, photos, logger,
		rental.WithPolicy(pricing.Policy{Increment: time.Hour}),
		rental.WithInvoicer(billing.Nop{}),
	)

	a := api.New(api.Deps{
		Users:         ur,
		Admins:        ar,
		Bikes:         br,
		Spots:         sr,
		Rentals:       rr,
		Problems:      pr,
		Notifications: nr,
		RentalService: rs,
		Reporter:      problem.NewReporter(pr, br, photos, logger),
		Stats:         stats.NewService(br, pr, ur, rr),
		Issuer:        issuer,
		Validator:     v,
		UserTokenTTL:  time.Hour,
		AdminTokenTTL: time.Hour,
	}, &o11y.Observability{Logger: logger, Registry: prometheus.NewRegistry()})

	ts := &TestServer{DB: db, Router: a.Router(), Rentals: rs, BikeRepo: br}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *TestServer) Close() {
	ts.Rentals.Wait()
	ts.DB.Close()
}

func cleanupTestData(t *testing.T, db *sqlx.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE notifications, problems, rentals, parking_spots, bikes, admins, users")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

func (ts *TestServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) GET(path, token string) *httptest.ResponseRecorder {
	return ts.do(http.MethodGet, path, nil, token)
}

func (ts *TestServer) POST(path string, body any, token string) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, path, body, token)
}

func (ts *TestServer) DELETE(path, token string) *httptest.ResponseRecorder {
	return ts.do(http.MethodDelete, path, nil, token)
}

func (ts *TestServer) PUT(path string, body any, token string) *httptest.ResponseRecorder {
	return ts.do(http.MethodPut, path, body, token)
}

// decode fails the test unless w has the wanted status, then unmarshals
// the body into v.
func decode(t *testing.T, w *httptest.ResponseRecorder, want int, v any) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
	if v == nil {
		return
	}
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to unmarshal response: %v\n%s", err, w.Body.String())
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	var e apiError
	decode(t, w, status, &e)
	if e.Code != code {
		t.Errorf("expected error code %s, got %s", code, spew.Sdump(e))
	}
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// RegisterUser signs up a rider and returns the token and user ID.
func (ts *TestServer) RegisterUser(t *testing.T, username string) (string, uuid.UUID) {
	t.Helper()
	w := ts.POST("/api/user/auth/register", map[string]string{
		"username":  username,
		"password":  "secret-password",
		"email":     username + "@example.com",
		"firstName": "Test",
		"lastName":  "Rider",
		"phone":     "+381601234567",
	}, "")

	var resp tokenResponse
	decode(t, w, http.StatusCreated, &resp)
	return resp.Token, resp.User.ID
}

// AdminToken logs in as the seeded admin.
func (ts *TestServer) AdminToken(t *testing.T) string {
	t.Helper()
	w := ts.POST("/api/admin/auth/login", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	}, "")

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, http.StatusOK, &resp)
	return resp.Token
}

type bikeResponse struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	HourlyRate float64        `json:"hourlyRate"`
	Location   geofence.Point `json:"location"`
}

func (ts *TestServer) CreateBike(t *testing.T, admin, name string, rate float64) bikeResponse {
	t.Helper()
	w := ts.POST("/api/admin/bikes", map[string]any{
		"name":       name,
		"type":       "gradski",
		"hourlyRate": rate,
		"status":     "available",
		"location":   spotLocation,
	}, admin)

	var b bikeResponse
	decode(t, w, http.StatusCreated, &b)
	return b
}

func (ts *TestServer) CreateSpot(t *testing.T, admin, name string, at geofence.Point) {
	t.Helper()
	w := ts.POST("/api/admin/parking", map[string]any{"name": name, "location": at}, admin)
	decode(t, w, http.StatusCreated, nil)
}

type rentalResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	BikeID    uuid.UUID `json:"bikeId"`
	Status    string    `json:"status"`
	TotalCost *float64  `json:"totalCost"`
	EndPhoto  *string   `json:"endPhoto"`
	Bike      *struct {
		Name string `json:"name"`
	} `json:"bike"`
}

func startBody(bikeID uuid.UUID) map[string]any {
	return map[string]any{
		"bikeId":        bikeID.String(),
		"qrCode":        bikeID.String(),
		"startLocation": spotLocation,
	}
}
