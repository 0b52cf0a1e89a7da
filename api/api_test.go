package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/internal/auth"
	"github.com/semanticallynull/bikely-backend/internal/o11y"
)

var authConfig = auth.Config{Secret: "api-test-secret-api-test-secret", Issuer: "bikely", Audience: "bikely-api"}

type harness struct {
	api    *API
	issuer *auth.Issuer
}

// newHarness builds the router without repositories. Only requests that are
// rejected before reaching storage can be served.
func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := auth.NewIssuer(authConfig)
	require.NoError(t, err)
	v, err := auth.NewValidator(authConfig)
	require.NoError(t, err)

	obs := &o11y.Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: prometheus.NewRegistry(),
	}
	a := New(Deps{
		Issuer:          issuer,
		Validator:       v,
		UserTokenTTL:    time.Hour,
		AdminTokenTTL:   time.Hour,
		MetricsUsername: "prom",
		MetricsPassword: "secret",
	}, obs)

	return &harness{api: a, issuer: issuer}
}

func (h *harness) token(t *testing.T, role auth.Role) string {
	t.Helper()
	tok, err := h.issuer.Issue(uuid.NewString(), auth.Claims{Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.api.Router().ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	assert.NotEmpty(t, body.Message)
	return body.Code
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t)
	userToken := h.token(t, auth.RoleUser)
	adminToken := h.token(t, auth.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"user route without token", http.MethodGet, "/api/user/rentals/active", "", http.StatusUnauthorized},
		{"user route with garbage token", http.MethodGet, "/api/user/bikes", "not-a-jwt", http.StatusUnauthorized},
		{"user route with admin token", http.MethodGet, "/api/user/bikes", adminToken, http.StatusForbidden},
		{"admin route without token", http.MethodGet, "/api/admin/stats", "", http.StatusUnauthorized},
		{"admin route with user token", http.MethodGet, "/api/admin/bikes", userToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestExpiredToken(t *testing.T) {
	h := newHarness(t)
	tok, err := h.issuer.Issue(uuid.NewString(), auth.Claims{Role: auth.RoleUser}, -time.Hour)
	require.NoError(t, err)

	w := h.do(http.MethodGet, "/api/user/bikes", tok, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}

func TestRejectedBeforeStorage(t *testing.T) {
	h := newHarness(t)
	userToken := h.token(t, auth.RoleUser)
	adminToken := h.token(t, auth.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
		code   string
	}{
		{"start without body", http.MethodPost, "/api/user/rentals/start", userToken, "", 400, "MISSING_FIELDS"},
		{"end malformed rental id", http.MethodPost, "/api/user/rentals/42/end", userToken, `{}`, 404, "RENTAL_NOT_FOUND"},
		{"nearby without coordinates", http.MethodGet, "/api/user/bikes/nearby", userToken, "", 400, "INVALID_LOCATION"},
		{"nearby with bad radius", http.MethodGet, "/api/user/bikes/nearby?lat=44.8&lng=20.4&radius=-5", userToken, "", 400, "INVALID_RADIUS"},
		{"bike malformed id", http.MethodGet, "/api/user/bikes/abc", userToken, "", 404, "BIKE_NOT_FOUND"},
		{"register missing fields", http.MethodPost, "/api/user/auth/register", "", `{"username":"ana"}`, 400, "MISSING_FIELDS"},
		{"register short password", http.MethodPost, "/api/user/auth/register", "",
			`{"username":"ana","password":"123","email":"a@b.rs","firstName":"A","lastName":"B","phone":"1"}`, 400, "PASSWORD_TOO_SHORT"},
		{"login missing password", http.MethodPost, "/api/user/auth/login", "", `{"username":"ana"}`, 400, "MISSING_FIELDS"},
		{"admin login missing email", http.MethodPost, "/api/admin/auth/login", "", `{"password":"x"}`, 400, "MISSING_FIELDS"},
		{"resolve with unknown action", http.MethodPut, "/api/admin/issues/" + uuid.NewString() + "/status", adminToken,
			`{"action":"explode"}`, 400, "INVALID_ACTION"},
		{"stats with bad offset", http.MethodGet, "/api/admin/stats?monthOffset=abc", adminToken, "", 400, "INVALID_MONTH_OFFSET"},
		{"create bike in use", http.MethodPost, "/api/admin/bikes", adminToken,
			`{"name":"B1","type":"bmx","hourlyRate":100,"status":"in_use","location":{"lat":44.8,"lng":20.4}}`, 400, "INVALID_STATUS"},
		{"create bike without rate", http.MethodPost, "/api/admin/bikes", adminToken,
			`{"name":"B1","type":"bmx","location":{"lat":44.8,"lng":20.4}}`, 400, "INVALID_HOURLY_RATE"},
		{"create bike of unknown type", http.MethodPost, "/api/admin/bikes", adminToken,
			`{"name":"B1","type":"tandem","hourlyRate":100,"location":{"lat":44.8,"lng":20.4}}`, 400, "INVALID_BODY"},
		{"create spot outside the globe", http.MethodPost, "/api/admin/parking", adminToken,
			`{"name":"P1","location":{"lat":144.8,"lng":20.4}}`, 400, "INVALID_LOCATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestMetricsRequiresBasicAuth(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	w = httptest.NewRecorder()
	h.api.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.NewValidation("V", "v"), http.StatusBadRequest, "V"},
		{apperr.NewConflict("C", "c"), http.StatusBadRequest, "C"},
		{apperr.NewNotFound("N", "n"), http.StatusNotFound, "N"},
		{apperr.NewUnauthorized("U", "u"), http.StatusUnauthorized, "U"},
		{apperr.NewForbidden("F", "f"), http.StatusForbidden, "F"},
		{apperr.NewInternal("I", "i"), http.StatusInternalServerError, "I"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			fail(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestBikeErr(t *testing.T) {
	assert.Equal(t, errBikeNotFound, bikeErr(bike.ErrNotFound))
	assert.Equal(t, errBikeInUse, bikeErr(fmt.Errorf("deactivate: %w", bike.ErrInUse)))
	assert.Equal(t, apperr.Conflict, apperr.KindOf(bikeErr(bike.ErrInUse)))

	other := errors.New("boom")
	assert.Equal(t, other, bikeErr(other))
}
