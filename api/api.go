package api

import (
	"net/http"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/semanticallynull/bikely-backend/admin"
	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/internal/auth"
	"github.com/semanticallynull/bikely-backend/internal/middleware"
	"github.com/semanticallynull/bikely-backend/internal/o11y"
	"github.com/semanticallynull/bikely-backend/notification"
	"github.com/semanticallynull/bikely-backend/parking"
	"github.com/semanticallynull/bikely-backend/problem"
	"github.com/semanticallynull/bikely-backend/rental"
	"github.com/semanticallynull/bikely-backend/stats"
	"github.com/semanticallynull/bikely-backend/user"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Users         *user.Repository
	Admins        *admin.Repository
	Bikes         *bike.Repository
	Spots         *parking.Repository
	Rentals       *rental.Repository
	Problems      *problem.Repository
	Notifications *notification.Repository

	RentalService *rental.Service
	Reporter      *problem.Reporter
	Stats         *stats.Service

	Issuer        *auth.Issuer
	Validator     *validator.Validator
	UserTokenTTL  time.Duration
	AdminTokenTTL time.Duration

	// PhotoDir is served under /static.
	PhotoDir        string
	MetricsUsername string
	MetricsPassword string
}

type API struct {
	r *gin.Engine
	Deps
}

func New(d Deps, obs *o11y.Observability) *API {
	a := &API{
		r:    gin.New(),
		Deps: d,
	}
	// Handlers pass the gin context on; it must carry the request's trace
	// and cancellation.
	a.r.ContextWithFallback = true

	a.r.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.Logging(obs.Logger),
		middleware.Metrics(obs.Registry),
	)

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	a.metricsRoute(obs.Registry)
	if d.PhotoDir != "" {
		a.r.Static("/static", d.PhotoDir)
	}

	jwt := middleware.JWT(d.Validator)

	u := a.r.Group("/api/user")
	u.POST("/auth/register", a.registerHandler)
	u.POST("/auth/login", a.loginHandler)

	u = u.Group("", jwt, middleware.RequireRole(auth.RoleUser))
	u.GET("/bikes", a.availableBikesHandler)
	u.GET("/bikes/nearby", a.nearbyBikesHandler)
	u.GET("/bikes/:id", a.bikeHandler)
	u.GET("/parking", a.spotsHandler)
	u.POST("/rentals/start", a.startRentalHandler)
	u.POST("/rentals/:id/end", a.endRentalHandler)
	u.GET("/rentals", a.userRentalsHandler)
	u.GET("/rentals/active", a.activeRentalHandler)
	u.POST("/issues", a.reportProblemHandler)
	u.GET("/issues", a.userProblemsHandler)
	u.GET("/notifications", a.notificationsHandler)
	u.GET("/notifications/unread-count", a.unreadCountHandler)
	u.PUT("/notifications/read-all", a.readAllHandler)
	u.PUT("/notifications/:id/read", a.readNotificationHandler)
	u.GET("/profile", a.profileHandler)
	u.PUT("/profile", a.updateProfileHandler)

	ad := a.r.Group("/api/admin")
	ad.POST("/auth/login", a.adminLoginHandler)

	ad = ad.Group("", jwt, middleware.RequireRole(auth.RoleAdmin))
	ad.GET("/bikes", a.bikesHandler)
	ad.POST("/bikes", a.createBikeHandler)
	ad.PUT("/bikes/:id", a.updateBikeHandler)
	ad.DELETE("/bikes/:id", a.deleteBikeHandler)
	ad.GET("/bikes/:id/qr", a.bikeQRHandler)
	ad.GET("/parking", a.recentSpotsHandler)
	ad.POST("/parking", a.createSpotHandler)
	ad.DELETE("/parking/:id", a.deleteSpotHandler)
	ad.GET("/rentals", a.rentalsHandler)
	ad.GET("/rentals/:id", a.rentalHandler)
	ad.GET("/issues", a.problemsHandler)
	ad.GET("/issues/unresolved-count", a.unresolvedCountHandler)
	ad.PUT("/issues/:id/status", a.resolveProblemHandler)
	ad.GET("/stats", a.statsHandler)

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}

func (a *API) metricsRoute(reg *prometheus.Registry) {
	h := gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	if a.MetricsUsername == "" {
		a.r.GET("/metrics", h)
		return
	}
	a.r.GET("/metrics", gin.BasicAuth(gin.Accounts{a.MetricsUsername: a.MetricsPassword}), h)
}
