package rental

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/billing"
	"github.com/semanticallynull/bikely-backend/geofence"
	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/notification"
	"github.com/semanticallynull/bikely-backend/parking"
	"github.com/semanticallynull/bikely-backend/pricing"
)

// Store persists rentals. Start and Complete are atomic with the bike
// status change they imply.
type Store interface {
	Start(ctx context.Context, r *Rental) error
	Complete(ctx context.Context, c Completion) (Rental, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (Rental, error)
	Active(ctx context.Context, userID uuid.UUID) (*Detail, error)
}

type Bikes interface {
	GetBike(ctx context.Context, id uuid.UUID) (bike.Bike, error)
}

type Spots interface {
	GetSpots(ctx context.Context) ([]parking.Spot, error)
}

type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

type Photos interface {
	Save(kind, name, data string) (string, error)
	Remove(rel string) error
}

// Service drives the rental state machine.
type Service struct {
	store    Store
	bikes    Bikes
	spots    Spots
	notifier Notifier
	photos   Photos
	invoicer billing.Invoicer
	policy   pricing.Policy
	logger   *slog.Logger
	now      func() time.Time

	wg sync.WaitGroup
}

type Option func(*Service)

func WithPolicy(p pricing.Policy) Option {
	return func(s *Service) { s.policy = p }
}

func WithInvoicer(inv billing.Invoicer) Option {
	return func(s *Service) { s.invoicer = inv }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, bikes Bikes, spots Spots, notifier Notifier, photos Photos, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		bikes:    bikes,
		spots:    spots,
		notifier: notifier,
		photos:   photos,
		invoicer: billing.Nop{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type StartRequest struct {
	UserID        uuid.UUID
	BikeID        string
	QRCode        string
	StartLocation *geofence.Point
}

type EndRequest struct {
	UserID      uuid.UUID
	RentalID    uuid.UUID
	EndLocation *geofence.Point
	// EndPhoto is an optional data URL.
	EndPhoto string
}

var tracer = otel.Tracer("github.com/semanticallynull/bikely-backend/rental")

func (s *Service) Start(ctx context.Context, req StartRequest) (Rental, error) {
	ctx, span := tracer.Start(ctx, "rental.Start")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID.String()), attribute.String("bike.id", req.BikeID))

	r, b, err := s.start(ctx, req)
	if err != nil {
		s.reject(span, "start", err)
		return Rental{}, err
	}
	rentalsStarted.Inc()
	span.SetAttributes(attribute.String("rental.id", r.ID.String()))

	s.notify(ctx, notification.Notification{
		UserID:        r.UserID,
		Title:         "Rental started",
		Message:       fmt.Sprintf("You started renting bike %s.", b.Name),
		Type:          notification.Success,
		RelatedRental: uuid.NullUUID{UUID: r.ID, Valid: true},
	})
	s.logger.InfoContext(ctx, "rental started",
		slog.String("rental_id", r.ID.String()),
		slog.String("user_id", r.UserID.String()),
		slog.String("bike_id", r.BikeID.String()))

	return r, nil
}

func (s *Service) start(ctx context.Context, req StartRequest) (Rental, bike.Bike, error) {
	if req.BikeID == "" || req.QRCode == "" || req.StartLocation == nil {
		return Rental{}, bike.Bike{}, ErrMissingFields
	}
	if !req.StartLocation.Valid() {
		return Rental{}, bike.Bike{}, ErrMissingFields
	}

	bikeID, err := uuid.Parse(req.BikeID)
	if err != nil {
		return Rental{}, bike.Bike{}, ErrBikeNotFound
	}
	b, err := s.bikes.GetBike(ctx, bikeID)
	if errors.Is(err, bike.ErrNotFound) {
		return Rental{}, bike.Bike{}, ErrBikeNotFound
	}
	if err != nil {
		return Rental{}, bike.Bike{}, err
	}
	if b.Status != bike.Available {
		return Rental{}, bike.Bike{}, ErrBikeNotAvailable
	}

	if code, err := uuid.Parse(req.QRCode); err != nil || code != b.ID {
		return Rental{}, bike.Bike{}, ErrInvalidQRCode
	}

	active, err := s.store.Active(ctx, req.UserID)
	if err != nil {
		return Rental{}, bike.Bike{}, err
	}
	if active != nil {
		return Rental{}, bike.Bike{}, ErrActiveRentalExists
	}

	r := Rental{
		ID:            uuid.New(),
		UserID:        req.UserID,
		BikeID:        b.ID,
		StartTime:     s.now(),
		StartLocation: req.StartLocation.PG(),
		Status:        Active,
	}
	if err := s.store.Start(ctx, &r); err != nil {
		return Rental{}, bike.Bike{}, err
	}
	return r, b, nil
}

func (s *Service) End(ctx context.Context, req EndRequest) (Rental, error) {
	ctx, span := tracer.Start(ctx, "rental.End")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID.String()), attribute.String("rental.id", req.RentalID.String()))

	r, b, err := s.end(ctx, req)
	if err != nil {
		s.reject(span, "end", err)
		return Rental{}, err
	}
	rentalsCompleted.Inc()
	rentalRevenue.Add(r.TotalCost.Float64)

	s.notify(ctx, notification.Notification{
		UserID:        r.UserID,
		Title:         "Rental completed",
		Message:       fmt.Sprintf("Rental completed. Total cost: %.2f RSD.", r.TotalCost.Float64),
		Type:          notification.Success,
		RelatedRental: uuid.NullUUID{UUID: r.ID, Valid: true},
	})
	s.invoice(ctx, billing.Invoice{
		RentalID: r.ID,
		UserID:   r.UserID,
		BikeName: b.Name,
		Duration: r.EndTime.Time.Sub(r.StartTime),
		Amount:   r.TotalCost.Float64,
	})
	s.logger.InfoContext(ctx, "rental completed",
		slog.String("rental_id", r.ID.String()),
		slog.String("user_id", r.UserID.String()),
		slog.Float64("total_cost", r.TotalCost.Float64))

	return r, nil
}

func (s *Service) end(ctx context.Context, req EndRequest) (Rental, bike.Bike, error) {
	r, err := s.store.GetForUser(ctx, req.RentalID, req.UserID)
	if err != nil {
		return Rental{}, bike.Bike{}, err
	}
	if r.Status != Active {
		return Rental{}, bike.Bike{}, ErrRentalNotActive
	}
	if req.EndLocation == nil || !req.EndLocation.Valid() {
		return Rental{}, bike.Bike{}, ErrMissingEndLocation
	}

	spots, err := s.spots.GetSpots(ctx)
	if err != nil {
		return Rental{}, bike.Bike{}, err
	}
	if !geofence.Within(*req.EndLocation, parking.Zones(spots), geofence.Radius) {
		return Rental{}, bike.Bike{}, ErrNotInParkingZone
	}

	b, err := s.bikes.GetBike(ctx, r.BikeID)
	if errors.Is(err, bike.ErrNotFound) {
		return Rental{}, bike.Bike{}, ErrBikeNotFound
	}
	if err != nil {
		return Rental{}, bike.Bike{}, err
	}

	end := s.now()
	cost, err := s.policy.Cost(r.StartTime, end, b.HourlyRate)
	if err != nil {
		return Rental{}, bike.Bike{}, err
	}

	photo := s.savePhoto(ctx, r.ID, req.EndPhoto)

	done, err := s.store.Complete(ctx, Completion{
		RentalID:    r.ID,
		UserID:      r.UserID,
		BikeID:      r.BikeID,
		EndTime:     end,
		EndLocation: req.EndLocation.PG(),
		EndPhoto:    photo,
		TotalCost:   cost,
	})
	if err != nil {
		s.removePhoto(ctx, photo)
		return Rental{}, bike.Bike{}, err
	}
	return done, b, nil
}

// savePhoto stores the optional end photo. A photo that cannot be stored is
// dropped and the rental still ends.
func (s *Service) savePhoto(ctx context.Context, id uuid.UUID, data string) sql.NullString {
	if data == "" {
		return sql.NullString{}
	}
	path, err := s.photos.Save("rentals", id.String(), data)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to store end photo",
			slog.String("rental_id", id.String()),
			slog.String("error", err.Error()))
		return sql.NullString{}
	}
	return sql.NullString{String: path, Valid: path != ""}
}

func (s *Service) removePhoto(ctx context.Context, photo sql.NullString) {
	if !photo.Valid {
		return
	}
	if err := s.photos.Remove(photo.String); err != nil {
		s.logger.WarnContext(ctx, "failed to remove end photo",
			slog.String("path", photo.String),
			slog.String("error", err.Error()))
	}
}

// Active returns the user's active rental or nil.
func (s *Service) Active(ctx context.Context, userID uuid.UUID) (*Detail, error) {
	return s.store.Active(ctx, userID)
}

// Wait blocks until pending invoices have been submitted.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) reject(span trace.Span, transition string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if e, ok := apperr.As(err); ok && e.Code != "" {
		rentalsRejected.WithLabelValues(transition, e.Code).Inc()
		return
	}
	rentalsRejected.WithLabelValues(transition, "INTERNAL").Inc()
}

// notify records an inbox message. A failure never undoes the transition
// that triggered it.
func (s *Service) notify(ctx context.Context, n notification.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to create notification",
			slog.String("user_id", n.UserID.String()),
			slog.String("error", err.Error()))
	}
}

// invoice charges the rider in the background. Free rides are not invoiced.
func (s *Service) invoice(ctx context.Context, inv billing.Invoice) {
	if inv.Amount <= 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := s.invoicer.InvoiceRental(ctx, inv); err != nil {
			s.logger.ErrorContext(ctx, "failed to invoice rental",
				slog.String("rental_id", inv.RentalID.String()),
				slog.String("error", err.Error()))
		}
	}()
}
