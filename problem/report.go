package problem

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/semanticallynull/bikely-backend/bike"
)

type Store interface {
	Create(ctx context.Context, p *Problem) error
	SetPhotos(ctx context.Context, id uuid.UUID, photos []string) error
}

type Bikes interface {
	GetBike(ctx context.Context, id uuid.UUID) (bike.Bike, error)
}

type PhotoStore interface {
	Save(kind, name, data string) (string, error)
}

// Report is a problem as submitted by a rider. Photos are data URLs.
type Report struct {
	UserID      uuid.UUID
	BikeID      *uuid.UUID
	RentalID    *uuid.UUID
	Title       string
	Type        Type
	Address     string
	Description string
	Photos      []string
}

type Reporter struct {
	store  Store
	bikes  Bikes
	photos PhotoStore
	logger *slog.Logger
}

func NewReporter(store Store, bikes Bikes, photos PhotoStore, logger *slog.Logger) *Reporter {
	return &Reporter{store: store, bikes: bikes, photos: photos, logger: logger}
}

// File stores a report. When a bike is named, the problem is located where
// the bike was last seen.
func (r *Reporter) File(ctx context.Context, rep Report) (Problem, error) {
	if strings.TrimSpace(rep.Title) == "" || strings.TrimSpace(rep.Description) == "" {
		return Problem{}, ErrMissingFields
	}

	p := Problem{
		UserID:      rep.UserID,
		Title:       rep.Title,
		Type:        rep.Type,
		Address:     sql.NullString{String: rep.Address, Valid: rep.Address != ""},
		Description: rep.Description,
		Photos:      Photos{},
		Status:      Open,
	}
	if p.Type == "" {
		p.Type = BikeIssue
	}
	if rep.RentalID != nil {
		p.RentalID = uuid.NullUUID{UUID: *rep.RentalID, Valid: true}
	}

	if rep.BikeID != nil {
		b, err := r.bikes.GetBike(ctx, *rep.BikeID)
		if errors.Is(err, bike.ErrNotFound) {
			return Problem{}, ErrBikeNotFound
		}
		if err != nil {
			return Problem{}, err
		}
		p.BikeID = uuid.NullUUID{UUID: b.ID, Valid: true}
		p.Location = b.Location
	}

	if err := r.store.Create(ctx, &p); err != nil {
		return Problem{}, err
	}

	var stored []string
	for i, data := range rep.Photos {
		path, err := r.photos.Save("problem-photos", fmt.Sprintf("problem-%s-%d", p.ID, i), data)
		if err != nil {
			r.logger.WarnContext(ctx, "failed to store problem photo",
				slog.String("problem_id", p.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if path != "" {
			stored = append(stored, path)
		}
	}
	if len(stored) == 0 {
		return p, nil
	}

	if err := r.store.SetPhotos(ctx, p.ID, stored); err != nil {
		return Problem{}, err
	}
	p.Photos = stored
	return p, nil
}
