package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/semanticallynull/bikely-backend/admin"
	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/geofence"
	"github.com/semanticallynull/bikely-backend/parking"
	"github.com/semanticallynull/bikely-backend/problem"
	"github.com/semanticallynull/bikely-backend/rental"
	"github.com/semanticallynull/bikely-backend/user"
)

func location(p pgtype.Point) *geofence.Point {
	if !p.Valid {
		return nil
	}
	pt := geofence.FromPG(p)
	return &pt
}

type bikeResponse struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Type       bike.Type      `json:"type"`
	HourlyRate float64        `json:"hourlyRate"`
	Status     bike.Status    `json:"status"`
	Location   geofence.Point `json:"location"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	// Distance is set on nearby listings, in metres.
	Distance *float64 `json:"distance,omitempty"`
}

func toBikeResponse(b bike.Bike) bikeResponse {
	return bikeResponse{
		ID:         b.ID,
		Name:       b.Name,
		Type:       b.Type,
		HourlyRate: b.HourlyRate,
		Status:     b.Status,
		Location:   b.Position(),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func toBikeResponses(bikes []bike.Bike) []bikeResponse {
	res := make([]bikeResponse, len(bikes))
	for i, b := range bikes {
		res[i] = toBikeResponse(b)
	}
	return res
}

type spotResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Location  geofence.Point `json:"location"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toSpotResponses(spots []parking.Spot) []spotResponse {
	res := make([]spotResponse, len(spots))
	for i, s := range spots {
		res[i] = spotResponse{ID: s.ID, Name: s.Name, Location: s.Position(), CreatedAt: s.CreatedAt}
	}
	return res
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      "user",
		CreatedAt: u.CreatedAt,
	}
}

type adminResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

func toAdminResponse(a *admin.Admin) adminResponse {
	return adminResponse{ID: a.ID, Email: a.Email, Name: a.Name, Role: "admin"}
}

type bikeSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	HourlyRate float64   `json:"hourlyRate,omitempty"`
}

type userSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
}

type rentalResponse struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	BikeID        uuid.UUID       `json:"bikeId"`
	StartTime     time.Time       `json:"startTime"`
	StartLocation *geofence.Point `json:"startLocation"`
	EndTime       *time.Time      `json:"endTime"`
	EndLocation   *geofence.Point `json:"endLocation"`
	EndPhoto      *string         `json:"endPhoto"`
	TotalCost     *float64        `json:"totalCost"`
	Status        rental.Status   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Bike *bikeSummary `json:"bike,omitempty"`
	User *userSummary `json:"user,omitempty"`
}

func toRentalResponse(r rental.Rental) rentalResponse {
	res := rentalResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		BikeID:        r.BikeID,
		StartTime:     r.StartTime,
		StartLocation: location(r.StartLocation),
		EndLocation:   location(r.EndLocation),
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.EndTime.Valid {
		res.EndTime = &r.EndTime.Time
	}
	if r.EndPhoto.Valid {
		res.EndPhoto = &r.EndPhoto.String
	}
	if r.TotalCost.Valid {
		res.TotalCost = &r.TotalCost.Float64
	}
	return res
}

// toRentalDetailResponse includes the rider only when withUser is set, so
// riders never see other riders' contact details.
func toRentalDetailResponse(d rental.Detail, withUser bool) rentalResponse {
	res := toRentalResponse(d.Rental)
	res.Bike = &bikeSummary{ID: d.BikeID, Name: d.BikeName, Type: string(d.BikeType), HourlyRate: d.BikeHourlyRate}
	if withUser {
		res.User = &userSummary{
			ID:        d.UserID,
			Email:     d.UserEmail,
			FirstName: d.UserFirstName,
			LastName:  d.UserLastName,
			Phone:     d.UserPhone,
		}
	}
	return res
}

func toRentalDetailResponses(rentals []rental.Detail, withUser bool) []rentalResponse {
	res := make([]rentalResponse, len(rentals))
	for i, r := range rentals {
		res[i] = toRentalDetailResponse(r, withUser)
	}
	return res
}

type problemResponse struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	BikeID         *uuid.UUID      `json:"bikeId"`
	RentalID       *uuid.UUID      `json:"rentalId"`
	Title          string          `json:"title"`
	Type           problem.Type    `json:"type"`
	Address        *string         `json:"address"`
	Location       *geofence.Point `json:"location"`
	Description    string          `json:"description"`
	Photos         []string        `json:"photos"`
	Status         problem.Status  `json:"status"`
	ResolutionNote *string         `json:"resolutionNote"`
	ResolvedAt     *time.Time      `json:"resolvedAt"`
	ResolvedBy     *uuid.UUID      `json:"resolvedBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	Bike *bikeSummary `json:"bike,omitempty"`
	User *userSummary `json:"user,omitempty"`
}

func toProblemResponse(p problem.Problem) problemResponse {
	res := problemResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Type:        p.Type,
		Location:    location(p.Location),
		Description: p.Description,
		Photos:      p.Photos,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if res.Photos == nil {
		res.Photos = []string{}
	}
	if p.BikeID.Valid {
		res.BikeID = &p.BikeID.UUID
	}
	if p.RentalID.Valid {
		res.RentalID = &p.RentalID.UUID
	}
	if p.Address.Valid {
		res.Address = &p.Address.String
	}
	if p.ResolutionNote.Valid {
		res.ResolutionNote = &p.ResolutionNote.String
	}
	if p.ResolvedAt.Valid {
		res.ResolvedAt = &p.ResolvedAt.Time
	}
	if p.ResolvedBy.Valid {
		res.ResolvedBy = &p.ResolvedBy.UUID
	}
	return res
}

func toProblemDetailResponses(problems []problem.Detail, withUser bool) []problemResponse {
	res := make([]problemResponse, len(problems))
	for i, d := range problems {
		r := toProblemResponse(d.Problem)
		if d.BikeID.Valid {
			r.Bike = &bikeSummary{ID: d.BikeID.UUID, Name: d.BikeName.String, Type: d.BikeType.String}
		}
		if withUser {
			r.User = &userSummary{
				ID:        d.UserID,
				Email:     d.UserEmail,
				FirstName: d.UserFirstName,
				LastName:  d.UserLastName,
				Phone:     d.UserPhone,
			}
		}
		res[i] = r
	}
	return res
}
