package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/geofence"
	"github.com/semanticallynull/bikely-backend/internal/apperr"
)

// defaultNearbyRadius is used when the caller gives none, in metres.
const defaultNearbyRadius = 1000

var (
	errBikeNotFound    = apperr.NewNotFound("BIKE_NOT_FOUND", "Bike not found")
	errInvalidLocation = apperr.NewValidation("INVALID_LOCATION", "lat and lng must be valid coordinates")
	errInvalidRadius   = apperr.NewValidation("INVALID_RADIUS", "radius must be a positive number of metres")
	errInvalidRate     = apperr.NewValidation("INVALID_HOURLY_RATE", "hourlyRate must be positive")
	errInvalidStatus   = apperr.NewValidation("INVALID_STATUS", "Bikes are put in use by rentals only")
	errBikeInUse       = apperr.NewConflict("BIKE_IN_USE", "Bike is rented, its status changes when the rental ends")
)

func bikeErr(err error) error {
	switch {
	case errors.Is(err, bike.ErrNotFound):
		return errBikeNotFound
	case errors.Is(err, bike.ErrInUse):
		return errBikeInUse
	}
	return err
}

func (a *API) availableBikesHandler(c *gin.Context) {
	bikes, err := a.Bikes.GetAvailableBikes(c)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toBikeResponses(bikes))
}

// nearbyBikesHandler lists available bikes within radius of lat/lng,
// nearest first.
func (a *API) nearbyBikesHandler(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	at := geofence.Point{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !at.Valid() {
		fail(c, errInvalidLocation)
		return
	}

	radius := float64(defaultNearbyRadius)
	if r := c.Query("radius"); r != "" {
		var err error
		radius, err = strconv.ParseFloat(r, 64)
		if err != nil || !(radius > 0) {
			fail(c, errInvalidRadius)
			return
		}
	}

	bikes, err := a.Bikes.GetAvailableBikes(c)
	if err != nil {
		fail(c, err)
		return
	}

	res := []bikeResponse{}
	for _, b := range bikes {
		d := geofence.Distance(at, b.Position())
		if d > radius {
			continue
		}
		br := toBikeResponse(b)
		br.Distance = &d
		res = append(res, br)
	}
	sort.Slice(res, func(i, j int) bool { return *res[i].Distance < *res[j].Distance })

	c.JSON(http.StatusOK, res)
}

func (a *API) bikeHandler(c *gin.Context) {
	id, ok := paramID(c, errBikeNotFound)
	if !ok {
		return
	}

	b, err := a.Bikes.GetBike(c, id)
	if err != nil {
		fail(c, bikeErr(err))
		return
	}

	c.JSON(http.StatusOK, toBikeResponse(b))
}

func (a *API) bikesHandler(c *gin.Context) {
	bikes, err := a.Bikes.GetBikes(c)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toBikeResponses(bikes))
}

type createBikeRequest struct {
	Name       string          `json:"name"`
	Type       bike.Type       `json:"type"`
	HourlyRate float64         `json:"hourlyRate"`
	Status     bike.Status     `json:"status"`
	Location   *geofence.Point `json:"location"`
}

func (a *API) createBikeHandler(c *gin.Context) {
	var req createBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}
	if req.Name == "" || req.Type == "" || req.Location == nil {
		fail(c, errMissingFields)
		return
	}
	if !req.Location.Valid() {
		fail(c, errInvalidLocation)
		return
	}
	if !(req.HourlyRate > 0) {
		fail(c, errInvalidRate)
		return
	}
	if req.Status == bike.InUse {
		fail(c, errInvalidStatus)
		return
	}

	b := bike.Bike{
		Name:       req.Name,
		Type:       req.Type,
		HourlyRate: req.HourlyRate,
		Status:     req.Status,
		Location:   req.Location.PG(),
	}
	if err := a.Bikes.CreateBike(c, &b); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBikeResponse(b))
}

type updateBikeRequest struct {
	Name       *string         `json:"name"`
	Type       *bike.Type      `json:"type"`
	HourlyRate *float64        `json:"hourlyRate"`
	Status     *bike.Status    `json:"status"`
	Location   *geofence.Point `json:"location"`
}

func (a *API) updateBikeHandler(c *gin.Context) {
	id, ok := paramID(c, errBikeNotFound)
	if !ok {
		return
	}

	var req updateBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}
	if req.HourlyRate != nil && !(*req.HourlyRate > 0) {
		fail(c, errInvalidRate)
		return
	}
	if req.Location != nil && !req.Location.Valid() {
		fail(c, errInvalidLocation)
		return
	}
	if req.Status != nil && *req.Status == bike.InUse {
		fail(c, errInvalidStatus)
		return
	}

	b, err := a.Bikes.UpdateBike(c, id, bike.Patch{
		Name:       req.Name,
		Type:       req.Type,
		HourlyRate: req.HourlyRate,
		Status:     req.Status,
		Location:   req.Location,
	})
	if err != nil {
		fail(c, bikeErr(err))
		return
	}

	c.JSON(http.StatusOK, toBikeResponse(b))
}

// deleteBikeHandler deactivates the bike. Bikes are referenced by rentals
// and are never removed.
func (a *API) deleteBikeHandler(c *gin.Context) {
	id, ok := paramID(c, errBikeNotFound)
	if !ok {
		return
	}

	if err := a.Bikes.Deactivate(c, id); err != nil {
		fail(c, bikeErr(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) bikeQRHandler(c *gin.Context) {
	id, ok := paramID(c, errBikeNotFound)
	if !ok {
		return
	}

	b, err := a.Bikes.GetBike(c, id)
	if err != nil {
		fail(c, bikeErr(err))
		return
	}

	png, err := bike.QRCode(b)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="bike-`+b.ID.String()+`.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
