package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/bikely-backend/geofence"
	"github.com/semanticallynull/bikely-backend/rental"
)

type startRentalRequest struct {
	BikeID        string          `json:"bikeId"`
	QRCode        string          `json:"qrCode"`
	StartLocation *geofence.Point `json:"startLocation"`
}

func (a *API) startRentalHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var req startRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, rental.ErrMissingFields)
		return
	}

	r, err := a.RentalService.Start(c, rental.StartRequest{
		UserID:        userID,
		BikeID:        req.BikeID,
		QRCode:        req.QRCode,
		StartLocation: req.StartLocation,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRentalResponse(r))
}

type endRentalRequest struct {
	EndLocation *geofence.Point `json:"endLocation"`
	// EndPhoto is a data URL.
	EndPhoto string `json:"endPhoto"`
}

func (a *API) endRentalHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, rental.ErrRentalNotFound)
	if !ok {
		return
	}

	// An unreadable body counts as a missing end location, which is only
	// reported once the rental itself has been checked.
	var req endRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = endRentalRequest{}
	}

	r, err := a.RentalService.End(c, rental.EndRequest{
		UserID:      userID,
		RentalID:    id,
		EndLocation: req.EndLocation,
		EndPhoto:    req.EndPhoto,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toRentalResponse(r))
}

func (a *API) userRentalsHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	rentals, err := a.Rentals.ListByUser(c, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toRentalDetailResponses(rentals, false))
}

// activeRentalHandler answers with the caller's active rental or null.
func (a *API) activeRentalHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	r, err := a.RentalService.Active(c, userID)
	if err != nil {
		fail(c, err)
		return
	}
	if r == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, toRentalDetailResponse(*r, false))
}

func (a *API) rentalsHandler(c *gin.Context) {
	rentals, err := a.Rentals.List(c)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toRentalDetailResponses(rentals, true))
}

func (a *API) rentalHandler(c *gin.Context) {
	id, ok := paramID(c, rental.ErrRentalNotFound)
	if !ok {
		return
	}

	r, err := a.Rentals.Get(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toRentalDetailResponse(r, true))
}
