package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/bikely-backend/geofence"
	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/parking"
)

var errSpotNotFound = apperr.NewNotFound("PARKING_SPOT_NOT_FOUND", "Parking spot not found")

func (a *API) spotsHandler(c *gin.Context) {
	spots, err := a.Spots.GetSpots(c)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toSpotResponses(spots))
}

func (a *API) recentSpotsHandler(c *gin.Context) {
	spots, err := a.Spots.GetRecentSpots(c)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toSpotResponses(spots))
}

type createSpotRequest struct {
	Name     string          `json:"name"`
	Location *geofence.Point `json:"location"`
}

func (a *API) createSpotHandler(c *gin.Context) {
	var req createSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}
	if req.Name == "" || req.Location == nil {
		fail(c, errMissingFields)
		return
	}
	if !req.Location.Valid() {
		fail(c, errInvalidLocation)
		return
	}

	s := parking.Spot{Name: req.Name, Location: req.Location.PG()}
	if err := a.Spots.CreateSpot(c, &s); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSpotResponses([]parking.Spot{s})[0])
}

func (a *API) deleteSpotHandler(c *gin.Context) {
	id, ok := paramID(c, errSpotNotFound)
	if !ok {
		return
	}

	err := a.Spots.DeleteSpot(c, id)
	if errors.Is(err, parking.ErrNotFound) {
		fail(c, errSpotNotFound)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
