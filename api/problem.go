package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/semanticallynull/bikely-backend/problem"
)

type reportProblemRequest struct {
	BikeID      *uuid.UUID   `json:"bikeId"`
	RentalID    *uuid.UUID   `json:"rentalId"`
	Title       string       `json:"title"`
	Type        problem.Type `json:"type"`
	Address     string       `json:"address"`
	Description string       `json:"description"`
	Photos      []string     `json:"photos"`
}

func (a *API) reportProblemHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var req reportProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}

	p, err := a.Reporter.File(c, problem.Report{
		UserID:      userID,
		BikeID:      req.BikeID,
		RentalID:    req.RentalID,
		Title:       req.Title,
		Type:        req.Type,
		Address:     req.Address,
		Description: req.Description,
		Photos:      req.Photos,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProblemResponse(p))
}

// statusFilter reads the optional ?status filter. Unknown values are
// ignored and list everything.
func statusFilter(c *gin.Context) *problem.Status {
	s, err := problem.ParseStatus(c.Query("status"))
	if err != nil {
		return nil
	}
	return &s
}

func (a *API) userProblemsHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	problems, err := a.Problems.ListByUser(c, userID, statusFilter(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toProblemDetailResponses(problems, false))
}

func (a *API) problemsHandler(c *gin.Context) {
	problems, err := a.Problems.List(c, statusFilter(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toProblemDetailResponses(problems, true))
}

func (a *API) unresolvedCountHandler(c *gin.Context) {
	n, err := a.Problems.CountOpen(c)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": n})
}

type resolveProblemRequest struct {
	Action         string  `json:"action"`
	ResolutionNote *string `json:"resolutionNote"`
}

func (a *API) resolveProblemHandler(c *gin.Context) {
	adminID, ok := caller(c)
	if !ok {
		return
	}

	var req resolveProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errInvalidBody)
		return
	}
	action, err := problem.ParseAction(req.Action)
	if err != nil {
		fail(c, err)
		return
	}
	id, ok := paramID(c, problem.ErrNotFound)
	if !ok {
		return
	}

	p, err := a.Problems.Resolve(c, id, action, req.ResolutionNote, adminID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toProblemResponse(p))
}
