package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/problem"
	"github.com/semanticallynull/bikely-backend/stats"
)

type statsResponse struct {
	Counts        stats.Counts     `json:"counts"`
	RecentRentals []rentalResponse `json:"recentRentals"`
	Charts        chartsResponse   `json:"charts"`
	Stats         summaryResponse  `json:"stats"`
}

type chartsResponse struct {
	BikesByType         []bike.TypeCount      `json:"bikesByType"`
	BikesByStatus       []bike.StatusCount    `json:"bikesByStatus"`
	ProblemsByStatus    []problem.StatusCount `json:"problemsByStatus"`
	RentalsCurrentMonth []stats.Point         `json:"rentalsCurrentMonth"`
	RentalsByMonth      []stats.Point         `json:"rentalsByMonth"`
}

type summaryResponse struct {
	TotalRevenue             float64 `json:"totalRevenue"`
	AvgRentalDurationMinutes int     `json:"avgRentalDurationMinutes"`
	CurrentMonth             string  `json:"currentMonth"`
}

func (a *API) statsHandler(c *gin.Context) {
	offset := 0
	if v := c.Query("monthOffset"); v != "" {
		var err error
		if offset, err = strconv.Atoi(v); err != nil {
			fail(c, stats.ErrInvalidMonthOffset)
			return
		}
	}

	d, err := a.Stats.Dashboard(c, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, statsResponse{
		Counts:        d.Counts,
		RecentRentals: toRentalDetailResponses(d.RecentRentals, true),
		Charts: chartsResponse{
			BikesByType:         d.BikesByType,
			BikesByStatus:       d.BikesByStatus,
			ProblemsByStatus:    d.ProblemsByStatus,
			RentalsCurrentMonth: d.Daily,
			RentalsByMonth:      d.Monthly,
		},
		Stats: summaryResponse{
			TotalRevenue:             d.TotalRevenue,
			AvgRentalDurationMinutes: d.AvgDurationMinutes,
			CurrentMonth:             d.Month,
		},
	})
}
