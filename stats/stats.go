// Package stats assembles the admin dashboard.
package stats

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/semanticallynull/bikely-backend/bike"
	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/problem"
	"github.com/semanticallynull/bikely-backend/rental"
)

// MaxMonthOffset is how far back the daily charts can be paged.
const MaxMonthOffset = 6

const (
	recentRentals = 10
	months        = 6
)

var ErrInvalidMonthOffset = apperr.NewValidation("INVALID_MONTH_OFFSET", "monthOffset must be between 0 and 6")

type Bikes interface {
	Count(ctx context.Context) (int, error)
	CountByType(ctx context.Context) ([]bike.TypeCount, error)
	CountByStatus(ctx context.Context) ([]bike.StatusCount, error)
}

type Problems interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) ([]problem.StatusCount, error)
}

type Users interface {
	Count(ctx context.Context) (int, error)
}

type Rentals interface {
	CountActive(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]rental.Detail, error)
	Series(ctx context.Context, unit string, from, to time.Time) ([]rental.Bucket, error)
	Summary(ctx context.Context) (rental.Summary, error)
}

type Counts struct {
	Bikes         int `json:"bikes"`
	Problems      int `json:"problems"`
	Users         int `json:"users"`
	ActiveRentals int `json:"activeRentals"`
}

// Point is one bucket of a chart. Date is YYYY-MM-DD for daily charts and
// YYYY-MM for monthly ones.
type Point struct {
	Date    string  `json:"date"`
	Rentals int     `json:"rentals"`
	Revenue float64 `json:"revenue"`
}

type Dashboard struct {
	Counts           Counts
	RecentRentals    []rental.Detail
	BikesByType      []bike.TypeCount
	BikesByStatus    []bike.StatusCount
	ProblemsByStatus []problem.StatusCount
	// Daily covers every day of the selected month.
	Daily []Point
	// Monthly covers the current month and the five before it.
	Monthly []Point

	TotalRevenue       float64
	AvgDurationMinutes int
	Month              string
}

type Service struct {
	bikes    Bikes
	problems Problems
	users    Users
	rentals  Rentals
	now      func() time.Time
}

func NewService(bikes Bikes, problems Problems, users Users, rentals Rentals) *Service {
	return &Service{bikes: bikes, problems: problems, users: users, rentals: rentals, now: time.Now}
}

// Dashboard gathers every figure concurrently. monthOffset selects the month
// of the daily charts, 0 being the current one.
func (s *Service) Dashboard(ctx context.Context, monthOffset int) (Dashboard, error) {
	if monthOffset < 0 || monthOffset > MaxMonthOffset {
		return Dashboard{}, ErrInvalidMonthOffset
	}

	now := s.now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	month := thisMonth.AddDate(0, -monthOffset, 0)
	firstMonth := thisMonth.AddDate(0, -(months - 1), 0)

	var (
		d       = Dashboard{Month: month.Format("2006-01")}
		daily   []rental.Bucket
		monthly []rental.Bucket
		summary rental.Summary
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Counts.Bikes, err = s.bikes.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Problems, err = s.problems.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Users, err = s.users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.ActiveRentals, err = s.rentals.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentRentals, err = s.rentals.Recent(ctx, recentRentals)
		return err
	})
	g.Go(func() (err error) {
		d.BikesByType, err = s.bikes.CountByType(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.BikesByStatus, err = s.bikes.CountByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.ProblemsByStatus, err = s.problems.CountByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		daily, err = s.rentals.Series(ctx, "day", month, month.AddDate(0, 1, 0))
		return err
	})
	g.Go(func() (err error) {
		monthly, err = s.rentals.Series(ctx, "month", firstMonth, thisMonth.AddDate(0, 1, 0))
		return err
	})
	g.Go(func() (err error) {
		summary, err = s.rentals.Summary(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d.Daily = Daily(month, daily)
	d.Monthly = Monthly(firstMonth, months, monthly)
	d.TotalRevenue = summary.Revenue
	d.AvgDurationMinutes = int(math.Round(summary.AvgDurationMinutes))
	return d, nil
}

// Daily returns one point per day of the month starting at month, taking
// counts from buckets and zero elsewhere.
func Daily(month time.Time, buckets []rental.Bucket) []Point {
	return fill(month, month.AddDate(0, 1, 0), "2006-01-02", buckets, func(t time.Time) time.Time {
		return t.AddDate(0, 0, 1)
	})
}

// Monthly returns n points, one per month starting at from.
func Monthly(from time.Time, n int, buckets []rental.Bucket) []Point {
	return fill(from, from.AddDate(0, n, 0), "2006-01", buckets, func(t time.Time) time.Time {
		return t.AddDate(0, 1, 0)
	})
}

func fill(from, to time.Time, layout string, buckets []rental.Bucket, next func(time.Time) time.Time) []Point {
	byDate := make(map[string]rental.Bucket, len(buckets))
	for _, b := range buckets {
		byDate[b.Start.UTC().Format(layout)] = b
	}

	var points []Point
	for t := from; t.Before(to); t = next(t) {
		key := t.Format(layout)
		b := byDate[key]
		points = append(points, Point{Date: key, Rentals: b.Count, Revenue: b.Revenue})
	}
	return points
}
