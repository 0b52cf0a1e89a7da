// Package pricing computes what a rental costs.
package pricing

import (
	"math"
	"time"

	"github.com/semanticallynull/bikely-backend/internal/apperr"
)

var (
	ErrInvalidRate = apperr.NewValidation("INVALID_HOURLY_RATE", "invalid bike hourly rate")
	ErrInvalidCost = apperr.NewInternal("INVALID_COST", "failed to compute rental cost")
)

// Policy adjusts the billable duration before the hourly rate is applied.
// The zero value bills the exact elapsed time.
type Policy struct {
	// MinimumCharge is the shortest duration a rental is billed for.
	MinimumCharge time.Duration
	// Increment rounds the billable duration up to a multiple of itself,
	// e.g. time.Minute bills every started minute.
	Increment time.Duration
}

// Cost bills the exact elapsed time between start and end.
func Cost(start, end time.Time, hourlyRate float64) (float64, error) {
	return Policy{}.Cost(start, end, hourlyRate)
}

// Cost returns max(0, billable hours) * hourlyRate.
func (p Policy) Cost(start, end time.Time, hourlyRate float64) (float64, error) {
	if math.IsNaN(hourlyRate) || math.IsInf(hourlyRate, 0) || hourlyRate <= 0 {
		return 0, ErrInvalidRate
	}

	cost := p.Billable(end.Sub(start)).Hours() * hourlyRate
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return 0, ErrInvalidCost
	}
	return cost, nil
}

// Billable applies the policy to an elapsed duration. Negative durations,
// e.g. from clock skew, bill nothing.
func (p Policy) Billable(elapsed time.Duration) time.Duration {
	if elapsed < 0 {
		elapsed = 0
	}
	if p.Increment > 0 && elapsed%p.Increment != 0 {
		elapsed += p.Increment - elapsed%p.Increment
	}
	if elapsed < p.MinimumCharge {
		elapsed = p.MinimumCharge
	}
	return elapsed
}
