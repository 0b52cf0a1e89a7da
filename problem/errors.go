package problem

import "github.com/semanticallynull/bikely-backend/internal/apperr"

var (
	ErrNotFound      = apperr.NewNotFound("PROBLEM_NOT_FOUND", "Problem report not found")
	ErrMissingFields = apperr.NewValidation("MISSING_FIELDS", "Title and description are required")
	ErrBikeNotFound  = apperr.NewNotFound("BIKE_NOT_FOUND", "Bike not found")
	ErrInvalidAction = apperr.NewValidation("INVALID_ACTION",
		"Invalid action. Allowed: resolve, maintenance, deactivate")
)
