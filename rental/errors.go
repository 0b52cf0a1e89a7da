package rental

import "github.com/semanticallynull/bikely-backend/internal/apperr"

var (
	ErrMissingFields      = apperr.NewValidation("MISSING_FIELDS", "Missing required fields")
	ErrBikeNotFound       = apperr.NewNotFound("BIKE_NOT_FOUND", "Bike not found")
	ErrBikeNotAvailable   = apperr.NewConflict("BIKE_NOT_AVAILABLE", "Bike is not available")
	ErrInvalidQRCode      = apperr.NewValidation("INVALID_QR_CODE", "Invalid QR code")
	ErrActiveRentalExists = apperr.NewConflict("ACTIVE_RENTAL_EXISTS", "You already have an active rental")

	ErrRentalNotFound     = apperr.NewNotFound("RENTAL_NOT_FOUND", "Rental not found")
	ErrRentalNotActive    = apperr.NewConflict("RENTAL_NOT_ACTIVE", "Rental is not active")
	ErrMissingEndLocation = apperr.NewValidation("MISSING_END_LOCATION",
		"End location is required. Allow location access to end the rental.")
	ErrNotInParkingZone = apperr.NewConflict("NOT_IN_PARKING_ZONE",
		"You must be near a permitted parking spot (within 100 m) to end the rental.")
)
