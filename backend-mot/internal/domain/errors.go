package domain

import "errors"

var (
	// Bookings
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingExists        = errors.New("booking already exists for this registration number")
	ErrInvalidBookingStatus = errors.New("invalid booking status")
	ErrInvalidRegNumber     = errors.New("registration number is required")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime          = errors.New("time must be HH:MM")
	ErrInvalidVehicleYear   = errors.New("invalid vehicle year")
	ErrInvalidMileage       = errors.New("mileage must not be negative")

	// Quotes
	ErrQuoteNotFound      = errors.New("quote not found")
	ErrQuoteExists        = errors.New("booking already has a quote")
	ErrInvalidQuoteAmount = errors.New("quote amount must not be negative")
	ErrInvalidQuoteStatus = errors.New("invalid quote status")

	// Access
	ErrForbidden = errors.New("forbidden")
)
