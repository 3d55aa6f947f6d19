package domain

import (
	"strings"
	"time"
)

// Layouts of the booking date and time fields
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// firstCarYear bounds vehicle_year from below
const firstCarYear = 1886

// BookingStatus is the review state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingApproved  BookingStatus = "Approved"
	BookingRejected  BookingStatus = "Rejected"
	BookingCompleted BookingStatus = "Completed"
)

var bookingStatuses = []BookingStatus{BookingPending, BookingApproved, BookingRejected, BookingCompleted}

// ParseBookingStatus matches s case-insensitively and returns the canonical
// spelling
func ParseBookingStatus(s string) (BookingStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range bookingStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidBookingStatus
}

// NormalizeRegNumber uppercases a registration number and strips all
// whitespace, so "ab12 cde" and "AB12CDE" name the same vehicle
func NormalizeRegNumber(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// Booking is an MOT or service appointment for one vehicle
type Booking struct {
	ID               int64         `json:"id"`
	CustomerUserID   int64         `json:"customer_user_id"`
	Name             string        `json:"name"`
	Vehicle          string        `json:"vehicle"`
	VehicleMake      string        `json:"vehicle_make"`
	VehicleModel     string        `json:"vehicle_model"`
	VehicleYear      int           `json:"vehicle_year"`
	VehicleRegNumber string        `json:"vehicle_reg_number"`
	EngineSize       string        `json:"engine_size"`
	FuelType         string        `json:"fuel_type"`
	Transmission     string        `json:"transmission"`
	Mileage          int           `json:"mileage"`
	AdditionalNotes  string        `json:"additional_notes"`
	SelectedGarage   string        `json:"selected_garage"`
	Date             string        `json:"date"`
	Time             string        `json:"time"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Validate normalizes the registration number and checks field formats
func (b *Booking) Validate(now time.Time) error {
	b.VehicleRegNumber = NormalizeRegNumber(b.VehicleRegNumber)
	if b.VehicleRegNumber == "" {
		return ErrInvalidRegNumber
	}
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, b.Time); err != nil {
		return ErrInvalidTime
	}
	if b.VehicleYear != 0 && (b.VehicleYear < firstCarYear || b.VehicleYear > now.Year()+1) {
		return ErrInvalidVehicleYear
	}
	if b.Mileage < 0 {
		return ErrInvalidMileage
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	return nil
}

// IsOwnedBy reports whether userID made the booking
func (b *Booking) IsOwnedBy(userID int64) bool {
	return b.CustomerUserID == userID
}
