package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{domain.ErrBookingNotFound, http.StatusNotFound, "NOT_FOUND", "Booking not found"},
	{domain.ErrQuoteNotFound, http.StatusNotFound, "NOT_FOUND", "Quote not found"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Not enough permissions"},

	{domain.ErrBookingExists, http.StatusConflict, "BOOKING_EXISTS", "A booking already exists for this registration number"},
	{domain.ErrQuoteExists, http.StatusConflict, "QUOTE_EXISTS", "Booking already has a quote"},

	{domain.ErrInvalidRegNumber, http.StatusBadRequest, "INVALID_REG_NUMBER", "Registration number is required"},
	{domain.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE", "Date must be YYYY-MM-DD"},
	{domain.ErrInvalidTime, http.StatusBadRequest, "INVALID_TIME", "Time must be HH:MM"},
	{domain.ErrInvalidVehicleYear, http.StatusBadRequest, "INVALID_VEHICLE_YEAR", "Vehicle year is out of range"},
	{domain.ErrInvalidMileage, http.StatusBadRequest, "INVALID_MILEAGE", "Mileage must not be negative"},
	{domain.ErrInvalidBookingStatus, http.StatusBadRequest, "INVALID_STATUS", "Status must be Pending, Approved, Rejected or Completed"},
	{domain.ErrInvalidQuoteAmount, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must not be negative"},
	{domain.ErrInvalidQuoteStatus, http.StatusBadRequest, "INVALID_STATUS", "Status must be Pending, Accepted or Declined"},
}

// writeError answers with the mapped status for a known error and a bare 500
// otherwise
func writeError(c *gin.Context, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			c.JSON(m.status, response.Error(m.code, m.message))
			return
		}
	}
	response.AbortInternal(c, err)
}

func currentCaller(c *gin.Context) (service.Caller, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Could not validate credentials"))
		return service.Caller{}, false
	}
	caller, err := service.CallerFromClaims(claims)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Could not validate credentials"))
		return service.Caller{}, false
	}
	return caller, true
}
