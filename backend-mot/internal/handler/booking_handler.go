package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

// BookingHandler serves MOT bookings
type BookingHandler struct {
	bookings service.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create books an MOT for the caller
// POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// List handles GET /bookings
func (h *BookingHandler) List(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var q dto.BookingListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	bookings, err := h.bookings.List(c.Request.Context(), caller, &q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// Get handles GET /bookings/:reg
func (h *BookingHandler) Get(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	b, err := h.bookings.Get(c.Request.Context(), caller, c.Param("reg"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Update handles PATCH /bookings/:reg
func (h *BookingHandler) Update(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	b, err := h.bookings.Update(c.Request.Context(), caller, c.Param("reg"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpdateStatus handles PUT /bookings/:reg/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	b, err := h.bookings.UpdateStatus(c.Request.Context(), caller, c.Param("reg"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /bookings/:reg
func (h *BookingHandler) Delete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), caller, c.Param("reg")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
