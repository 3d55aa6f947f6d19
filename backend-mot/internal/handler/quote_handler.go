package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

// QuoteHandler serves the quote of a booking
type QuoteHandler struct {
	quotes service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quotes service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Create handles POST /bookings/:reg/quote
func (h *QuoteHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	q, err := h.quotes.Create(c.Request.Context(), caller, c.Param("reg"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// Get handles GET /bookings/:reg/quote
func (h *QuoteHandler) Get(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	q, err := h.quotes.Get(c.Request.Context(), caller, c.Param("reg"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Update accepts or declines a quote, or reprices it for admins
// PATCH /bookings/:reg/quote
func (h *QuoteHandler) Update(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	q, err := h.quotes.Update(c.Request.Context(), caller, c.Param("reg"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Delete handles DELETE /bookings/:reg/quote
func (h *QuoteHandler) Delete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	if err := h.quotes.Delete(c.Request.Context(), caller, c.Param("reg")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
