package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

// OrderHandler serves orders and their payments
type OrderHandler struct {
	orders   service.OrderService
	payments service.PaymentService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, payments service.PaymentService) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments}
}

// Create places an order with a single seller
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	order, err := h.orders.Create(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var q dto.OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	orders, err := h.orders.List(c.Request.Context(), caller, &q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Order")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Order")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), caller, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Delete handles DELETE /orders/:id. Admin only.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "Order")
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pay charges the order
// POST /orders/:id/payments
func (h *OrderHandler) Pay(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Order")
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	payment, err := h.payments.Pay(c.Request.Context(), caller, id, &req)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentDeclined) {
			reason := "card declined"
			if payment != nil && payment.FailureReason != "" {
				reason = payment.FailureReason
			}
			c.JSON(http.StatusPaymentRequired, response.Error("PAYMENT_FAILED", "Payment failed: "+reason))
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// Payments handles GET /orders/:id/payments
func (h *OrderHandler) Payments(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Order")
	if !ok {
		return
	}

	payments, err := h.payments.List(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
