package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

// CartHandler serves the caller's cart. Every route needs an authenticated
// caller.
type CartHandler struct {
	carts  service.CartService
	orders service.OrderService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts service.CartService, orders service.OrderService) *CartHandler {
	return &CartHandler{carts: carts, orders: orders}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	cart, err := h.carts.Get(c.Request.Context(), caller.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

// UpdateItem handles PATCH /cart/items/:item_id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id", "Cart item")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	cart, err := h.carts.UpdateItem(c.Request.Context(), caller.UserID, itemID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/items/:item_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id", "Cart item")
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), caller.UserID, itemID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout turns the cart into orders
// POST /cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	result, err := h.orders.Checkout(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
