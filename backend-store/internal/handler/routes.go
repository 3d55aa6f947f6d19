package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
)

// Handlers groups the store handlers
type Handlers struct {
	Products *ProductHandler
	Carts    *CartHandler
	Orders   *OrderHandler
}

// RegisterRoutes mounts the catalog, cart and order endpoints. paymentMW runs
// in front of POST /orders/:id/payments only.
func RegisterRoutes(r gin.IRouter, guard *auth.Guard, h Handlers, paymentMW ...gin.HandlerFunc) {
	products := r.Group("/products")
	{
		products.GET("", guard.Optional(), h.Products.List)
		products.GET("/:id", h.Products.Get)
		products.POST("", guard.Authenticate(), auth.RequireRole(auth.RoleSeller, auth.RoleAdmin), h.Products.Create)
		products.PATCH("/:id", guard.Authenticate(), h.Products.Update)
		products.DELETE("/:id", guard.Authenticate(), h.Products.Delete)
	}

	cart := r.Group("/cart")
	cart.Use(guard.Authenticate())
	{
		cart.GET("", h.Carts.Get)
		cart.POST("/items", h.Carts.AddItem)
		cart.PATCH("/items/:item_id", h.Carts.UpdateItem)
		cart.DELETE("/items/:item_id", h.Carts.RemoveItem)
		cart.POST("/checkout", h.Carts.Checkout)
	}

	orders := r.Group("/orders")
	orders.Use(guard.Authenticate())
	{
		orders.POST("", h.Orders.Create)
		orders.GET("", h.Orders.List)
		orders.GET("/:id", h.Orders.Get)
		orders.PATCH("/:id/status", h.Orders.UpdateStatus)
		orders.DELETE("/:id", auth.RequireRole(auth.RoleAdmin), h.Orders.Delete)

		pay := append(append([]gin.HandlerFunc{}, paymentMW...), h.Orders.Pay)
		orders.POST("/:id/payments", pay...)
		orders.GET("/:id/payments", h.Orders.Payments)
	}
}
