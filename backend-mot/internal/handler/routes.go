package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
)

// RegisterRoutes mounts the booking and quote endpoints. Every route needs a
// valid token.
func RegisterRoutes(r gin.IRouter, guard *auth.Guard, bookings *BookingHandler, quotes *QuoteHandler) {
	admin := auth.RequireRole(auth.RoleAdmin)

	g := r.Group("/bookings")
	g.Use(guard.Authenticate())
	{
		g.POST("", bookings.Create)
		g.GET("", bookings.List)
		g.GET("/:reg", bookings.Get)
		g.PATCH("/:reg", bookings.Update)
		g.DELETE("/:reg", bookings.Delete)
		g.PUT("/:reg/status", admin, bookings.UpdateStatus)

		g.POST("/:reg/quote", admin, quotes.Create)
		g.GET("/:reg/quote", quotes.Get)
		g.PATCH("/:reg/quote", quotes.Update)
		g.DELETE("/:reg/quote", admin, quotes.Delete)
	}
}
