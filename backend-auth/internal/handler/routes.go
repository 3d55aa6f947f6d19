package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
)

// RegisterRoutes mounts the auth and admin endpoints
func RegisterRoutes(r gin.IRouter, guard *auth.Guard, authHandler *AuthHandler, adminHandler *AdminHandler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", guard.Authenticate(), authHandler.Me)
	}

	admin := r.Group("/admin")
	admin.Use(guard.Authenticate(), auth.RequireRole(auth.RoleAdmin))
	{
		admin.PATCH("/users/:id/activate", adminHandler.Activate)
		admin.PATCH("/users/:id/deactivate", adminHandler.Deactivate)
	}
}
