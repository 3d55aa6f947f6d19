package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

// AdminHandler serves user administration routes. Callers must pass
// auth.RequireRole(auth.RoleAdmin) first.
type AdminHandler struct {
	authService service.AuthService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(authService service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// Activate handles PATCH /admin/users/:id/activate
func (h *AdminHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate handles PATCH /admin/users/:id/deactivate
func (h *AdminHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *AdminHandler) setActive(c *gin.Context, active bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("User id must be a positive integer"))
		return
	}

	result, err := h.authService.SetActive(c.Request.Context(), id, active)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("User not found"))
			return
		}
		response.AbortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
