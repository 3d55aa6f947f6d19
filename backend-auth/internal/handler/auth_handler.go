package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, response.Error("INVALID_ROLE", "Invalid role. Use buyer, seller, or admin."))
		case errors.Is(err, domain.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, response.Error("WEAK_PASSWORD", weakPasswordMessage(err)))
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, response.Conflict("EMAIL_TAKEN", "Email already registered."))
		default:
			response.AbortInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Login handles user login. Unknown emails and wrong passwords produce the
// same response.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, response.Error("INVALID_CREDENTIALS", "Invalid email or password"))
		case errors.Is(err, domain.ErrAccountDeactivated):
			c.JSON(http.StatusForbidden, response.Error("ACCOUNT_DEACTIVATED", "User is deactivated"))
		default:
			response.AbortInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me returns the current user as stored
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	me, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("User not found"))
			return
		}
		response.AbortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, me)
}

func weakPasswordMessage(err error) string {
	var policy *domain.PasswordPolicyError
	if errors.As(err, &policy) {
		return fmt.Sprintf("Password must be between %d and %d characters long", policy.Min, policy.Max)
	}
	return "Password does not meet the length policy"
}

// callerID reads the numeric user id from verified claims, answering 401
// itself when it cannot.
func callerID(c *gin.Context) (int64, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Could not validate credentials"))
		return 0, false
	}
	id, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Could not validate credentials"))
		return 0, false
	}
	return id, true
}
