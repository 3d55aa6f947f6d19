package di

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/handler"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/repository"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
)

// Container holds all dependencies for the auth service
type Container struct {
	// Repositories
	UserRepo repository.UserRepository

	// Services
	AuthService service.AuthService
	Guard       *auth.Guard

	// Handlers
	HealthHandler *health.Handler
	AuthHandler   *handler.AuthHandler
	AdminHandler  *handler.AdminHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	ServiceName   string
	UserRepo      repository.UserRepository
	Hasher        auth.PasswordHasher
	Codec         *auth.TokenCodec
	ServiceConfig *service.AuthServiceConfig
	// HealthChecks are readiness dependencies keyed by name
	HealthChecks map[string]health.CheckFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		UserRepo: cfg.UserRepo,
		Guard:    auth.NewGuard(cfg.Codec),
	}

	c.AuthService = service.NewAuthService(c.UserRepo, cfg.Hasher, cfg.Codec, cfg.ServiceConfig)

	c.HealthHandler = health.NewHandler(cfg.ServiceName)
	for name, check := range cfg.HealthChecks {
		c.HealthHandler.AddCheck(name, check)
	}
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.AdminHandler = handler.NewAdminHandler(c.AuthService)

	return c
}

// RegisterRoutes mounts every endpoint of the service on r
func (c *Container) RegisterRoutes(r *gin.Engine) {
	c.HealthHandler.Register(r)
	handler.RegisterRoutes(r, c.Guard, c.AuthHandler, c.AdminHandler)
}
