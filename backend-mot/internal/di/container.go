package di

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/handler"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/repository"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
)

// Container holds all dependencies for the MOT service
type Container struct {
	// Repositories
	BookingRepo repository.BookingRepository
	QuoteRepo   repository.QuoteRepository

	// Services
	BookingService service.BookingService
	QuoteService   service.QuoteService
	Guard          *auth.Guard

	// Handlers
	HealthHandler  *health.Handler
	BookingHandler *handler.BookingHandler
	QuoteHandler   *handler.QuoteHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	ServiceName  string
	BookingRepo  repository.BookingRepository
	QuoteRepo    repository.QuoteRepository
	Codec        auth.TokenVerifier
	HealthChecks map[string]health.CheckFunc
	Logger       *logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		BookingRepo: cfg.BookingRepo,
		QuoteRepo:   cfg.QuoteRepo,
		Guard:       auth.NewGuard(cfg.Codec),
	}

	c.BookingService = service.NewBookingService(c.BookingRepo, cfg.Logger)
	c.QuoteService = service.NewQuoteService(c.BookingRepo, c.QuoteRepo)

	c.HealthHandler = health.NewHandler(cfg.ServiceName)
	for name, check := range cfg.HealthChecks {
		c.HealthHandler.AddCheck(name, check)
	}
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.QuoteHandler = handler.NewQuoteHandler(c.QuoteService)

	return c
}

// RegisterRoutes mounts every endpoint of the service on r
func (c *Container) RegisterRoutes(r *gin.Engine) {
	c.HealthHandler.Register(r)
	handler.RegisterRoutes(r, c.Guard, c.BookingHandler, c.QuoteHandler)
}
