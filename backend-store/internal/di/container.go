package di

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/events"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/gateway"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/handler"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/repository"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/middleware"
)

// Repositories bundles the store repositories
type Repositories struct {
	Products repository.ProductRepository
	Carts    repository.CartRepository
	Orders   repository.OrderRepository
	Payments repository.PaymentRepository
}

// Container holds all dependencies for the store service
type Container struct {
	Repos Repositories

	// Services
	ProductService service.ProductService
	CartService    service.CartService
	OrderService   service.OrderService
	PaymentService service.PaymentService
	Guard          *auth.Guard

	// Handlers
	HealthHandler  *health.Handler
	ProductHandler *handler.ProductHandler
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler

	paymentMiddleware []gin.HandlerFunc
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	ServiceName string
	Repos       Repositories
	Codec       auth.TokenVerifier
	Gateway     gateway.PaymentGateway
	Publisher   events.EventPublisher
	Mailer      service.EmailDispatcher
	OrderConfig *service.OrderServiceConfig
	// Redis enables idempotent payment requests when set
	Redis        middleware.RedisClient
	HealthChecks map[string]health.CheckFunc
	Logger       *logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		Repos: cfg.Repos,
		Guard: auth.NewGuard(cfg.Codec),
	}

	currency := ""
	if cfg.OrderConfig != nil {
		currency = cfg.OrderConfig.Currency
	}

	c.ProductService = service.NewProductService(c.Repos.Products)
	c.CartService = service.NewCartService(c.Repos.Carts, c.Repos.Products)
	c.OrderService = service.NewOrderService(
		c.Repos.Orders, c.Repos.Carts, c.Repos.Products,
		cfg.Publisher, cfg.Mailer, cfg.OrderConfig, cfg.Logger,
	)
	c.PaymentService = service.NewPaymentService(
		c.Repos.Orders, c.Repos.Payments, cfg.Gateway,
		cfg.Publisher, cfg.Mailer, currency, cfg.Logger,
	)

	c.HealthHandler = health.NewHandler(cfg.ServiceName)
	for name, check := range cfg.HealthChecks {
		c.HealthHandler.AddCheck(name, check)
	}
	c.ProductHandler = handler.NewProductHandler(c.ProductService)
	c.CartHandler = handler.NewCartHandler(c.CartService, c.OrderService)
	c.OrderHandler = handler.NewOrderHandler(c.OrderService, c.PaymentService)

	if cfg.Redis != nil {
		c.paymentMiddleware = append(c.paymentMiddleware, middleware.Idempotency(middleware.DefaultIdempotencyConfig(cfg.Redis)))
	}

	return c
}

// RegisterRoutes mounts every endpoint of the service on r
func (c *Container) RegisterRoutes(r *gin.Engine) {
	c.HealthHandler.Register(r)
	handler.RegisterRoutes(r, c.Guard, handler.Handlers{
		Products: c.ProductHandler,
		Carts:    c.CartHandler,
		Orders:   c.OrderHandler,
	}, c.paymentMiddleware...)
}
