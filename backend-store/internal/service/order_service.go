package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/events"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/notifier"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// EmailDispatcher queues email for background delivery
type EmailDispatcher interface {
	Dispatch(ctx context.Context, email *notifier.Email)
}

// OrderServiceConfig holds configuration for OrderService
type OrderServiceConfig struct {
	TaxRate  decimal.Decimal
	Currency string
}

// OrderService defines the order operations
type OrderService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateOrderRequest) (*domain.Order, error)
	// Checkout turns the caller's active cart into one order per seller
	Checkout(ctx context.Context, caller Caller) (*dto.CheckoutResponse, error)
	// List returns the caller's orders. Admins may list any user's orders.
	List(ctx context.Context, caller Caller, q *dto.OrderListQuery) ([]*domain.Order, error)
	// Get returns an order visible to the caller
	Get(ctx context.Context, caller Caller, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, caller Caller, id int64, req *dto.UpdateOrderStatusRequest) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type orderService struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	products  repository.ProductRepository
	publisher events.EventPublisher
	mailer    EmailDispatcher
	config    OrderServiceConfig
	log       *logger.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	publisher events.EventPublisher,
	mailer EmailDispatcher,
	config *OrderServiceConfig,
	log *logger.Logger,
) OrderService {
	cfg := OrderServiceConfig{TaxRate: decimal.RequireFromString("0.20"), Currency: "gbp"}
	if config != nil {
		cfg = *config
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &orderService{
		orders:    orders,
		carts:     carts,
		products:  products,
		publisher: publisher,
		mailer:    mailer,
		config:    cfg,
		log:       log,
	}
}

func (s *orderService) Create(ctx context.Context, caller Caller, req *dto.CreateOrderRequest) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.create")
	defer span.End()

	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if req.ShippingCost.IsNegative() || req.DiscountAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	order := &domain.Order{
		UserID:         caller.UserID,
		SellerUserID:   req.SellerUserID,
		ShippingCost:   req.ShippingCost,
		DiscountAmount: req.DiscountAmount,
		Status:         domain.OrderStatusCreated,
	}
	// a product may be listed on several lines
	wanted := make(map[int64]int, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsOwnedBy(req.SellerUserID) {
			return nil, fmt.Errorf("%w: product %d", domain.ErrSellerMismatch, p.ID)
		}
		if !p.Active {
			return nil, domain.ErrProductNotFound
		}
		wanted[p.ID] += it.Quantity
		if wanted[p.ID] > p.Stock {
			return nil, domain.ErrInsufficientStock
		}
		order.Items = append(order.Items, domain.NewOrderItem(p.ID, it.Quantity, p.Price))
	}
	order.ComputeTotals(s.config.TaxRate)

	if err := s.orders.Create(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create order: %w", err)
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID))

	s.afterCreate(ctx, caller, order)
	return order, nil
}

func (s *orderService) Checkout(ctx context.Context, caller Caller) (*dto.CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.checkout")
	defer span.End()

	cart, err := s.carts.GetActive(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	bySeller := make(map[int64]*domain.Order)
	for _, it := range cart.Items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, domain.ErrProductNotFound
		}
		if it.Quantity > p.Stock {
			return nil, domain.ErrInsufficientStock
		}

		o, ok := bySeller[p.SellerUserID]
		if !ok {
			o = &domain.Order{
				UserID:       caller.UserID,
				SellerUserID: p.SellerUserID,
				Status:       domain.OrderStatusCreated,
			}
			bySeller[p.SellerUserID] = o
		}
		o.Items = append(o.Items, domain.NewOrderItem(p.ID, it.Quantity, it.UnitPrice))
	}

	orders := make([]*domain.Order, 0, len(bySeller))
	for _, o := range bySeller {
		o.ComputeTotals(s.config.TaxRate)
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].SellerUserID < orders[j].SellerUserID })

	if err := s.orders.Checkout(ctx, cart.ID, orders); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, domain.ErrCartNotActive) {
			return nil, domain.ErrEmptyCart
		}
		return nil, fmt.Errorf("checkout cart %d: %w", cart.ID, err)
	}

	for _, o := range orders {
		s.afterCreate(ctx, caller, o)
	}
	return &dto.CheckoutResponse{CartID: cart.ID, Orders: orders}, nil
}

// afterCreate publishes order.created and queues the confirmation email.
// Neither can fail the request.
func (s *orderService) afterCreate(ctx context.Context, caller Caller, o *domain.Order) {
	if err := s.publisher.PublishOrderCreated(ctx, o); err != nil {
		s.log.Error("Failed to publish order event",
			zap.Int64("order_id", o.ID),
			zap.String("event_type", events.EventOrderCreated),
			zap.Error(err),
		)
	}
	s.mailer.Dispatch(ctx, notifier.OrderConfirmation(caller.Email, o, s.config.Currency))
}

func (s *orderService) List(ctx context.Context, caller Caller, q *dto.OrderListQuery) ([]*domain.Order, error) {
	filter := repository.OrderFilter{
		Skip:  q.Skip,
		Limit: clampLimit(q.Limit, DefaultOrderLimit, MaxOrderLimit),
	}
	if caller.IsAdmin() {
		filter.UserID = q.UserID
	} else {
		uid := caller.UserID
		filter.UserID = &uid
	}
	return s.orders.List(ctx, filter)
}

func (s *orderService) Get(ctx context.Context, caller Caller, id int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !o.IsVisibleTo(caller.UserID) {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, caller Caller, id int64, req *dto.UpdateOrderStatusRequest) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.update_status")
	defer span.End()

	next, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	o, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && o.SellerUserID != caller.UserID {
		return nil, domain.ErrForbidden
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, o.Status, next)
	}

	if err := s.orders.UpdateStatus(ctx, id, o.Status, next); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	o.Status = next
	return o, nil
}

func (s *orderService) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}
