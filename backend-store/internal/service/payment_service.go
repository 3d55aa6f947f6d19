package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/events"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/gateway"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/notifier"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PaymentService charges orders
type PaymentService interface {
	// Pay charges the order total. The order is claimed (CREATED to
	// PROCESSING) before the gateway is called, so concurrent calls charge at
	// most once. A declined card returns the stored failed payment together
	// with an error wrapping ErrPaymentDeclined.
	Pay(ctx context.Context, caller Caller, orderID int64, req *dto.CreatePaymentRequest) (*domain.Payment, error)
	// List returns the payments of an order visible to the caller
	List(ctx context.Context, caller Caller, orderID int64) ([]*domain.Payment, error)
}

type paymentService struct {
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	gateway   gateway.PaymentGateway
	publisher events.EventPublisher
	mailer    EmailDispatcher
	currency  string
	log       *logger.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	gw gateway.PaymentGateway,
	publisher events.EventPublisher,
	mailer EmailDispatcher,
	currency string,
	log *logger.Logger,
) PaymentService {
	if currency == "" {
		currency = "gbp"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &paymentService{
		orders:    orders,
		payments:  payments,
		gateway:   gw,
		publisher: publisher,
		mailer:    mailer,
		currency:  strings.ToLower(currency),
		log:       log,
	}
}

func (s *paymentService) Pay(ctx context.Context, caller Caller, orderID int64, req *dto.CreatePaymentRequest) (*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.pay")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID), attribute.String("payment.gateway", s.gateway.Name()))

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID {
		if caller.IsAdmin() || order.SellerUserID == caller.UserID {
			return nil, domain.ErrForbidden
		}
		return nil, domain.ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusCreated {
		return nil, domain.ErrOrderNotPayable
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusCreated, domain.OrderStatusProcessing); err != nil {
		if errors.Is(err, domain.ErrInvalidStatusTransition) {
			return nil, domain.ErrOrderNotPayable
		}
		return nil, err
	}
	order.Status = domain.OrderStatusProcessing
	// once money has moved the order must not return to CREATED
	charged := false
	defer func() {
		if !charged {
			s.release(ctx, order.ID)
		}
	}()

	previous, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	resp, err := s.gateway.Charge(ctx, &gateway.ChargeRequest{
		OrderID:       order.ID,
		Attempt:       len(previous) + 1,
		AmountMinor:   domain.MinorUnits(order.Total),
		Currency:      s.currency,
		PaymentMethod: req.PaymentMethod,
		Description:   fmt.Sprintf("Order #%d", order.ID),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, gateway.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
		}
		return nil, err
	}

	payment := &domain.Payment{
		OrderID:       order.ID,
		TransactionID: resp.TransactionID,
		Amount:        order.Total,
		Currency:      s.currency,
	}
	switch {
	case resp.Success:
		charged = true
		payment.Status = domain.PaymentStatusSuccess
	case resp.Pending:
		payment.Status = domain.PaymentStatusPending
	default:
		payment.Status = domain.PaymentStatusFailed
		payment.FailureReason = resp.FailureReason
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("record payment: %w", err)
	}

	switch payment.Status {
	case domain.PaymentStatusFailed:
		return payment, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, payment.FailureReason)
	case domain.PaymentStatusPending:
		return payment, nil
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusProcessing, domain.OrderStatusPaid); err != nil {
		// The charge went through; the order changed underneath us
		s.log.Error("Charged order could not be marked paid",
			zap.Int64("order_id", order.ID),
			zap.Int64("payment_id", payment.ID),
			zap.Error(err),
		)
		telemetry.RecordError(span, err)
		return nil, err
	}
	order.Status = domain.OrderStatusPaid

	if err := s.publisher.PublishOrderPaid(ctx, order, payment); err != nil {
		s.log.Error("Failed to publish order event",
			zap.Int64("order_id", order.ID),
			zap.String("event_type", events.EventOrderPaid),
			zap.Error(err),
		)
	}
	s.mailer.Dispatch(ctx, notifier.PaymentReceipt(caller.Email, order, payment))
	return payment, nil
}

// release returns a claimed order to CREATED after a charge that did not
// complete
func (s *paymentService) release(ctx context.Context, orderID int64) {
	err := s.orders.UpdateStatus(context.WithoutCancel(ctx), orderID, domain.OrderStatusProcessing, domain.OrderStatusCreated)
	if err != nil {
		s.log.Error("Failed to release order after unpaid charge",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (s *paymentService) List(ctx context.Context, caller Caller, orderID int64) ([]*domain.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !order.IsVisibleTo(caller.UserID) {
		return nil, domain.ErrOrderNotFound
	}
	return s.payments.ListByOrder(ctx, orderID)
}
