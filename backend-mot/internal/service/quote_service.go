package service

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// QuoteService manages the single quote attached to a booking
type QuoteService interface {
	Create(ctx context.Context, caller Caller, reg string, req *dto.CreateQuoteRequest) (*domain.Quote, error)
	Get(ctx context.Context, caller Caller, reg string) (*domain.Quote, error)
	// Update lets admins change amount and status. The booking's owner may
	// only accept or decline.
	Update(ctx context.Context, caller Caller, reg string, req *dto.UpdateQuoteRequest) (*domain.Quote, error)
	Delete(ctx context.Context, caller Caller, reg string) error
}

type quoteService struct {
	bookings repository.BookingRepository
	quotes   repository.QuoteRepository
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(bookings repository.BookingRepository, quotes repository.QuoteRepository) QuoteService {
	return &quoteService{bookings: bookings, quotes: quotes}
}

func (s *quoteService) Create(ctx context.Context, caller Caller, reg string, req *dto.CreateQuoteRequest) (*domain.Quote, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.quote.create")
	defer span.End()

	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if req.Amount == nil {
		return nil, domain.ErrInvalidQuoteAmount
	}
	q := &domain.Quote{Amount: *req.Amount, Status: domain.QuotePending}
	if req.Status != "" {
		status, err := domain.ParseQuoteStatus(req.Status)
		if err != nil {
			return nil, err
		}
		q.Status = status
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByRegNumber(ctx, domain.NormalizeRegNumber(reg))
	if err != nil {
		return nil, err
	}
	q.BookingID = b.ID

	if err := s.quotes.Create(ctx, q); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create quote: %w", err)
	}
	span.SetAttributes(attribute.Int64("quote.id", q.ID), attribute.Int64("booking.id", b.ID))
	return q, nil
}

func (s *quoteService) Get(ctx context.Context, caller Caller, reg string) (*domain.Quote, error) {
	b, err := visibleBooking(ctx, s.bookings, caller, reg)
	if err != nil {
		return nil, err
	}
	return s.quotes.GetByBookingID(ctx, b.ID)
}

func (s *quoteService) Update(ctx context.Context, caller Caller, reg string, req *dto.UpdateQuoteRequest) (*domain.Quote, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.quote.update")
	defer span.End()

	var status *domain.QuoteStatus
	if req.Status != nil {
		st, err := domain.ParseQuoteStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}

	b, err := visibleBooking(ctx, s.bookings, caller, reg)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		if req.Amount != nil || status == nil || !status.IsCustomerAnswer() {
			return nil, domain.ErrForbidden
		}
	}

	q, err := s.quotes.GetByBookingID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if req.Amount != nil {
		q.Amount = *req.Amount
	}
	if status != nil {
		q.Status = *status
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if err := s.quotes.Update(ctx, q); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update quote: %w", err)
	}
	return q, nil
}

func (s *quoteService) Delete(ctx context.Context, caller Caller, reg string) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	b, err := s.bookings.GetByRegNumber(ctx, domain.NormalizeRegNumber(reg))
	if err != nil {
		return err
	}
	return s.quotes.DeleteByBookingID(ctx, b.ID)
}
