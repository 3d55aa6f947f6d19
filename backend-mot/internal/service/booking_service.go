package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Page limits
const (
	DefaultBookingLimit = 10
	MaxBookingLimit     = 100
)

// BookingService defines the booking operations. Bookings are addressed by
// registration number.
type BookingService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateBookingRequest) (*domain.Booking, error)
	// List returns the caller's bookings. Admins see every booking.
	List(ctx context.Context, caller Caller, q *dto.BookingListQuery) ([]*domain.Booking, error)
	Get(ctx context.Context, caller Caller, reg string) (*domain.Booking, error)
	Update(ctx context.Context, caller Caller, reg string, req *dto.UpdateBookingRequest) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, caller Caller, reg string, req *dto.UpdateBookingStatusRequest) (*domain.Booking, error)
	Delete(ctx context.Context, caller Caller, reg string) error
}

type bookingService struct {
	repo repository.BookingRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(repo repository.BookingRepository, log *logger.Logger) BookingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &bookingService{repo: repo, log: log, now: time.Now}
}

func (s *bookingService) Create(ctx context.Context, caller Caller, req *dto.CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	b := &domain.Booking{
		CustomerUserID:   caller.UserID,
		Name:             strings.TrimSpace(req.Name),
		Vehicle:          req.Vehicle,
		VehicleMake:      req.VehicleMake,
		VehicleModel:     req.VehicleModel,
		VehicleYear:      req.VehicleYear,
		VehicleRegNumber: req.VehicleRegNumber,
		EngineSize:       req.EngineSize,
		FuelType:         req.FuelType,
		Transmission:     req.Transmission,
		Mileage:          req.Mileage,
		AdditionalNotes:  req.AdditionalNotes,
		SelectedGarage:   req.SelectedGarage,
		Date:             strings.TrimSpace(req.Date),
		Time:             strings.TrimSpace(req.Time),
		Status:           domain.BookingPending,
	}
	if err := b.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create booking: %w", err)
	}
	span.SetAttributes(attribute.Int64("booking.id", b.ID))
	return b, nil
}

func (s *bookingService) List(ctx context.Context, caller Caller, q *dto.BookingListQuery) ([]*domain.Booking, error) {
	filter := repository.BookingFilter{
		Skip:  q.Skip,
		Limit: clampLimit(q.Limit, DefaultBookingLimit, MaxBookingLimit),
	}
	if q.Status != "" {
		status, err := domain.ParseBookingStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if !caller.IsAdmin() {
		id := caller.UserID
		filter.CustomerID = &id
	}
	return s.repo.List(ctx, filter)
}

func (s *bookingService) Get(ctx context.Context, caller Caller, reg string) (*domain.Booking, error) {
	return visibleBooking(ctx, s.repo, caller, reg)
}

func (s *bookingService) Update(ctx context.Context, caller Caller, reg string, req *dto.UpdateBookingRequest) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.update")
	defer span.End()

	b, err := visibleBooking(ctx, s.repo, caller, reg)
	if err != nil {
		return nil, err
	}
	applyBookingUpdate(b, req)
	if err := b.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return b, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, caller Caller, reg string, req *dto.UpdateBookingStatusRequest) (*domain.Booking, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	status, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.GetByRegNumber(ctx, domain.NormalizeRegNumber(reg))
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, status); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	s.log.Info("Booking status changed",
		zap.Int64("booking_id", b.ID),
		zap.String("from", string(b.Status)),
		zap.String("to", string(status)),
	)
	b.Status = status
	return b, nil
}

func (s *bookingService) Delete(ctx context.Context, caller Caller, reg string) error {
	b, err := visibleBooking(ctx, s.repo, caller, reg)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, b.ID)
}

// visibleBooking loads a booking the caller may see. Other customers'
// bookings are reported as missing.
func visibleBooking(ctx context.Context, repo repository.BookingRepository, caller Caller, reg string) (*domain.Booking, error) {
	b, err := repo.GetByRegNumber(ctx, domain.NormalizeRegNumber(reg))
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !b.IsOwnedBy(caller.UserID) {
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}

func applyBookingUpdate(b *domain.Booking, req *dto.UpdateBookingRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&b.Name, req.Name)
	setString(&b.Vehicle, req.Vehicle)
	setString(&b.VehicleMake, req.VehicleMake)
	setString(&b.VehicleModel, req.VehicleModel)
	setString(&b.VehicleRegNumber, req.VehicleRegNumber)
	setString(&b.EngineSize, req.EngineSize)
	setString(&b.FuelType, req.FuelType)
	setString(&b.Transmission, req.Transmission)
	setString(&b.AdditionalNotes, req.AdditionalNotes)
	setString(&b.SelectedGarage, req.SelectedGarage)
	setString(&b.Date, req.Date)
	setString(&b.Time, req.Time)
	if req.VehicleYear != nil {
		b.VehicleYear = *req.VehicleYear
	}
	if req.Mileage != nil {
		b.Mileage = *req.Mileage
	}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
