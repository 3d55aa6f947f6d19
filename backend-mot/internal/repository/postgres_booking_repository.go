package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
)

// Dates and times are stored as DATE and TIME and read back in the API layouts
const bookingColumns = `id, customer_user_id, name, vehicle, vehicle_make, vehicle_model, vehicle_year,
	vehicle_reg_number, engine_size, fuel_type, transmission, mileage, additional_notes, selected_garage,
	booking_date::text, to_char(booking_time, 'HH24:MI'), status, created_at`

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	db database.DBTX
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(db database.DBTX) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

// Create creates a new booking
func (r *PostgresBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (customer_user_id, name, vehicle, vehicle_make, vehicle_model, vehicle_year,
			vehicle_reg_number, engine_size, fuel_type, transmission, mileage, additional_notes, selected_garage,
			booking_date, booking_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::date, $15::time, $16)
		RETURNING id, created_at
	`
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	err := r.db.QueryRow(ctx, query,
		b.CustomerUserID,
		b.Name,
		b.Vehicle,
		b.VehicleMake,
		b.VehicleModel,
		b.VehicleYear,
		b.VehicleRegNumber,
		b.EngineSize,
		b.FuelType,
		b.Transmission,
		b.Mileage,
		b.AdditionalNotes,
		b.SelectedGarage,
		b.Date,
		b.Time,
		b.Status,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrBookingExists
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByRegNumber retrieves a booking by registration number
func (r *PostgresBookingRepository) GetByRegNumber(ctx context.Context, reg string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE vehicle_reg_number = $1`, reg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("select booking: %w", err)
	}
	return b, nil
}

// List returns bookings ordered by id
func (r *PostgresBookingRepository) List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE ($1::BIGINT IS NULL OR customer_user_id = $1)
		  AND ($2::TEXT IS NULL OR status = $2)
		ORDER BY id
		OFFSET $3 LIMIT $4`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := r.db.Query(ctx, query, filter.CustomerID, status, filter.Skip, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Update overwrites the editable fields of a booking
func (r *PostgresBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `
		UPDATE bookings
		SET name = $2, vehicle = $3, vehicle_make = $4, vehicle_model = $5, vehicle_year = $6,
			vehicle_reg_number = $7, engine_size = $8, fuel_type = $9, transmission = $10, mileage = $11,
			additional_notes = $12, selected_garage = $13, booking_date = $14::date, booking_time = $15::time
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		b.ID,
		b.Name,
		b.Vehicle,
		b.VehicleMake,
		b.VehicleModel,
		b.VehicleYear,
		b.VehicleRegNumber,
		b.EngineSize,
		b.FuelType,
		b.Transmission,
		b.Mileage,
		b.AdditionalNotes,
		b.SelectedGarage,
		b.Date,
		b.Time,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrBookingExists
		}
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// UpdateStatus sets the review status of a booking
func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// Delete removes a booking. Its quote cascades.
func (r *PostgresBookingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID,
		&b.CustomerUserID,
		&b.Name,
		&b.Vehicle,
		&b.VehicleMake,
		&b.VehicleModel,
		&b.VehicleYear,
		&b.VehicleRegNumber,
		&b.EngineSize,
		&b.FuelType,
		&b.Transmission,
		&b.Mileage,
		&b.AdditionalNotes,
		&b.SelectedGarage,
		&b.Date,
		&b.Time,
		&b.Status,
		&b.CreatedAt,
	)
	return b, err
}
