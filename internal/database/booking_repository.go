package database

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking with its price fixed at creation time
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, client_id, pilot_profile_id, service_package_id,
			job_description, booking_date, start_time, end_time,
			status, total_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.ClientID, booking.PilotProfileID, booking.ServicePackageID,
		booking.JobDescription, booking.BookingDate, booking.StartTime, booking.EndTime,
		booking.Status, booking.TotalPrice,
	).Scan(&booking.CreatedAt)

	if err != nil {
		return apperrors.Storage("failed to create booking", err)
	}

	return nil
}

// GetByID retrieves a booking by id
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	booking := &models.Booking{}
	err := r.db.Get(booking, `
		SELECT id, client_id, pilot_profile_id, service_package_id,
			   job_description, booking_date, start_time, end_time,
			   status, total_price, created_at
		FROM bookings
		WHERE id = $1
	`, bookingID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, apperrors.Storage("failed to fetch booking", err)
	}

	return booking, nil
}

// UpdateStatus moves a booking from one status to another. The write is
// guarded on the status the caller validated against, so a response
// racing a payment settlement cannot overwrite a booking that already
// moved on; the loser gets an invalid-state error built from the row's
// current status.
func (r *BookingRepository) UpdateStatus(bookingID string, from, to models.BookingStatus) (models.BookingStatus, error) {
	var stored models.BookingStatus
	err := r.db.QueryRow(`
		UPDATE bookings
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING status
	`, bookingID, from, to).Scan(&stored)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			booking, fetchErr := r.GetByID(bookingID)
			if fetchErr != nil {
				return "", fetchErr
			}
			return "", apperrors.InvalidState("cannot set a %s booking to %s", booking.Status, to)
		}
		return "", apperrors.Storage("failed to update booking status", err)
	}

	return stored, nil
}

const bookingDetailColumns = `
	b.id, b.client_id, b.pilot_profile_id, b.service_package_id,
	b.job_description, b.booking_date, b.start_time, b.end_time,
	b.status, b.total_price, b.created_at,
	p.name AS pilot_name,
	u.username AS client_username,
	u.email AS client_email,
	COALESCE(sp.name, 'Custom service') AS service_name,
	COALESCE(pay.status, 'no_payment') AS payment_status,
	pay.id AS payment_id
`

const bookingDetailJoins = `
	FROM bookings b
	JOIN pilot_profiles p ON p.id = b.pilot_profile_id
	JOIN users u ON u.id = b.client_id
	LEFT JOIN service_packages sp ON sp.id = b.service_package_id
	LEFT JOIN payments pay ON pay.booking_id = b.id
`

// ListDetailsByClient retrieves enriched bookings made by a client
func (r *BookingRepository) ListDetailsByClient(clientID string) ([]models.BookingDetail, error) {
	details := []models.BookingDetail{}
	err := r.db.Select(&details,
		`SELECT `+bookingDetailColumns+bookingDetailJoins+`
		WHERE b.client_id = $1
		ORDER BY b.created_at DESC`, clientID)

	if err != nil {
		return nil, apperrors.Storage("failed to list bookings", err)
	}

	return details, nil
}

// ListDetailsByPilotProfile retrieves enriched bookings made against a
// pilot profile
func (r *BookingRepository) ListDetailsByPilotProfile(profileID string) ([]models.BookingDetail, error) {
	details := []models.BookingDetail{}
	err := r.db.Select(&details,
		`SELECT `+bookingDetailColumns+bookingDetailJoins+`
		WHERE b.pilot_profile_id = $1
		ORDER BY b.created_at DESC`, profileID)

	if err != nil {
		return nil, apperrors.Storage("failed to list bookings", err)
	}

	return details, nil
}
