package database

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// PaymentRepository handles database operations for the payments table.
// It takes *sqlx.DB directly because settling a payment updates the
// payment and its booking in one transaction.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, booking_id, provider_intent_id, amount, currency, status,
	created_at, completed_at
`

// Create inserts a new payment row in pending state
func (r *PaymentRepository) Create(payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, provider_intent_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		payment.ID, payment.BookingID, payment.ProviderIntentID,
		payment.Amount, payment.Currency, payment.Status,
	).Scan(&payment.CreatedAt)

	if err != nil {
		return apperrors.Storage("failed to create payment", err)
	}

	return nil
}

// GetByBookingID retrieves the payment for a booking. Returns (nil, nil)
// when the booking has no payment yet.
func (r *PaymentRepository) GetByBookingID(bookingID string) (*models.Payment, error) {
	payment := &models.Payment{}
	err := r.db.Get(payment, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = $1`, bookingID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Storage("failed to fetch payment", err)
	}

	return payment, nil
}

// GetByIntentID retrieves a payment by its external intent id
func (r *PaymentRepository) GetByIntentID(intentID string) (*models.Payment, error) {
	payment := &models.Payment{}
	err := r.db.Get(payment, `SELECT `+paymentColumns+` FROM payments WHERE provider_intent_id = $1`, intentID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("payment not found")
		}
		return nil, apperrors.Storage("failed to fetch payment", err)
	}

	return payment, nil
}

// ReplaceIntent points an existing payment row at a fresh provider
// intent, resetting it to pending. Used when a stale non-succeeded
// payment is retried.
func (r *PaymentRepository) ReplaceIntent(paymentID, intentID string, amount int64) error {
	result, err := r.db.Exec(`
		UPDATE payments
		SET provider_intent_id = $2, amount = $3, status = $4, completed_at = NULL
		WHERE id = $1
	`, paymentID, intentID, amount, models.PaymentStatusPending)

	if err != nil {
		return apperrors.Storage("failed to replace payment intent", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to replace payment intent", err)
	}
	if rows == 0 {
		return apperrors.NotFound("payment not found")
	}

	return nil
}

// UpdateStatus stores the provider's authoritative status for a
// non-success outcome
func (r *PaymentRepository) UpdateStatus(paymentID string, status models.PaymentStatus) error {
	result, err := r.db.Exec(`
		UPDATE payments SET status = $2 WHERE id = $1
	`, paymentID, status)

	if err != nil {
		return apperrors.Storage("failed to update payment status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to update payment status", err)
	}
	if rows == 0 {
		return apperrors.NotFound("payment not found")
	}

	return nil
}

// MarkSucceeded settles a successful payment and transitions its booking
// to paid in a single transaction. The status guard makes the operation
// idempotent: a payment that is already succeeded is left untouched and
// applied is false, so concurrent confirmations settle exactly once.
func (r *PaymentRepository) MarkSucceeded(paymentID, bookingID string) (applied bool, err error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, apperrors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE payments
		SET status = $2, completed_at = NOW()
		WHERE id = $1 AND status <> $2
	`, paymentID, models.PaymentStatusSucceeded)
	if err != nil {
		return false, apperrors.Storage("failed to settle payment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Storage("failed to settle payment", err)
	}

	if rows == 0 {
		// Already settled by an earlier confirmation.
		return false, nil
	}

	if _, err := tx.Exec(`
		UPDATE bookings SET status = $2 WHERE id = $1
	`, bookingID, models.BookingStatusPaid); err != nil {
		return false, apperrors.Storage("failed to mark booking as paid", err)
	}

	if err := tx.Commit(); err != nil {
		return false, apperrors.Storage("failed to commit payment settlement", err)
	}

	return true, nil
}
