package models

import "time"

// PaymentStatus mirrors the external provider's intent states. Only the
// values the reconciliation logic branches on are named; any other
// provider status is stored as-is.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCanceled  PaymentStatus = "canceled"
)

// Payment tracks the external payment intent for a booking. At most one
// payment per booking ever reaches succeeded, enforced by a partial
// unique index.
type Payment struct {
	ID               string        `json:"id" db:"id"`
	BookingID        string        `json:"booking_id" db:"booking_id"`
	ProviderIntentID string        `json:"provider_intent_id" db:"provider_intent_id"`
	Amount           int64         `json:"amount" db:"amount"` // minor units (cents)
	Currency         string        `json:"currency" db:"currency"`
	Status           PaymentStatus `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

// AmountMajor returns the amount in major units (euros).
func (p *Payment) AmountMajor() float64 {
	return float64(p.Amount) / 100
}

// CreateIntentRequest represents the request to initiate a payment
type CreateIntentRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

// ConfirmPaymentRequest carries the provider intent id to reconcile. The
// status itself is never taken from the client; it is re-fetched from
// the provider.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// CreateIntentResponse is returned to the caller so the client-side
// payment UI can complete the charge.
type CreateIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// PaymentStatusResponse reports whether a booking has a payment and, if
// so, its serialized record with the amount also in major units.
type PaymentStatusResponse struct {
	HasPayment  bool     `json:"has_payment"`
	Status      string   `json:"status"`
	Payment     *Payment `json:"payment,omitempty"`
	AmountEuros *float64 `json:"amount_euros,omitempty"`
}
