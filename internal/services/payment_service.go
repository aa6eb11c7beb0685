package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
	"github.com/dronebook/marketplace-backend/pkg/mailer"
)

// PaymentService reconciles bookings with the external payment
// provider. The provider's intent status is the source of truth; local
// rows only mirror it.
type PaymentService struct {
	payments PaymentStore
	bookings BookingStore
	profiles PilotProfileStore
	users    UserStore
	provider PaymentProvider
	notifier Notifier
	mailer   mailer.Mailer
	currency string
	logger   *logrus.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payments PaymentStore,
	bookings BookingStore,
	profiles PilotProfileStore,
	users UserStore,
	provider PaymentProvider,
	notifier Notifier,
	mail mailer.Mailer,
	currency string,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		profiles: profiles,
		users:    users,
		provider: provider,
		notifier: notifier,
		mailer:   mail,
		currency: currency,
		logger:   logger,
	}
}

// CreateIntent initiates a payment for a confirmed booking. A repeated
// call reuses the existing local row, replacing its provider intent and
// resetting it to pending; once a payment has succeeded no new intent is
// ever issued.
func (s *PaymentService) CreateIntent(clientID, bookingID string) (*models.CreateIntentResponse, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != clientID {
		return nil, apperrors.Forbidden("booking belongs to another client")
	}

	existing, err := s.payments.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.PaymentStatusSucceeded {
		return nil, apperrors.AlreadyPaid("booking is already paid")
	}

	if !booking.IsPayable() {
		return nil, apperrors.InvalidState("booking must be confirmed before payment, current status is %s", booking.Status)
	}

	amount := int64(booking.TotalPrice) * 100
	intent, err := s.provider.CreatePaymentIntent(amount, s.currency, map[string]string{
		"booking_id":       booking.ID,
		"client_id":        booking.ClientID,
		"pilot_profile_id": booking.PilotProfileID,
	})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.payments.ReplaceIntent(existing.ID, intent.ID, amount); err != nil {
			return nil, err
		}
	} else {
		payment := &models.Payment{
			BookingID:        booking.ID,
			ProviderIntentID: intent.ID,
			Amount:           amount,
			Currency:         s.currency,
			Status:           models.PaymentStatusPending,
		}
		if err := s.payments.Create(payment); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"intent_id":  intent.ID,
		"amount":     amount,
	}).Info("Payment intent created")

	return &models.CreateIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		Currency:        s.currency,
	}, nil
}

// Confirm reconciles a payment against the provider's authoritative
// intent status. On the first transition to succeeded it marks the
// booking paid and fires the notifications; repeating the call is a
// no-op for side effects.
func (s *PaymentService) Confirm(clientID, intentID string) (*models.Payment, error) {
	payment, err := s.payments.GetByIntentID(intentID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(payment.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != clientID {
		return nil, apperrors.Forbidden("payment belongs to another client")
	}

	intent, err := s.provider.RetrieveIntent(intentID)
	if err != nil {
		return nil, err
	}

	status := mapProviderStatus(intent.Status)
	if status != models.PaymentStatusSucceeded {
		if err := s.payments.UpdateStatus(payment.ID, status); err != nil {
			return nil, err
		}
		payment.Status = status
		return payment, nil
	}

	applied, err := s.payments.MarkSucceeded(payment.ID, booking.ID)
	if err != nil {
		return nil, err
	}
	payment.Status = models.PaymentStatusSucceeded

	if applied {
		s.logger.WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"booking_id": booking.ID,
			"amount":     payment.Amount,
		}).Info("Payment succeeded")
		s.dispatchPaymentNotifications(booking, payment)
	}

	return payment, nil
}

// GetStatus reports a booking's payment state to its client or pilot
func (s *PaymentService) GetStatus(userID, bookingID string) (*models.PaymentStatusResponse, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingAccess(userID, booking); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return &models.PaymentStatusResponse{HasPayment: false}, nil
	}

	amountEuros := payment.AmountMajor()
	return &models.PaymentStatusResponse{
		HasPayment:  true,
		Status:      string(payment.Status),
		Payment:     payment,
		AmountEuros: &amountEuros,
	}, nil
}

func (s *PaymentService) authorizeBookingAccess(userID string, booking *models.Booking) error {
	if booking.ClientID == userID {
		return nil
	}
	profile, err := s.profiles.GetByUserID(userID)
	if err == nil && profile.ID == booking.PilotProfileID {
		return nil
	}
	return apperrors.Forbidden("booking belongs to another user")
}

func (s *PaymentService) dispatchPaymentNotifications(booking *models.Booking, payment *models.Payment) {
	link := fmt.Sprintf("/bookings/%s", booking.ID)

	profile, err := s.profiles.GetByID(booking.PilotProfileID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to resolve pilot profile for payment notification")
		return
	}

	clientName := "a client"
	if client, err := s.users.GetByID(booking.ClientID); err == nil {
		clientName = client.Username
	}

	s.notifier.Notify(profile.UserID, models.NotificationTypePayment,
		"Payment received",
		fmt.Sprintf("You received €%.2f from %s", payment.AmountMajor(), clientName),
		&link, &booking.ID)

	s.notifier.Notify(booking.ClientID, models.NotificationTypePayment,
		"Payment confirmed",
		fmt.Sprintf("Your payment of €%.2f to %s is confirmed", payment.AmountMajor(), profile.Name),
		&link, &booking.ID)

	pilot, err := s.users.GetByID(profile.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", profile.UserID).Warn("Failed to resolve pilot for payment mail")
		return
	}
	body := fmt.Sprintf("You received a payment of €%.2f from %s for the booking on %s.",
		payment.AmountMajor(), clientName, booking.BookingDate.Format("2006-01-02"))
	if err := s.mailer.Send(pilot.Email, "Payment received", body); err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).Warn("Failed to send payment mail")
	}
}

// mapProviderStatus folds the provider's intent states onto the local
// payment statuses. Anything still in flight stays pending.
func mapProviderStatus(providerStatus string) models.PaymentStatus {
	switch providerStatus {
	case "succeeded":
		return models.PaymentStatusSucceeded
	case "canceled":
		return models.PaymentStatusCanceled
	case "payment_failed", "failed":
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}
