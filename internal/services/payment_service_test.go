package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

type paymentFixture struct {
	svc      *PaymentService
	bookings *fakeBookingStore
	payments *fakePaymentStore
	provider *fakeProvider
	notifier *fakeNotifier
	mail     *fakeMailer
}

func newPaymentFixture() *paymentFixture {
	users := &fakeUserStore{users: map[string]*models.User{
		"client-1": {ID: "client-1", Username: "alice", Email: "alice@example.com", Role: models.RoleClient},
		"pilot-1":  {ID: "pilot-1", Username: "bob", Email: "bob@example.com", Role: models.RolePilot},
	}}
	profiles := &fakeProfileStore{profiles: map[string]*models.PilotProfile{
		"profile-1": {ID: "profile-1", UserID: "pilot-1", Name: "SkyView Drones", HourlyRate: 100},
	}}
	bookings := &fakeBookingStore{bookings: map[string]*models.Booking{
		"booking-1": {ID: "booking-1", ClientID: "client-1", PilotProfileID: "profile-1",
			Status: models.BookingStatusConfirmed, TotalPrice: 150},
	}}
	payments := &fakePaymentStore{bookings: bookings}
	provider := &fakeProvider{}
	notifier := &fakeNotifier{}
	mail := &fakeMailer{}

	svc := NewPaymentService(payments, bookings, profiles, users, provider, notifier, mail, "eur", testLogger())
	return &paymentFixture{svc: svc, bookings: bookings, payments: payments, provider: provider, notifier: notifier, mail: mail}
}

func TestCreateIntent_AmountInCents(t *testing.T) {
	f := newPaymentFixture()

	resp, err := f.svc.CreateIntent("client-1", "booking-1")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), resp.Amount)
	assert.Equal(t, "eur", resp.Currency)
	assert.NotEmpty(t, resp.ClientSecret)
	assert.NotEmpty(t, resp.PaymentIntentID)
}

func TestCreateIntent_RequiresConfirmedBooking(t *testing.T) {
	f := newPaymentFixture()
	f.bookings.bookings["booking-1"].Status = models.BookingStatusPending

	_, err := f.svc.CreateIntent("client-1", "booking-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestCreateIntent_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	f.payments.payments = map[string]*models.Payment{
		"payment-1": {ID: "payment-1", BookingID: "booking-1", ProviderIntentID: "pi_old",
			Status: models.PaymentStatusSucceeded},
	}

	_, err := f.svc.CreateIntent("client-1", "booking-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyPaid))
	assert.Zero(t, f.provider.created, "no provider call for an already-paid booking")
}

func TestCreateIntent_ReplacesStalePendingPayment(t *testing.T) {
	f := newPaymentFixture()
	f.payments.payments = map[string]*models.Payment{
		"payment-1": {ID: "payment-1", BookingID: "booking-1", ProviderIntentID: "pi_old",
			Amount: 15000, Status: models.PaymentStatusFailed},
	}

	resp, err := f.svc.CreateIntent("client-1", "booking-1")
	require.NoError(t, err)

	// The existing row was repointed, not duplicated
	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, resp.PaymentIntentID, f.payments.payments["payment-1"].ProviderIntentID)
	assert.Equal(t, models.PaymentStatusPending, f.payments.payments["payment-1"].Status)
}

func TestCreateIntent_ForeignBookingForbidden(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.CreateIntent("pilot-1", "booking-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestConfirm_FirstSuccessSettlesAndNotifies(t *testing.T) {
	f := newPaymentFixture()
	f.payments.payments = map[string]*models.Payment{
		"payment-1": {ID: "payment-1", BookingID: "booking-1", ProviderIntentID: "pi_1",
			Amount: 15000, Status: models.PaymentStatusPending},
	}
	f.provider.intent = &PaymentIntent{Status: "succeeded"}

	payment, err := f.svc.Confirm("client-1", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, payment.Status)
	assert.Equal(t, models.BookingStatusPaid, f.bookings.bookings["booking-1"].Status)

	// One notification each for pilot and client, plus the pilot mail
	require.Len(t, f.notifier.notices, 2)
	assert.Equal(t, "pilot-1", f.notifier.notices[0].userID)
	assert.Contains(t, f.notifier.notices[0].message, "€150.00")
	assert.Equal(t, "client-1", f.notifier.notices[1].userID)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "bob@example.com", f.mail.sent[0].to)
}

func TestConfirm_RepeatIsIdempotent(t *testing.T) {
	f := newPaymentFixture()
	f.payments.payments = map[string]*models.Payment{
		"payment-1": {ID: "payment-1", BookingID: "booking-1", ProviderIntentID: "pi_1",
			Amount: 15000, Status: models.PaymentStatusPending},
	}
	f.provider.intent = &PaymentIntent{Status: "succeeded"}

	_, err := f.svc.Confirm("client-1", "pi_1")
	require.NoError(t, err)
	_, err = f.svc.Confirm("client-1", "pi_1")
	require.NoError(t, err)

	assert.Len(t, f.notifier.notices, 2, "repeat confirmation must not duplicate notifications")
	assert.Len(t, f.mail.sent, 1)
}

func TestConfirm_NonSucceededStatusStoredWithoutSideEffects(t *testing.T) {
	f := newPaymentFixture()
	f.payments.payments = map[string]*models.Payment{
		"payment-1": {ID: "payment-1", BookingID: "booking-1", ProviderIntentID: "pi_1",
			Amount: 15000, Status: models.PaymentStatusPending},
	}
	f.provider.intent = &PaymentIntent{Status: "canceled"}

	payment, err := f.svc.Confirm("client-1", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCanceled, payment.Status)
	assert.Equal(t, models.BookingStatusConfirmed, f.bookings.bookings["booking-1"].Status)
	assert.Empty(t, f.notifier.notices)
}

func TestConfirm_ProviderErrorPropagates(t *testing.T) {
	f := newPaymentFixture()
	f.payments.payments = map[string]*models.Payment{
		"payment-1": {ID: "payment-1", BookingID: "booking-1", ProviderIntentID: "pi_1",
			Amount: 15000, Status: models.PaymentStatusPending},
	}
	f.provider.retrieveErr = apperrors.PaymentProvider("provider unreachable", nil)

	_, err := f.svc.Confirm("client-1", "pi_1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPaymentProvider))
	// Local row untouched on provider failure
	assert.Equal(t, models.PaymentStatusPending, f.payments.payments["payment-1"].Status)
}

func TestConfirm_UnknownIntent(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Confirm("client-1", "pi_missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestGetStatus_NoPayment(t *testing.T) {
	f := newPaymentFixture()

	status, err := f.svc.GetStatus("client-1", "booking-1")
	require.NoError(t, err)
	assert.False(t, status.HasPayment)
	assert.Nil(t, status.Payment)
}

func TestGetStatus_AmountInMajorUnits(t *testing.T) {
	f := newPaymentFixture()
	f.payments.payments = map[string]*models.Payment{
		"payment-1": {ID: "payment-1", BookingID: "booking-1", ProviderIntentID: "pi_1",
			Amount: 15000, Status: models.PaymentStatusSucceeded},
	}

	status, err := f.svc.GetStatus("client-1", "booking-1")
	require.NoError(t, err)
	assert.True(t, status.HasPayment)
	require.NotNil(t, status.AmountEuros)
	assert.Equal(t, 150.0, *status.AmountEuros)
}
