package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

func newBookingFixture() (*BookingService, *fakeBookingStore, *fakeNotifier, *fakeMailer) {
	users := &fakeUserStore{users: map[string]*models.User{
		"client-1": {ID: "client-1", Username: "alice", Email: "alice@example.com", Role: models.RoleClient},
		"pilot-1":  {ID: "pilot-1", Username: "bob", Email: "bob@example.com", Role: models.RolePilot},
	}}
	profiles := &fakeProfileStore{
		profiles: map[string]*models.PilotProfile{
			"profile-1": {ID: "profile-1", UserID: "pilot-1", Name: "SkyView Drones", HourlyRate: 100},
		},
		packages: map[string]*models.ServicePackage{
			"pkg-1": {ID: "pkg-1", PilotProfileID: "profile-1", Name: "Wedding shoot", Price: 300},
			"pkg-2": {ID: "pkg-2", PilotProfileID: "profile-other", Name: "Other pilot package"},
		},
	}
	bookings := &fakeBookingStore{}
	notifier := &fakeNotifier{}
	mail := &fakeMailer{}
	svc := NewBookingService(bookings, profiles, users, notifier, mail, testLogger())
	return svc, bookings, notifier, mail
}

func TestBookingCreate_TruncatesToWholeHours(t *testing.T) {
	svc, _, notifier, mail := newBookingFixture()

	// 90 minutes bills as one hour
	booking, err := svc.Create("client-1", &models.CreateBookingRequest{
		PilotProfileID: "profile-1",
		BookingDate:    "2026-09-10",
		StartTime:      "09:00",
		EndTime:        "10:30",
		JobDescription: "Roof inspection",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, booking.TotalPrice)
	assert.Equal(t, models.BookingStatusPending, booking.Status)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "pilot-1", notifier.notices[0].userID)
	assert.Equal(t, models.NotificationTypeBooking, notifier.notices[0].typ)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "bob@example.com", mail.sent[0].to)
}

func TestBookingCreate_PriceUnaffectedByLaterRateChange(t *testing.T) {
	svc, bookings, _, _ := newBookingFixture()

	booking, err := svc.Create("client-1", &models.CreateBookingRequest{
		PilotProfileID: "profile-1",
		BookingDate:    "2026-09-10",
		StartTime:      "09:00",
		EndTime:        "11:00",
		JobDescription: "Roof inspection",
	})
	require.NoError(t, err)
	require.Equal(t, 200, booking.TotalPrice)

	// The pilot doubling their rate must not touch existing bookings
	svc.profiles.(*fakeProfileStore).profiles["profile-1"].HourlyRate = 200

	stored, err := bookings.GetByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, stored.TotalPrice)
}

func TestBookingCreate_RejectsNonClient(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.Create("pilot-1", &models.CreateBookingRequest{
		PilotProfileID: "profile-1",
		BookingDate:    "2026-09-10",
		StartTime:      "09:00",
		EndTime:        "10:00",
		JobDescription: "Roof inspection",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestBookingCreate_RejectsInvertedTimes(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.Create("client-1", &models.CreateBookingRequest{
		PilotProfileID: "profile-1",
		BookingDate:    "2026-09-10",
		StartTime:      "11:00",
		EndTime:        "09:00",
		JobDescription: "Roof inspection",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestBookingCreate_RejectsForeignServicePackage(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	pkgID := "pkg-2"
	_, err := svc.Create("client-1", &models.CreateBookingRequest{
		PilotProfileID:   "profile-1",
		BookingDate:      "2026-09-10",
		StartTime:        "09:00",
		EndTime:          "11:00",
		JobDescription:   "Roof inspection",
		ServicePackageID: &pkgID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestBookingCreate_UnknownProfile(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.Create("client-1", &models.CreateBookingRequest{
		PilotProfileID: "profile-missing",
		BookingDate:    "2026-09-10",
		StartTime:      "09:00",
		EndTime:        "11:00",
		JobDescription: "Roof inspection",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestBookingRespond_ConfirmNotifiesClient(t *testing.T) {
	svc, bookings, notifier, _ := newBookingFixture()
	bookings.bookings = map[string]*models.Booking{
		"booking-1": {ID: "booking-1", ClientID: "client-1", PilotProfileID: "profile-1", Status: models.BookingStatusPending},
	}

	booking, err := svc.Respond("pilot-1", "booking-1", &models.RespondBookingRequest{Status: models.BookingStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "client-1", notifier.notices[0].userID)
	assert.Contains(t, notifier.notices[0].message, "confirmed")
}

func TestBookingRespond_LosesRaceAgainstSettlement(t *testing.T) {
	svc, bookings, notifier, _ := newBookingFixture()
	bookings.bookings = map[string]*models.Booking{
		"booking-1": {ID: "booking-1", ClientID: "client-1", PilotProfileID: "profile-1", Status: models.BookingStatusPaid},
	}
	// The pilot's read saw confirmed before the payment settled the row
	bookings.staleStatus = map[string]models.BookingStatus{
		"booking-1": models.BookingStatusConfirmed,
	}

	_, err := svc.Respond("pilot-1", "booking-1", &models.RespondBookingRequest{Status: models.BookingStatusCompleted})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

	assert.Equal(t, models.BookingStatusPaid, bookings.bookings["booking-1"].Status)
	assert.Empty(t, notifier.notices)
}

func TestBookingRespond_TerminalStatesRejected(t *testing.T) {
	svc, bookings, _, _ := newBookingFixture()

	for _, status := range []models.BookingStatus{models.BookingStatusRejected, models.BookingStatusPaid} {
		bookings.bookings = map[string]*models.Booking{
			"booking-1": {ID: "booking-1", ClientID: "client-1", PilotProfileID: "profile-1", Status: status},
		}

		_, err := svc.Respond("pilot-1", "booking-1", &models.RespondBookingRequest{Status: models.BookingStatusCompleted})
		require.Error(t, err, "status %s must be terminal", status)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	}
}

func TestBookingRespond_CompleteRequiresConfirmed(t *testing.T) {
	svc, bookings, _, _ := newBookingFixture()
	bookings.bookings = map[string]*models.Booking{
		"booking-1": {ID: "booking-1", ClientID: "client-1", PilotProfileID: "profile-1", Status: models.BookingStatusPending},
	}

	_, err := svc.Respond("pilot-1", "booking-1", &models.RespondBookingRequest{Status: models.BookingStatusCompleted})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestBookingRespond_ForeignBookingForbidden(t *testing.T) {
	svc, bookings, _, _ := newBookingFixture()
	bookings.bookings = map[string]*models.Booking{
		"booking-1": {ID: "booking-1", ClientID: "client-1", PilotProfileID: "profile-other", Status: models.BookingStatusPending},
	}

	_, err := svc.Respond("pilot-1", "booking-1", &models.RespondBookingRequest{Status: models.BookingStatusConfirmed})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestBookingRespond_InvalidStatusValue(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.Respond("pilot-1", "booking-1", &models.RespondBookingRequest{Status: "cancelled"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}
