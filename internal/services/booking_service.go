package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
	"github.com/dronebook/marketplace-backend/pkg/mailer"
)

// BookingService drives the booking lifecycle: creation by clients and
// status responses by pilots
type BookingService struct {
	bookings BookingStore
	profiles PilotProfileStore
	users    UserStore
	notifier Notifier
	mailer   mailer.Mailer
	logger   *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings BookingStore,
	profiles PilotProfileStore,
	users UserStore,
	notifier Notifier,
	mail mailer.Mailer,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		profiles: profiles,
		users:    users,
		notifier: notifier,
		mailer:   mail,
		logger:   logger,
	}
}

// Create books a pilot for a client. The total price is fixed from the
// profile's current hourly rate at creation time; later rate changes
// never touch existing bookings.
func (s *BookingService) Create(clientID string, req *models.CreateBookingRequest) (*models.Booking, error) {
	client, err := s.users.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsClient() {
		return nil, apperrors.Forbidden("only clients can create bookings")
	}

	profile, err := s.profiles.GetByID(req.PilotProfileID)
	if err != nil {
		return nil, err
	}

	date, start, end, err := req.ParseSchedule()
	if err != nil {
		return nil, apperrors.InvalidInput("%s", err.Error())
	}

	if req.ServicePackageID != nil && *req.ServicePackageID != "" {
		pkg, err := s.profiles.GetServicePackage(*req.ServicePackageID)
		if err != nil {
			return nil, err
		}
		if pkg.PilotProfileID != profile.ID {
			return nil, apperrors.InvalidInput("service package does not belong to this pilot")
		}
	} else {
		req.ServicePackageID = nil
	}

	booking := &models.Booking{
		ClientID:         clientID,
		PilotProfileID:   profile.ID,
		ServicePackageID: req.ServicePackageID,
		JobDescription:   req.JobDescription,
		BookingDate:      date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Status:           models.BookingStatusPending,
		TotalPrice:       models.ComputeTotalPrice(start, end, profile.HourlyRate),
	}

	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"client_id":   clientID,
		"pilot_id":    profile.ID,
		"total_price": booking.TotalPrice,
	}).Info("Booking created")

	link := fmt.Sprintf("/bookings/%s", booking.ID)
	s.notifier.Notify(profile.UserID, models.NotificationTypeBooking,
		"New booking request",
		fmt.Sprintf("%s requested a booking on %s (%s-%s)",
			client.Username, req.BookingDate, req.StartTime, req.EndTime),
		&link, &booking.ID)

	s.mailBookingRequest(profile.UserID, client.Username, booking)

	return booking, nil
}

// Respond applies a pilot's decision to a booking. Only the owner of
// the booking's pilot profile may respond, and only along the legal
// transitions: pending may be confirmed or rejected, confirmed may be
// completed. Rejected and paid are terminal.
func (s *BookingService) Respond(actingUserID, bookingID string, req *models.RespondBookingRequest) (*models.Booking, error) {
	if !req.AllowedResponse() {
		return nil, apperrors.InvalidInput("status must be confirmed, rejected or completed")
	}

	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(actingUserID)
	if err != nil {
		return nil, err
	}
	if booking.PilotProfileID != profile.ID {
		return nil, apperrors.Forbidden("booking belongs to another pilot")
	}

	if !booking.CanRespond(req.Status) {
		return nil, apperrors.InvalidState("cannot set a %s booking to %s", booking.Status, req.Status)
	}

	persisted, err := s.bookings.UpdateStatus(booking.ID, booking.Status, req.Status)
	if err != nil {
		return nil, err
	}
	booking.Status = persisted

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     persisted,
		"pilot_id":   profile.ID,
	}).Info("Booking status updated")

	link := fmt.Sprintf("/bookings/%s", booking.ID)
	s.notifier.Notify(booking.ClientID, models.NotificationTypeBooking,
		fmt.Sprintf("Booking %s", persisted),
		fmt.Sprintf("%s has marked your booking as %s", profile.Name, persisted),
		&link, &booking.ID)

	s.mailBookingResponse(booking.ClientID, profile.Name, booking)

	return booking, nil
}

// ListForUser returns the caller's bookings: for clients the bookings
// they made, for pilots the bookings against their profile
func (s *BookingService) ListForUser(userID string) ([]models.BookingDetail, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if user.IsPilot() {
		profile, err := s.profiles.GetByUserID(userID)
		if err != nil {
			return nil, err
		}
		return s.bookings.ListDetailsByPilotProfile(profile.ID)
	}

	return s.bookings.ListDetailsByClient(userID)
}

func (s *BookingService) mailBookingRequest(pilotUserID, clientUsername string, booking *models.Booking) {
	pilot, err := s.users.GetByID(pilotUserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", pilotUserID).Warn("Failed to resolve pilot for booking mail")
		return
	}

	body := fmt.Sprintf("You have a new booking request from %s for %s. Total: €%d",
		clientUsername, booking.BookingDate.Format("2006-01-02"), booking.TotalPrice)
	if err := s.mailer.Send(pilot.Email, "New booking request", body); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send booking request mail")
	}
}

func (s *BookingService) mailBookingResponse(clientID, pilotName string, booking *models.Booking) {
	client, err := s.users.GetByID(clientID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", clientID).Warn("Failed to resolve client for booking mail")
		return
	}

	body := fmt.Sprintf("%s has marked your booking for %s as %s.",
		pilotName, booking.BookingDate.Format("2006-01-02"), booking.Status)
	if err := s.mailer.Send(client.Email, fmt.Sprintf("Booking %s", booking.Status), body); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send booking response mail")
	}
}
