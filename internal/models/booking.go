package models

import (
	"errors"
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusPaid      BookingStatus = "paid"
)

// Booking represents one job request from a client to a pilot profile.
// TotalPrice is fixed at creation and never recomputed on rate changes.
type Booking struct {
	ID               string        `json:"id" db:"id"`
	ClientID         string        `json:"client_id" db:"client_id"`
	PilotProfileID   string        `json:"pilot_profile_id" db:"pilot_profile_id"`
	ServicePackageID *string       `json:"service_package_id,omitempty" db:"service_package_id"`
	JobDescription   string        `json:"job_description" db:"job_description"`
	BookingDate      time.Time     `json:"booking_date" db:"booking_date"`
	StartTime        string        `json:"start_time" db:"start_time"`
	EndTime          string        `json:"end_time" db:"end_time"`
	Status           BookingStatus `json:"status" db:"status"`
	TotalPrice       int           `json:"total_price" db:"total_price"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
}

// BookingDetail is a booking enriched with display fields for list views.
type BookingDetail struct {
	Booking
	PilotName      string  `json:"pilot_name" db:"pilot_name"`
	ClientUsername string  `json:"client_username" db:"client_username"`
	ClientEmail    string  `json:"client_email" db:"client_email"`
	ServiceName    string  `json:"service_name" db:"service_name"`
	PaymentStatus  string  `json:"payment_status" db:"payment_status"`
	PaymentID      *string `json:"payment_id,omitempty" db:"payment_id"`
}

// CanRespond reports whether newStatus is a legal pilot response given
// the current status. Rejected and paid are terminal; completed is only
// reachable from confirmed.
func (b *Booking) CanRespond(newStatus BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return newStatus == BookingStatusConfirmed || newStatus == BookingStatusRejected
	case BookingStatusConfirmed:
		return newStatus == BookingStatusCompleted
	default:
		return false
	}
}

// IsPayable reports whether a payment intent may be created for the
// booking.
func (b *Booking) IsPayable() bool {
	return b.Status == BookingStatusConfirmed
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	PilotProfileID   string  `json:"pilot_profile_id" binding:"required"`
	BookingDate      string  `json:"booking_date" binding:"required"`
	StartTime        string  `json:"start_time" binding:"required"`
	EndTime          string  `json:"end_time" binding:"required"`
	JobDescription   string  `json:"job_description" binding:"required"`
	ServicePackageID *string `json:"service_package_id,omitempty"`
}

// ParseSchedule parses and validates the date/time fields of the request.
func (r *CreateBookingRequest) ParseSchedule() (date time.Time, start, end time.Time, err error) {
	date, err = time.Parse("2006-01-02", r.BookingDate)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, errors.New("booking_date must be in YYYY-MM-DD format")
	}

	start, err = time.Parse("15:04", r.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, errors.New("start_time must be in HH:MM format")
	}

	end, err = time.Parse("15:04", r.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, errors.New("end_time must be in HH:MM format")
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, time.Time{}, errors.New("start_time must be before end_time")
	}

	return date, start, end, nil
}

// ComputeTotalPrice prices a booking window against an hourly rate.
// Duration is truncated to whole hours, so a 90 minute window bills as
// one hour.
func ComputeTotalPrice(start, end time.Time, hourlyRate int) int {
	durationHours := int(end.Sub(start).Hours())
	return durationHours * hourlyRate
}

// RespondBookingRequest represents the pilot's response to a booking
type RespondBookingRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}

// AllowedResponse checks the requested status against the respond
// operation's allowed set.
func (r *RespondBookingRequest) AllowedResponse() bool {
	switch r.Status {
	case BookingStatusConfirmed, BookingStatusRejected, BookingStatusCompleted:
		return true
	default:
		return false
	}
}
