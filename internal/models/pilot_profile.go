package models

import (
	"errors"
	"time"
)

// PilotProfile is the public business identity of a user with the Pilot
// role. One profile per pilot user.
type PilotProfile struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Tagline    *string   `json:"tagline,omitempty" db:"tagline"`
	Location   *string   `json:"location,omitempty" db:"location"`
	Bio        *string   `json:"bio,omitempty" db:"bio"`
	HourlyRate int       `json:"hourly_rate" db:"hourly_rate"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	Latitude   *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude  *float64  `json:"longitude,omitempty" db:"longitude"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Loaded separately for the detail view
	Services     []ServicePackage   `json:"services,omitempty"`
	Availability []AvailabilitySlot `json:"availability,omitempty"`
}

// PilotListing is a profile row enriched with its review aggregate for
// the pilot directory
type PilotListing struct {
	PilotProfile
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	TotalReviews  int64   `json:"total_reviews" db:"total_reviews"`
}

// ServicePackage is a predefined offering owned by a pilot profile.
type ServicePackage struct {
	ID             string `json:"id" db:"id"`
	PilotProfileID string `json:"pilot_profile_id" db:"pilot_profile_id"`
	Name           string `json:"name" db:"name"`
	Description    string `json:"description" db:"description"`
	Price          int    `json:"price" db:"price"`
	DurationHours  int    `json:"duration_hours" db:"duration_hours"`
}

// AvailabilitySlot is a window in which the pilot accepts bookings.
type AvailabilitySlot struct {
	ID             string    `json:"id" db:"id"`
	PilotProfileID string    `json:"pilot_profile_id" db:"pilot_profile_id"`
	Date           time.Time `json:"date" db:"date"`
	StartTime      string    `json:"start_time" db:"start_time"`
	EndTime        string    `json:"end_time" db:"end_time"`
	IsAvailable    bool      `json:"is_available" db:"is_available"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// UpdateProfileRequest represents the request to update the caller's
// pilot profile
type UpdateProfileRequest struct {
	Name       string   `json:"name" binding:"required"`
	Tagline    *string  `json:"tagline,omitempty"`
	Location   *string  `json:"location,omitempty"`
	Bio        *string  `json:"bio,omitempty"`
	HourlyRate int      `json:"hourly_rate" binding:"required,min=1"`
	Phone      *string  `json:"phone,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// CreateServicePackageRequest represents the request to add a service
// package to a pilot profile
type CreateServicePackageRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Price         int    `json:"price" binding:"required,min=1"`
	DurationHours int    `json:"duration_hours"`
}

// CreateAvailabilityRequest represents the request to add an
// availability slot
type CreateAvailabilityRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// Validate validates the availability request times
func (r *CreateAvailabilityRequest) Validate() error {
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}

	start, err := time.Parse("15:04", r.StartTime)
	if err != nil {
		return errors.New("start_time must be in HH:MM format")
	}

	end, err := time.Parse("15:04", r.EndTime)
	if err != nil {
		return errors.New("end_time must be in HH:MM format")
	}

	if !start.Before(end) {
		return errors.New("start_time must be before end_time")
	}

	return nil
}
