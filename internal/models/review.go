package models

import "time"

// Review is a client's rating of a pilot, optionally linked to the
// booking it came out of. Immutable after creation.
type Review struct {
	ID             string    `json:"id" db:"id"`
	Rating         int       `json:"rating" db:"rating"`
	Comment        string    `json:"comment" db:"comment"`
	ClientID       string    `json:"client_id" db:"client_id"`
	PilotProfileID string    `json:"pilot_profile_id" db:"pilot_profile_id"`
	BookingID      *string   `json:"booking_id,omitempty" db:"booking_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ReviewDetail is a review enriched with the reviewer's username for
// listing on a pilot's page
type ReviewDetail struct {
	Review
	ClientUsername string `json:"client_username" db:"client_username"`
}

// CreateReviewRequest is the payload for leaving a review on a pilot
type CreateReviewRequest struct {
	Rating    int     `json:"rating"`
	Comment   string  `json:"comment"`
	BookingID *string `json:"booking_id"`
}

// RatingInRange reports whether the rating sits on the 1-5 scale
func (r *CreateReviewRequest) RatingInRange() bool {
	return r.Rating >= 1 && r.Rating <= 5
}
