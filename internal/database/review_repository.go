package database

import (
	"github.com/google/uuid"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// ReviewRepository handles database operations for the reviews table
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review
func (r *ReviewRepository) Create(review *models.Review) error {
	query := `
		INSERT INTO reviews (id, rating, comment, client_id, pilot_profile_id, booking_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		review.ID, review.Rating, review.Comment,
		review.ClientID, review.PilotProfileID, review.BookingID,
	).Scan(&review.CreatedAt)

	if err != nil {
		return apperrors.Storage("failed to create review", err)
	}

	return nil
}

// ListByPilotProfile retrieves a profile's reviews, newest first, with
// the reviewer's username attached
func (r *ReviewRepository) ListByPilotProfile(profileID string) ([]models.ReviewDetail, error) {
	reviews := []models.ReviewDetail{}
	err := r.db.Select(&reviews, `
		SELECT r.id, r.rating, r.comment, r.client_id, r.pilot_profile_id,
			   r.booking_id, r.created_at,
			   u.username AS client_username
		FROM reviews r
		JOIN users u ON u.id = r.client_id
		WHERE r.pilot_profile_id = $1
		ORDER BY r.created_at DESC
	`, profileID)

	if err != nil {
		return nil, apperrors.Storage("failed to list reviews", err)
	}

	return reviews, nil
}
