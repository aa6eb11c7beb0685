package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// ReviewService handles clients rating pilots
type ReviewService struct {
	reviews  ReviewStore
	profiles PilotProfileStore
	users    UserStore
	notifier Notifier
	logger   *logrus.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviews ReviewStore,
	profiles PilotProfileStore,
	users UserStore,
	notifier Notifier,
	logger *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		profiles: profiles,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// Create leaves a review on a pilot profile. Only clients may review,
// and the rating must sit on the 1-5 scale. The reviewed pilot gets a
// notification.
func (s *ReviewService) Create(actingUserID, pilotProfileID string, req *models.CreateReviewRequest) (*models.Review, error) {
	user, err := s.users.GetByID(actingUserID)
	if err != nil {
		return nil, err
	}
	if !user.IsClient() {
		return nil, apperrors.Forbidden("only clients can leave reviews")
	}

	profile, err := s.profiles.GetByID(pilotProfileID)
	if err != nil {
		return nil, err
	}

	if !req.RatingInRange() {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	review := &models.Review{
		Rating:         req.Rating,
		Comment:        req.Comment,
		ClientID:       user.ID,
		PilotProfileID: profile.ID,
		BookingID:      req.BookingID,
	}

	if err := s.reviews.Create(review); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":        review.ID,
		"pilot_profile_id": profile.ID,
		"rating":           review.Rating,
	}).Info("Review created")

	link := "/dashboard/reviews"
	s.notifier.Notify(profile.UserID, models.NotificationTypeSystem,
		"New review received",
		fmt.Sprintf("%s left you a %d-star review", user.Username, review.Rating),
		&link, &review.ID)

	return review, nil
}

// ListForPilot returns a profile's reviews, newest first
func (s *ReviewService) ListForPilot(pilotProfileID string) ([]models.ReviewDetail, error) {
	if _, err := s.profiles.GetByID(pilotProfileID); err != nil {
		return nil, err
	}
	return s.reviews.ListByPilotProfile(pilotProfileID)
}
