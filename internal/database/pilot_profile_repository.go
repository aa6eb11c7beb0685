package database

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// PilotProfileRepository handles database operations for pilot profiles
// and their owned service packages and availability slots
type PilotProfileRepository struct {
	db DB
}

// NewPilotProfileRepository creates a new PilotProfileRepository
func NewPilotProfileRepository(db DB) *PilotProfileRepository {
	return &PilotProfileRepository{db: db}
}

const profileColumns = `
	id, user_id, name, tagline, location, bio, hourly_rate, phone,
	latitude, longitude, created_at
`

// Create inserts a new pilot profile
func (r *PilotProfileRepository) Create(profile *models.PilotProfile) error {
	query := `
		INSERT INTO pilot_profiles (
			id, user_id, name, tagline, location, bio, hourly_rate, phone,
			latitude, longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		profile.ID, profile.UserID, profile.Name, profile.Tagline, profile.Location,
		profile.Bio, profile.HourlyRate, profile.Phone, profile.Latitude, profile.Longitude,
	).Scan(&profile.CreatedAt)

	if err != nil {
		return apperrors.Storage("failed to create pilot profile", err)
	}

	return nil
}

// GetByID retrieves a pilot profile by id
func (r *PilotProfileRepository) GetByID(profileID string) (*models.PilotProfile, error) {
	profile := &models.PilotProfile{}
	err := r.db.Get(profile, `SELECT `+profileColumns+` FROM pilot_profiles WHERE id = $1`, profileID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("pilot profile not found")
		}
		return nil, apperrors.Storage("failed to fetch pilot profile", err)
	}

	return profile, nil
}

// GetByUserID retrieves the profile owned by a pilot user
func (r *PilotProfileRepository) GetByUserID(userID string) (*models.PilotProfile, error) {
	profile := &models.PilotProfile{}
	err := r.db.Get(profile, `SELECT `+profileColumns+` FROM pilot_profiles WHERE user_id = $1`, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("pilot profile not found")
		}
		return nil, apperrors.Storage("failed to fetch pilot profile", err)
	}

	return profile, nil
}

// List retrieves all pilot profiles with their review aggregates,
// ordered by creation time
func (r *PilotProfileRepository) List() ([]models.PilotListing, error) {
	listings := []models.PilotListing{}
	err := r.db.Select(&listings, `
		SELECT p.id, p.user_id, p.name, p.tagline, p.location, p.bio, p.hourly_rate,
			   p.phone, p.latitude, p.longitude, p.created_at,
			   COALESCE(ROUND(AVG(r.rating)::numeric, 1), 0)::float8 AS average_rating,
			   COUNT(r.id) AS total_reviews
		FROM pilot_profiles p
		LEFT JOIN reviews r ON r.pilot_profile_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, apperrors.Storage("failed to list pilot profiles", err)
	}

	return listings, nil
}

// Update updates the mutable fields of a profile. Existing bookings keep
// the price computed at booking time regardless of rate changes here.
func (r *PilotProfileRepository) Update(profile *models.PilotProfile) error {
	result, err := r.db.Exec(`
		UPDATE pilot_profiles
		SET name = $2, tagline = $3, location = $4, bio = $5,
			hourly_rate = $6, phone = $7, latitude = $8, longitude = $9
		WHERE id = $1
	`, profile.ID, profile.Name, profile.Tagline, profile.Location, profile.Bio,
		profile.HourlyRate, profile.Phone, profile.Latitude, profile.Longitude)

	if err != nil {
		return apperrors.Storage("failed to update pilot profile", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to update pilot profile", err)
	}
	if rows == 0 {
		return apperrors.NotFound("pilot profile not found")
	}

	return nil
}

// CreateServicePackage inserts a service package for a profile
func (r *PilotProfileRepository) CreateServicePackage(pkg *models.ServicePackage) error {
	if pkg.ID == "" {
		pkg.ID = uuid.New().String()
	}

	_, err := r.db.Exec(`
		INSERT INTO service_packages (id, pilot_profile_id, name, description, price, duration_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pkg.ID, pkg.PilotProfileID, pkg.Name, pkg.Description, pkg.Price, pkg.DurationHours)

	if err != nil {
		return apperrors.Storage("failed to create service package", err)
	}

	return nil
}

// GetServicePackage retrieves a service package by id
func (r *PilotProfileRepository) GetServicePackage(packageID string) (*models.ServicePackage, error) {
	pkg := &models.ServicePackage{}
	err := r.db.Get(pkg, `
		SELECT id, pilot_profile_id, name, description, price, duration_hours
		FROM service_packages
		WHERE id = $1
	`, packageID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("service package not found")
		}
		return nil, apperrors.Storage("failed to fetch service package", err)
	}

	return pkg, nil
}

// ListServicePackages retrieves all packages owned by a profile
func (r *PilotProfileRepository) ListServicePackages(profileID string) ([]models.ServicePackage, error) {
	packages := []models.ServicePackage{}
	err := r.db.Select(&packages, `
		SELECT id, pilot_profile_id, name, description, price, duration_hours
		FROM service_packages
		WHERE pilot_profile_id = $1
		ORDER BY name
	`, profileID)

	if err != nil {
		return nil, apperrors.Storage("failed to list service packages", err)
	}

	return packages, nil
}

// CreateAvailability inserts an availability slot for a profile
func (r *PilotProfileRepository) CreateAvailability(slot *models.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (id, pilot_profile_id, date, start_time, end_time, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		slot.ID, slot.PilotProfileID, slot.Date, slot.StartTime, slot.EndTime, slot.IsAvailable,
	).Scan(&slot.CreatedAt)

	if err != nil {
		return apperrors.Storage("failed to create availability slot", err)
	}

	return nil
}

// ListAvailability retrieves the slots owned by a profile
func (r *PilotProfileRepository) ListAvailability(profileID string) ([]models.AvailabilitySlot, error) {
	slots := []models.AvailabilitySlot{}
	err := r.db.Select(&slots, `
		SELECT id, pilot_profile_id, date, start_time, end_time, is_available, created_at
		FROM availability_slots
		WHERE pilot_profile_id = $1
		ORDER BY date, start_time
	`, profileID)

	if err != nil {
		return nil, apperrors.Storage("failed to list availability slots", err)
	}

	return slots, nil
}

// DeleteAvailability removes a slot, scoped to the owning profile
func (r *PilotProfileRepository) DeleteAvailability(slotID, profileID string) error {
	result, err := r.db.Exec(`
		DELETE FROM availability_slots WHERE id = $1 AND pilot_profile_id = $2
	`, slotID, profileID)

	if err != nil {
		return apperrors.Storage("failed to delete availability slot", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to delete availability slot", err)
	}
	if rows == 0 {
		return apperrors.NotFound("availability slot not found")
	}

	return nil
}
