package database

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A unique violation on email or username is
// reported as invalid input rather than a storage failure.
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive,
	).Scan(&user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.InvalidInput("username or email is already registered")
		}
		return apperrors.Storage("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(userID string) (*models.User, error) {
	user := &models.User{}
	err := r.db.Get(user, `
		SELECT id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE id = $1
	`, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Storage("failed to fetch user", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.Get(user, `
		SELECT id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE email = $1
	`, email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Storage("failed to fetch user", err)
	}

	return user, nil
}
