package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/railsetu/railway-reservation-backend/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user account
func (r *UserRepository) CreateUser(phone, fullName, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New().String(),
		Phone:        phone,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Roles:        pq.StringArray{models.RolePassenger},
		Status:       models.UserStatusActive,
	}

	query := `
		INSERT INTO users (id, phone, full_name, password_hash, roles, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(query,
		user.ID, user.Phone, user.FullName, user.PasswordHash,
		user.Roles, user.Status,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByPhone retrieves a user by phone number
func (r *UserRepository) GetUserByPhone(phone string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, phone, full_name, password_hash, roles, status,
		       created_at, updated_at
		FROM users
		WHERE phone = $1`

	err := r.db.Get(user, query, phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(userID string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, phone, full_name, password_hash, roles, status,
		       created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.Get(user, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// CreateSession records a successful login and the device it came from
func (r *UserRepository) CreateSession(session *models.UserSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	query := `
		INSERT INTO user_sessions (id, user_id, browser, os, mobile, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRow(query,
		session.ID, session.UserID, session.Browser, session.OS,
		session.Mobile, session.IPAddress,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}
