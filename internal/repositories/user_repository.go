package repositories

import (
	"time"

	"github.com/google/uuid"

	"github.com/sistenfrota/auth-service/internal/models"
)

type UserRepository interface {
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByEmailAndResetToken matches a user whose reset token is still valid
	// at the given instant. Returns (nil, nil) when no row qualifies.
	GetByEmailAndResetToken(email, token string, now time.Time) (*models.User, error)
	GetByEmailAndVerificationToken(email, token string, now time.Time) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	// IncrementTokenVersion bumps the counter atomically in the database so
	// concurrent bumps are never lost.
	IncrementTokenVersion(id uuid.UUID) error
	GetAll(limit, offset int) ([]models.User, int64, error)
	ExistsByEmail(email string) (bool, error)
}

type LoginHistoryRepository interface {
	Create(entry *models.LoginHistory) error
	// CountSuccess counts successful logins for a user with the same
	// browser/os/device signature, used for new-device detection.
	CountSuccess(userID uuid.UUID, browser, os, device string) (int64, error)
}
