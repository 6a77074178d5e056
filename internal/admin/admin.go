// Package admin seeds the initial administrator account. Without it a fresh
// deployment has no way to reach the admin-only endpoints.
package admin

import (
	"os"

	"go.uber.org/zap"

	"github.com/sistenfrota/auth-service/internal/models"
	"github.com/sistenfrota/auth-service/internal/repositories"
	"github.com/sistenfrota/auth-service/internal/services"
)

// EnsureAdmin creates the default admin user when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no account exists under that email. It is
// idempotent across restarts.
func EnsureAdmin(userRepo repositories.UserRepository, bcryptCost int, log *zap.Logger) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	exists, err := userRepo.ExistsByEmail(email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}

	hash, err := services.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          models.RoleAdmin,
		Active:        true,
		EmailVerified: true,
	}
	if err := userRepo.Create(user); err != nil {
		return err
	}

	log.Info("seeded default admin account", zap.String("email", email))
	return nil
}
