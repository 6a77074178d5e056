package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sistenfrota/auth-service/internal/models"
)

type gormLoginHistoryRepository struct {
	db *gorm.DB
}

func NewLoginHistoryRepository(db *gorm.DB) LoginHistoryRepository {
	return &gormLoginHistoryRepository{db: db}
}

func (r *gormLoginHistoryRepository) Create(entry *models.LoginHistory) error {
	return r.db.Create(entry).Error
}

func (r *gormLoginHistoryRepository) CountSuccess(userID uuid.UUID, browser, os, device string) (int64, error) {
	var count int64
	err := r.db.Model(&models.LoginHistory{}).
		Where("user_id = ? AND browser = ? AND os = ? AND device = ? AND status = ?",
			userID, browser, os, device, models.LoginStatusSuccess).
		Count(&count).Error
	return count, err
}
