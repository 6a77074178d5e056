package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LoginStatusSuccess = "success"
	LoginStatusFailed  = "failed"
)

// LoginHistory is an append-only audit row, written once per login attempt.
// UserID is nullable so that attempts against unknown emails are recorded too.
type LoginHistory struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Email         string     `gorm:"type:varchar(255);not null;index" json:"email"`
	IP            string     `gorm:"type:varchar(64)" json:"ip"`
	UserAgent     string     `gorm:"type:text" json:"user_agent"`
	Browser       string     `gorm:"type:varchar(64)" json:"browser"`
	OS            string     `gorm:"type:varchar(64)" json:"os"`
	Device        string     `gorm:"type:varchar(32)" json:"device"`
	Location      string     `gorm:"type:varchar(128)" json:"location"`
	Status        string     `gorm:"type:varchar(16);not null" json:"status"`
	FailureReason *string    `gorm:"type:varchar(128)" json:"failure_reason"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now()" json:"created_at"`
}

func (LoginHistory) TableName() string {
	return "login_history"
}

func (h *LoginHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
