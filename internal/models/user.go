package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole  `gorm:"type:user_role;default:'user'" json:"role"`
	Active       bool      `gorm:"default:true" json:"active"`

	EmailVerified            bool       `gorm:"default:false" json:"email_verified"`
	EmailVerificationToken   *string    `gorm:"type:varchar(64)" json:"-"`
	EmailVerificationExpires *time.Time `gorm:"type:timestamptz" json:"-"`

	ResetPasswordToken   *string    `gorm:"type:varchar(64)" json:"-"`
	ResetPasswordExpires *time.Time `gorm:"type:timestamptz" json:"-"`

	// TokenVersion only ever increases. Bumping it invalidates every refresh
	// token issued before the bump.
	TokenVersion int `gorm:"not null;default:0" json:"-"`

	LastLogin           *time.Time `gorm:"type:timestamptz" json:"last_login"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockUntil           *time.Time `gorm:"type:timestamptz" json:"-"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	LoginHistory []LoginHistory `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsLocked reports whether the persisted account lock is still in force.
// A lockUntil in the past counts as unlocked without an explicit reset.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
