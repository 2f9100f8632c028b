package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Username     *string        `gorm:"uniqueIndex" json:"username"`
	FullName     string         `json:"full_name"`
	AvatarURL    string         `json:"avatar_url"`
	PhoneNumber  string         `json:"phone_number"`
	Timezone     string         `gorm:"not null;default:UTC" json:"timezone"`
	Locale       string         `gorm:"not null;default:en" json:"locale"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserStats aggregates a user's footprint across the app for the profile screen.
type UserStats struct {
	TotalIdentities  int64 `json:"total_identities"`
	TotalHabits      int64 `json:"total_habits"`
	TotalCompletions int64 `json:"total_completions"`
	TotalSquads      int64 `json:"total_squads"`
}
