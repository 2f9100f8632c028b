package models

import (
	"time"

	"gorm.io/gorm"
)

// Identity is an aspirational role a user groups habits under.
// At most one identity per user carries is_primary = true.
type Identity struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	IdentityName    string         `gorm:"not null" json:"identity_name"`
	Description     string         `json:"description"`
	VisionStatement string         `json:"vision_statement"`
	CoreValues      []string       `gorm:"serializer:json" json:"core_values"`
	IsPrimary       bool           `gorm:"not null;default:false" json:"is_primary"`
	ColorTheme      string         `json:"color_theme"`
	Icon            string         `json:"icon"`
	DisplayOrder    int            `gorm:"not null;default:0" json:"display_order"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// HabitsCount is filled by queries that decorate identities with
	// their live habit count. It is never persisted.
	HabitsCount int64 `gorm:"-" json:"habits_count"`
}
