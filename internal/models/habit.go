package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Habit is a recurring tracked action. IdentityID is a weak reference:
// deleting the identity leaves it dangling rather than cascading.
type Habit struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	IdentityID      *uint          `gorm:"index" json:"identity_id"`
	HabitName       string         `gorm:"not null" json:"habit_name"`
	Description     string         `json:"description"`
	FrequencyType   string         `gorm:"not null;default:daily" json:"frequency_type"`
	FrequencyValue  int            `gorm:"not null;default:1" json:"frequency_value"`
	TargetCount     int            `gorm:"not null;default:1" json:"target_count"`
	Unit            string         `json:"unit"`
	ReminderEnabled bool           `gorm:"not null;default:false" json:"reminder_enabled"`
	ReminderTime    string         `json:"reminder_time"`
	ReminderDays    []string       `gorm:"serializer:json" json:"reminder_days"`
	DifficultyLevel string         `gorm:"not null;default:medium" json:"difficulty_level"`
	Category        string         `json:"category"`
	Color           string         `json:"color"`
	Icon            string         `json:"icon"`
	IsPublic        bool           `gorm:"not null;default:false" json:"is_public"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`
	StreakCount     int            `gorm:"not null;default:0" json:"streak_count"`
	BestStreak      int            `gorm:"not null;default:0" json:"best_streak"`
	StartDate       *time.Time     `json:"start_date"`
	EndDate         *time.Time     `json:"end_date"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Decorations filled by read paths, never persisted.
	IdentityName       string  `gorm:"-" json:"identity_name,omitempty"`
	TotalCompletions   int64   `gorm:"-" json:"total_completions_count,omitempty"`
	LastCompletionDate *string `gorm:"-" json:"last_completion_date,omitempty"`
}

func ValidFrequencyType(frequencyType string) bool {
	switch frequencyType {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

func ValidDifficultyLevel(level string) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
