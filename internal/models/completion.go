package models

import "time"

const (
	MoodGreat = "great"
	MoodGood  = "good"
	MoodOkay  = "okay"
	MoodBad   = "bad"
	MoodAwful = "awful"
)

// Completion records that a habit was performed on a calendar day.
// CompletionDate is stored as a plain YYYY-MM-DD string so the
// (habit_id, completion_date) unique index compares dates exactly,
// independent of timezone. Completions are hard-deleted: toggling a day
// off must free the unique slot for a later toggle back on.
type Completion struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	HabitID         uint           `gorm:"not null;uniqueIndex:uidx_habit_date" json:"habit_id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	CompletionDate  string         `gorm:"not null;uniqueIndex:uidx_habit_date" json:"completion_date"`
	CompletionValue float64        `gorm:"not null;default:1" json:"completion_value"`
	Notes           string         `json:"notes"`
	Mood            string         `json:"mood"`
	EnergyLevel     *int           `json:"energy_level"`
	Location        string         `json:"location"`
	DurationMinutes *int           `json:"duration_minutes"`
	Metadata        map[string]any `gorm:"serializer:json" json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// HabitName is filled by read paths that join habit metadata in.
	HabitName string `gorm:"-" json:"habit_name,omitempty"`
}

func ValidMood(mood string) bool {
	switch mood {
	case MoodGreat, MoodGood, MoodOkay, MoodBad, MoodAwful:
		return true
	}
	return false
}

// DateLayout is the wire and storage format for completion dates.
const DateLayout = "2006-01-02"

func ValidCompletionDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}
