package services

import (
	"math"

	"github.com/atomizehq/atomize/internal/db"
)

// StatsCompletionReader provides the raw SQL aggregates the stats service
// derives display numbers from.
type StatsCompletionReader interface {
	UserStats(userID uint) (db.UserStatsRow, error)
	HabitStats(habitID uint) (db.HabitStatsRow, error)
}

// StatsHabitReader exposes the habit-side inputs: the active-habit count
// for the completion-rate denominator and the stored streak maximum.
type StatsHabitReader interface {
	CountActiveByUser(userID uint) (int64, error)
	MaxActiveStreak(userID uint) (int, error)
}

type StatsService struct {
	completions StatsCompletionReader
	habits      StatsHabitReader
}

func NewStatsService(completions StatsCompletionReader, habits StatsHabitReader) *StatsService {
	return &StatsService{completions: completions, habits: habits}
}

// UserCompletionStats is the profile stats payload: raw aggregates plus
// the derived completion rate and the user's headline streak.
type UserCompletionStats struct {
	TotalCompletions int64    `json:"total_completions"`
	HabitsCompleted  int64    `json:"habits_completed"`
	UniqueDays       int64    `json:"unique_days"`
	AvgEnergy        *float64 `json:"avg_energy"`
	CompletionRate   float64  `json:"completion_rate"`
	Streak           int      `json:"streak"`
}

func (service *StatsService) BuildUserStats(userID uint) (UserCompletionStats, error) {
	row, err := service.completions.UserStats(userID)
	if err != nil {
		return UserCompletionStats{}, err
	}

	activeHabits, err := service.habits.CountActiveByUser(userID)
	if err != nil {
		return UserCompletionStats{}, err
	}

	streak, err := service.habits.MaxActiveStreak(userID)
	if err != nil {
		return UserCompletionStats{}, err
	}

	return UserCompletionStats{
		TotalCompletions: row.TotalCompletions,
		HabitsCompleted:  row.HabitsCompleted,
		UniqueDays:       row.UniqueDays,
		AvgEnergy:        row.AvgEnergy,
		CompletionRate:   CompletionRate(row.TotalCompletions, activeHabits, row.UniqueDays),
		Streak:           streak,
	}, nil
}

func (service *StatsService) BuildHabitStats(habitID uint) (db.HabitStatsRow, error) {
	return service.completions.HabitStats(habitID)
}

// CompletionRate derives the percentage of habit-day slots actually
// completed. A zero denominator or a non-finite intermediate yields 0,
// and the result is clamped into [0, 100].
func CompletionRate(totalCompletions int64, activeHabits int64, uniqueDays int64) float64 {
	denominator := float64(activeHabits) * float64(uniqueDays)
	if denominator <= 0 {
		return 0
	}
	rate := float64(totalCompletions) / denominator * 100
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}
