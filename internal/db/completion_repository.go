package db

import (
	"github.com/atomizehq/atomize/internal/models"
	"gorm.io/gorm"
)

var completionUpdatableFields = []string{
	"completion_value",
	"notes",
	"mood",
	"energy_level",
	"location",
	"duration_minutes",
	"metadata",
}

var completionJSONColumns = []string{"metadata"}

type CompletionRepository struct {
	database *gorm.DB
}

func NewCompletionRepository(database *gorm.DB) *CompletionRepository {
	return &CompletionRepository{database: database}
}

func (repo *CompletionRepository) ListByUser(userID uint, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = 100
	}
	completions := make([]models.Completion, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("completion_date DESC, id DESC").
		Limit(limit).
		Find(&completions).Error; err != nil {
		return nil, err
	}
	if err := repo.fillHabitNames(completions); err != nil {
		return nil, err
	}
	return completions, nil
}

func (repo *CompletionRepository) ListByUserDateRange(userID uint, startDate string, endDate string) ([]models.Completion, error) {
	completions := make([]models.Completion, 0)
	if err := repo.database.
		Where("user_id = ? AND completion_date >= ? AND completion_date <= ?", userID, startDate, endDate).
		Order("completion_date DESC, id DESC").
		Find(&completions).Error; err != nil {
		return nil, err
	}
	if err := repo.fillHabitNames(completions); err != nil {
		return nil, err
	}
	return completions, nil
}

func (repo *CompletionRepository) ListByHabit(habitID uint, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = 100
	}
	completions := make([]models.Completion, 0)
	if err := repo.database.
		Where("habit_id = ?", habitID).
		Order("completion_date DESC, id DESC").
		Limit(limit).
		Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

func (repo *CompletionRepository) ListByUserAndDate(userID uint, date string) ([]models.Completion, error) {
	completions := make([]models.Completion, 0)
	if err := repo.database.
		Where("user_id = ? AND completion_date = ?", userID, date).
		Order("id ASC").
		Find(&completions).Error; err != nil {
		return nil, err
	}
	if err := repo.fillHabitNames(completions); err != nil {
		return nil, err
	}
	return completions, nil
}

func (repo *CompletionRepository) FindByID(completionID uint) (models.Completion, bool, error) {
	var completion models.Completion
	result := repo.database.Limit(1).Find(&completion, "id = ?", completionID)
	if result.Error != nil {
		return models.Completion{}, false, result.Error
	}
	return completion, result.RowsAffected > 0, nil
}

func (repo *CompletionRepository) FindByHabitAndDate(habitID uint, date string) (models.Completion, bool, error) {
	var completion models.Completion
	result := repo.database.Limit(1).
		Find(&completion, "habit_id = ? AND completion_date = ?", habitID, date)
	if result.Error != nil {
		return models.Completion{}, false, result.Error
	}
	return completion, result.RowsAffected > 0, nil
}

func (repo *CompletionRepository) Create(completion *models.Completion) error {
	return repo.database.Create(completion).Error
}

func (repo *CompletionRepository) UpdateAllowed(completionID uint, payload map[string]any) error {
	updates, err := filterAllowedUpdates(payload, completionUpdatableFields, completionJSONColumns)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return repo.database.Model(&models.Completion{}).
		Where("id = ?", completionID).Updates(updates).Error
}

// Delete removes the row outright so the (habit_id, completion_date)
// unique slot frees up for a later toggle.
func (repo *CompletionRepository) Delete(completionID uint) (bool, error) {
	result := repo.database.Delete(&models.Completion{}, completionID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DatesByHabit returns completion dates newest-first for streak recomputation.
func (repo *CompletionRepository) DatesByHabit(habitID uint) ([]string, error) {
	dates := make([]string, 0)
	if err := repo.database.Model(&models.Completion{}).
		Where("habit_id = ?", habitID).
		Order("completion_date DESC").
		Pluck("completion_date", &dates).Error; err != nil {
		return nil, err
	}
	return dates, nil
}

// HabitStatsRow carries the raw SQL aggregates for one habit's completions.
type HabitStatsRow struct {
	TotalCompletions int64    `gorm:"column:total_completions" json:"total_completions"`
	AvgValue         *float64 `gorm:"column:avg_value" json:"avg_value"`
	FirstCompletion  *string  `gorm:"column:first_completion" json:"first_completion"`
	LastCompletion   *string  `gorm:"column:last_completion" json:"last_completion"`
	AvgEnergy        *float64 `gorm:"column:avg_energy" json:"avg_energy"`
	GreatMoodCount   int64    `gorm:"column:great_mood_count" json:"great_mood_count"`
	GoodMoodCount    int64    `gorm:"column:good_mood_count" json:"good_mood_count"`
	OkayMoodCount    int64    `gorm:"column:okay_mood_count" json:"okay_mood_count"`
}

func (repo *CompletionRepository) HabitStats(habitID uint) (HabitStatsRow, error) {
	var row HabitStatsRow
	if err := repo.database.Model(&models.Completion{}).
		Select(`COUNT(*) AS total_completions,
AVG(completion_value) AS avg_value,
MIN(completion_date) AS first_completion,
MAX(completion_date) AS last_completion,
AVG(CASE WHEN energy_level IS NOT NULL THEN energy_level END) AS avg_energy,
COUNT(CASE WHEN mood = 'great' THEN 1 END) AS great_mood_count,
COUNT(CASE WHEN mood = 'good' THEN 1 END) AS good_mood_count,
COUNT(CASE WHEN mood = 'okay' THEN 1 END) AS okay_mood_count`).
		Where("habit_id = ?", habitID).
		Scan(&row).Error; err != nil {
		return HabitStatsRow{}, err
	}
	return row, nil
}

// UserStatsRow carries the raw SQL aggregates across a user's completions.
type UserStatsRow struct {
	TotalCompletions int64    `gorm:"column:total_completions" json:"total_completions"`
	HabitsCompleted  int64    `gorm:"column:habits_completed" json:"habits_completed"`
	UniqueDays       int64    `gorm:"column:unique_days" json:"unique_days"`
	AvgEnergy        *float64 `gorm:"column:avg_energy" json:"avg_energy"`
}

func (repo *CompletionRepository) UserStats(userID uint) (UserStatsRow, error) {
	var row UserStatsRow
	if err := repo.database.Model(&models.Completion{}).
		Select(`COUNT(*) AS total_completions,
COUNT(DISTINCT habit_id) AS habits_completed,
COUNT(DISTINCT completion_date) AS unique_days,
AVG(CASE WHEN energy_level IS NOT NULL THEN energy_level END) AS avg_energy`).
		Where("user_id = ?", userID).
		Scan(&row).Error; err != nil {
		return UserStatsRow{}, err
	}
	return row, nil
}

type completionHabitName struct {
	ID        uint   `gorm:"column:id"`
	HabitName string `gorm:"column:habit_name"`
}

func (repo *CompletionRepository) fillHabitNames(completions []models.Completion) error {
	if len(completions) == 0 {
		return nil
	}

	habitIDs := make([]uint, 0, len(completions))
	for _, completion := range completions {
		habitIDs = append(habitIDs, completion.HabitID)
	}

	names := make([]completionHabitName, 0, len(habitIDs))
	if err := repo.database.Unscoped().Model(&models.Habit{}).
		Select("id, habit_name").
		Where("id IN ?", habitIDs).
		Scan(&names).Error; err != nil {
		return err
	}

	byID := make(map[uint]string, len(names))
	for _, name := range names {
		byID[name.ID] = name.HabitName
	}
	for index := range completions {
		completions[index].HabitName = byID[completions[index].HabitID]
	}
	return nil
}
